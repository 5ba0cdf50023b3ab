//go:build windows

package capture

import (
	"os"
	"path/filepath"
)

// ConverterName is the file name of the converter shipped next to ndis_pcap.
const ConverterName = "etl2pcapng.exe"

// DefaultTraceCommand returns the absolute path of netsh.exe so a netsh found
// earlier on PATH cannot shadow the system one.
func DefaultTraceCommand() string {
	root := os.Getenv("SystemRoot")
	if root == "" {
		root = `C:\Windows`
	}
	return filepath.Join(root, "System32", "netsh.exe")
}
