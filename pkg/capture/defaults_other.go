//go:build !windows

package capture

// ConverterName is the file name of the converter shipped next to ndis_pcap.
const ConverterName = "etl2pcapng"

// DefaultTraceCommand returns the trace-control utility, resolved through PATH.
func DefaultTraceCommand() string {
	return "netsh"
}
