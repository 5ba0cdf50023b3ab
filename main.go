package main

import (
	"os"

	"github.com/d-ashe/ndis-pcap/cmd"
)

func main() {
	if err := cmd.NdisPcapCmd().Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
