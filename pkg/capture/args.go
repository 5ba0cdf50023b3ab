package capture

import (
	"fmt"
	"strings"
)

// NoCleanSwitch keeps the intermediate trace file after conversion.
const NoCleanSwitch = "/noclean"

// Options is the parsed command line.
type Options struct {
	Cleanup     bool
	OutputPath  string
	ShowVersion bool
}

// ParseArgs scans args in order. The first version flag wins over anything
// after it, and the first non-switch token is taken as the output path; the
// remaining arguments are ignored.
func ParseArgs(args []string) (Options, error) {
	opts := Options{Cleanup: true}

	for _, arg := range args {
		switch {
		case arg == "-v" || arg == "--version":
			return Options{ShowVersion: true}, nil
		case arg == "-h" || arg == "--help" || arg == "/?":
			return Options{}, ErrUsage
		case isSwitch(arg):
			if arg != NoCleanSwitch {
				return Options{}, fmt.Errorf("%w: unknown switch %q", ErrUsage, arg)
			}
			opts.Cleanup = false
		case arg == "":
			return Options{}, fmt.Errorf("%w: empty output file", ErrUsage)
		default:
			opts.OutputPath = arg
			return opts, nil
		}
	}

	return Options{}, fmt.Errorf("%w: missing output file", ErrUsage)
}

// isSwitch reports whether arg is a /-style switch rather than an absolute
// POSIX path such as /tmp/out.pcap or /out.pcap.
func isSwitch(arg string) bool {
	return len(arg) > 1 && arg[0] == '/' && !strings.ContainsAny(arg[1:], `/\.`)
}
