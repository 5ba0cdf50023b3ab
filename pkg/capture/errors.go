package capture

import (
	"errors"
	"fmt"
)

// Exit codes returned by ndis_pcap itself. Child failures propagate the
// child's own code instead.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var (
	// ErrUsage marks a command line that cannot be run.
	ErrUsage = errors.New("invalid usage")

	ErrIntermediatePath = errors.New("could not construct file path to intermediate .ETL file")
	ErrExecutablePath   = errors.New("could not compute file path of ndis_pcap")
	ErrConverterPath    = errors.New("could not construct file path to converter")
)

// ExitError carries the process exit code for a failed run. Err may be nil
// when the failure was already reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("%v (exit status %d)", e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
