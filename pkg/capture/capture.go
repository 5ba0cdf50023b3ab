// Package capture drives an NDIS packet trace through netsh and converts the
// resulting ETL file to pcapng with etl2pcapng.
package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSession is the netsh session name shared by trace start and stop.
const DefaultSession = "ndis_pcap"

// Prompt is written to Out once the trace is running.
const Prompt = "Network trace started, press Enter to stop..."

// Trace identifies the trace-control utility and the session it manages.
type Trace struct {
	Command string
	Session string
}

// StartArgs are the arguments that begin a capture into traceFile.
func (t Trace) StartArgs(traceFile string) []string {
	return []string{
		"trace", "start",
		"capture=yes",
		"report=disabled",
		"traceFile=" + traceFile,
		"sessionname=" + t.session(),
	}
}

// StopArgs are the arguments that end the capture session.
func (t Trace) StopArgs() []string {
	return []string{"trace", "stop", "sessionname=" + t.session()}
}

func (t Trace) session() string {
	if t.Session == "" {
		return DefaultSession
	}
	return t.Session
}

// Result describes a finished run.
type Result struct {
	Session       string
	Paths         Paths
	StartedAt     time.Time
	StoppedAt     time.Time
	ConverterCode int
	ExitCode      int
	Cleaned       bool
	OutputSize    int64
}

// Capture runs one trace session end to end.
type Capture struct {
	Runner  Runner
	Trace   Trace
	Paths   Paths
	Options Options

	In  io.Reader
	Out io.Writer
	Log *logrus.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run starts the trace, waits for a line on In, stops the trace, converts the
// intermediate file and removes it when cleanup is enabled. A start or stop
// failure aborts the run; a converter failure does not skip cleanup. The
// returned error is an *ExitError whenever the exit code is non-zero.
func (c *Capture) Run(ctx context.Context) (Result, error) {
	log := c.logger()
	res := Result{
		Session: c.Trace.session(),
		Paths:   c.Paths,
	}

	traceName := commandName(c.Trace.Command)

	if code := c.spawn(ctx, c.Trace.Command, c.Trace.StartArgs(c.Paths.Intermediate)...); code != 0 {
		log.Errorf("%s trace start failed with code %d", traceName, code)
		res.ExitCode = code
		return res, &ExitError{Code: code}
	}
	res.StartedAt = c.now()

	fmt.Fprintln(c.output(), Prompt)
	c.waitForInput()

	if code := c.spawn(ctx, c.Trace.Command, c.Trace.StopArgs()...); code != 0 {
		log.Errorf("%s trace stop failed with code %d", traceName, code)
		res.ExitCode = code
		return res, &ExitError{Code: code}
	}
	res.StoppedAt = c.now()

	res.ConverterCode = c.spawn(ctx, c.Paths.Converter, c.Paths.Intermediate, c.Paths.Output)
	if res.ConverterCode != 0 {
		log.Errorf("%s failed with code %d", commandName(c.Paths.Converter), res.ConverterCode)
	} else if fi, err := os.Stat(c.Paths.Output); err == nil {
		res.OutputSize = fi.Size()
	}
	res.ExitCode = res.ConverterCode

	if c.Options.Cleanup {
		if err := os.Remove(c.Paths.Intermediate); err != nil {
			log.WithError(err).Warn("could not delete temporary ETL file as requested")
		} else {
			res.Cleaned = true
		}
	}

	if res.ExitCode != 0 {
		return res, &ExitError{Code: res.ExitCode}
	}
	return res, nil
}

// spawn runs name and folds a spawn error into ExitFailure so every failure
// is a non-zero code.
func (c *Capture) spawn(ctx context.Context, name string, args ...string) int {
	log := c.logger()
	log.Debugf("running %s %s", name, strings.Join(args, " "))

	code, err := c.Runner.Run(ctx, name, args...)
	if err != nil {
		log.WithError(err).Errorf("could not run %s", name)
		return ExitFailure
	}
	log.WithField("code", code).Debugf("%s exited", commandName(name))
	return code
}

// waitForInput blocks until a full line or EOF. There is no timeout; the
// trace keeps running until the user answers.
func (c *Capture) waitForInput() {
	if c.In == nil {
		return
	}
	if _, err := bufio.NewReader(c.In).ReadString('\n'); err != nil && err != io.EOF {
		c.logger().WithError(err).Warn("could not read from stdin, stopping trace")
	}
}

func (c *Capture) logger() *logrus.Logger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

func (c *Capture) output() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

func (c *Capture) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// commandName strips directory and extension: C:\Windows\System32\netsh.exe
// becomes netsh.
func commandName(path string) string {
	base := path[strings.LastIndexAny(path, `/\`)+1:]
	return strings.TrimSuffix(base, filepath.Ext(base))
}
