package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	c "github.com/d-ashe/ndis-pcap/config"
	"github.com/d-ashe/ndis-pcap/pkg/capture"
)

var version = "1.0.0"

const usage = `ndis_pcap [/noclean] <file.pcap>
	Captures a packet trace file using the built-in Windows NDIS Capture filter

	/noclean - Do not delete intermediate *.etl file
`

// newRunner is swapped out in tests.
var newRunner = func() capture.Runner {
	return capture.NewExecRunner()
}

// NdisPcapCmd builds the root command. The command line is scanned by
// capture.ParseArgs instead of pflag since it mixes /switches with -flags.
func NdisPcapCmd() *cobra.Command {
	v := viper.New()
	log := logrus.New()

	rootCmd := &cobra.Command{
		Use:   "ndis_pcap [/noclean] <file.pcap>",
		Short: "ndis_pcap captures an NDIS packet trace as a pcapng file",
		Long: `ndis_pcap starts a netsh trace session, waits for Enter, stops the
session and converts the resulting .etl file with etl2pcapng.`,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setUpLogs(log, cmd, logrus.WarnLevel.String())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, v, log)
		},
	}

	return rootCmd
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return capture.ExitOK
	}
	var exitErr *capture.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return capture.ExitFailure
}

func setUpLogs(log *logrus.Logger, cmd *cobra.Command, level string) {
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&cliFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warn("invalid log level, keeping " + log.GetLevel().String())
		return
	}
	log.SetLevel(lvl)
}

func initConfig(v *viper.Viper, log *logrus.Logger) c.Configurations {
	c.Init(v, os.Getenv(c.EnvConfigFile))
	if err := c.Read(v); err != nil {
		log.WithError(err).Warn("could not read config file, using defaults")
	}

	configuration, err := c.Load(v)
	if err != nil {
		log.WithError(err).Warn("could not decode config, using defaults")
		return c.Defaults()
	}
	return configuration
}

// run parses the command line before touching the config file, so version
// and usage exits perform no file I/O.
func run(cmd *cobra.Command, args []string, v *viper.Viper, log *logrus.Logger) error {
	opts, err := capture.ParseArgs(args)
	if err != nil {
		log.WithError(err).Debug("rejected command line")
		fmt.Fprint(cmd.ErrOrStderr(), usage)
		return &capture.ExitError{Code: capture.ExitUsage, Err: err}
	}
	if opts.ShowVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "ndis_pcap version %s\n", version)
		return nil
	}

	configuration := initConfig(v, log)
	setUpLogs(log, cmd, configuration.Log.Level)

	paths, err := capture.DerivePaths(opts.OutputPath, capture.PathConfig{
		Extension:     configuration.Trace.Extension,
		ConverterName: configuration.Converter.Name,
		ConverterDir:  configuration.Converter.Dir,
	})
	if err != nil {
		log.Error(err)
		return &capture.ExitError{Code: capture.ExitFailure, Err: err}
	}
	log.WithFields(logrus.Fields{
		"intermediate": paths.Intermediate,
		"converter":    paths.Converter,
	}).Debug("derived paths")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	session := &capture.Capture{
		Runner: newRunner(),
		Trace: capture.Trace{
			Command: configuration.Trace.Command,
			Session: configuration.Trace.Session,
		},
		Paths:   paths,
		Options: opts,
		In:      cmd.InOrStdin(),
		Out:     cmd.OutOrStdout(),
		Log:     log,
	}
	res, runErr := session.Run(ctx)

	publishReport(ctx, configuration.Report, res, log)

	return runErr
}
