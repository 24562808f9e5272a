package cli

import (
	"fmt"
	"ksymtypes/internal/core/app"
	"ksymtypes/internal/core/config"
	"ksymtypes/internal/core/errors"
	"ksymtypes/internal/shared/observability"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCommand(gs *globalState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "ksymtypes",
		Short:             "Consolidate and compare Linux kernel symtypes files",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           versionString,
		PersistentPreRunE: gs.persistentPreRunE,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError(fmt.Errorf("unknown command %q", args[0]))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return usageError(fmt.Errorf("a command is required"))
		},
	}
	rootCmd.SetVersionTemplate("ksymtypes {{.Version}}\n")
	rootCmd.SetOut(gs.stdout)
	rootCmd.SetErr(gs.stderr)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	rootCmd.PersistentFlags().AddFlagSet(rootPersistentFlagSet(gs))

	rootCmd.AddCommand(
		getCmdConsolidate(gs),
		getCmdCompare(gs),
		getCmdHistory(gs),
		getCmdVersion(gs),
	)
	return rootCmd
}

func rootPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVarP(&gs.flags.configPath, "config", "c", "",
		"TOML config file (default $"+config.EnvConfigPath+")")
	flags.CountVarP(&gs.flags.debug, "debug", "d", "enable debug logging, repeat for trace logging")
	flags.StringVar(&gs.flags.logFormat, "log-format", "text", "log output format: text or json")
	flags.BoolVar(&gs.flags.timing, "timing", false, "log the time spent in each phase")
	flags.StringVar(&gs.flags.metricsTextfile, "metrics-textfile", "",
		"write Prometheus metrics to this file on exit")
	flags.StringVar(&gs.flags.traceEndpoint, "trace-endpoint", "",
		"export OpenTelemetry spans to this OTLP/gRPC host:port")
	return flags
}

// persistentPreRunE configures logging, loads the configuration and builds the
// App shared by the subcommands.
func (gs *globalState) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	if err := gs.setupLogger(); err != nil {
		return err
	}

	cfg, err := config.Resolve(gs.flags.configPath)
	if err != nil {
		return errors.WithExitCode(err, errors.ExitInvalidConfig)
	}
	if gs.flags.metricsTextfile != "" {
		cfg.Metrics.Textfile = gs.flags.metricsTextfile
	}
	if gs.flags.traceEndpoint != "" {
		cfg.Tracing.Endpoint = gs.flags.traceEndpoint
	}
	gs.cfg = cfg

	shutdown, err := observability.InitTracing(cmd.Context(), observability.TracingOptions{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return errors.WithExitCode(err, errors.ExitInvalidConfig)
	}
	gs.shutdownTrace = shutdown

	a, err := app.New(cfg, gs.logger)
	if err != nil {
		return errors.WithExitCode(err, errors.ExitInvalidConfig)
	}
	a.Timing = gs.flags.timing
	gs.app = a

	gs.logger.WithField("version", versionString).Debug("ksymtypes starting")
	return nil
}

// revalidate checks the configuration after command flags were applied to it.
func (gs *globalState) revalidate() error {
	if err := config.Validate(gs.cfg); err != nil {
		return errors.WithExitCode(err, errors.ExitUsage)
	}
	return nil
}

func getCmdVersion(gs *globalState) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(gs.stdout, "ksymtypes %s\n", versionString)
			return err
		},
	}
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usageError(validate(cmd, args))
	}
}
