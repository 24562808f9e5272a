// Package cli implements the ksymtypes command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"ksymtypes/internal/core/app"
	"ksymtypes/internal/core/config"
	"ksymtypes/internal/core/errors"
	"ksymtypes/internal/shared/observability"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const versionString = "1.0.0"

const shutdownTimeout = 5 * time.Second

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath      string
	debug           int
	logFormat       string
	timing          bool
	metricsTextfile string
	traceEndpoint   string
}

// globalState is created once per invocation and passed to every command.
type globalState struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	logger *logrus.Logger
	flags  globalFlags

	cfg           *config.Config
	app           *app.App
	shutdownTrace func(context.Context) error
}

// Run executes the command line in args (without the program name) and returns
// the process exit code.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app.Version = versionString
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.InfoLevel)

	gs := &globalState{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
	root := newRootCommand(gs)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	gs.close()

	if err == nil {
		return int(errors.ExitSuccess)
	}
	if !errors.IsSilent(err) {
		logger.Error(err.Error())
	}
	return int(errors.ExitCodeOf(err))
}

// close releases everything persistentPreRunE set up. Failures are logged and
// do not change the exit code.
func (gs *globalState) close() {
	if gs.app != nil {
		if err := gs.app.Close(); err != nil {
			gs.logger.WithError(err).Warn("failed to close history")
		}
	}
	if gs.shutdownTrace != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := gs.shutdownTrace(ctx); err != nil {
			gs.logger.WithError(err).Warn("failed to flush traces")
		}
	}
	if gs.cfg != nil && gs.cfg.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(gs.cfg.Metrics.Textfile); err != nil {
			gs.logger.WithError(err).WithField("path", gs.cfg.Metrics.Textfile).Warn("failed to write metrics")
		}
	}
}

func (gs *globalState) setupLogger() error {
	switch gs.flags.logFormat {
	case "", "text":
		gs.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		gs.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return usageError(fmt.Errorf("invalid --log-format %q, expected text or json", gs.flags.logFormat))
	}
	switch {
	case gs.flags.debug >= 2:
		gs.logger.SetLevel(logrus.TraceLevel)
	case gs.flags.debug == 1:
		gs.logger.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func usageError(err error) error {
	return errors.WithExitCode(err, errors.ExitUsage)
}
