// Package app wires configuration, loading, the consolidation and comparison
// engines, reports and the run history into the operations the CLI exposes.
package app

import (
	"context"
	"fmt"
	"io"
	"ksymtypes/internal/core/config"
	"ksymtypes/internal/core/errors"
	"ksymtypes/internal/data/history"
	"ksymtypes/internal/engine/loader"
	"ksymtypes/internal/engine/symtypes"
	"ksymtypes/internal/shared/observability"
	"ksymtypes/internal/shared/util"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type App struct {
	Config *config.Config
	Logger logrus.FieldLogger
	// Timing logs the duration of each phase at info level.
	Timing bool

	parseOpts symtypes.ParseOptions

	historyMu sync.Mutex
	history   *history.Store
}

// New validates cfg and prepares an App. A nil logger discards output.
func New(cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	parseOpts, err := parseOptions(cfg.Parser)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:    cfg,
		Logger:    logger,
		parseOpts: parseOpts,
	}, nil
}

func parseOptions(p config.Parser) (symtypes.ParseOptions, error) {
	opts := symtypes.ParseOptions{}
	for _, name := range p.OpaqueKinds {
		k, err := symtypes.ParseKind(name)
		if err != nil {
			return opts, errors.Wrap(err, errors.CodeValidationError, "invalid parser.opaque_kinds")
		}
		opts.OpaqueKinds = append(opts.OpaqueKinds, k)
	}
	return opts, nil
}

// Close releases the history store if it was opened.
func (a *App) Close() error {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	if a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}

func (a *App) loaderOptions() loader.Options {
	return loader.Options{
		Scan: loader.ScanOptions{
			Extension:    a.Config.Scan.Extension,
			ExcludeDirs:  a.Config.Scan.ExcludeDirs,
			ExcludeFiles: a.Config.Scan.ExcludeFiles,
		},
		Parse:   a.parseOpts,
		Workers: a.Config.Workers.Jobs,
		Logger:  a.Logger,
	}
}

// phase runs fn as a named step, recording its duration and logging it when
// timing is enabled.
func (a *App) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer.Start(ctx, "app."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	observability.PhaseDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		span.RecordError(err)
	}
	if a.Timing {
		a.Logger.WithFields(logrus.Fields{
			"phase":   name,
			"elapsed": elapsed.Round(time.Millisecond).String(),
			"heap_mb": util.HeapAllocMB(),
		}).Info("phase finished")
	}
	return err
}

func (a *App) historyStore() (*history.Store, error) {
	a.historyMu.Lock()
	defer a.historyMu.Unlock()
	if a.history != nil {
		return a.history, nil
	}
	store, err := history.Open(a.Config.History.Path, a.Config.History.BusyTimeout)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to open history"), errors.CtxPath, a.Config.History.Path)
	}
	a.history = store
	return store, nil
}

// parseFailure attaches the parse exit code to parse errors.
var parseErrorCodes = []errors.ErrorCode{
	errors.CodeMalformedLine,
	errors.CodeDuplicateDefinition,
	errors.CodeUnresolvedReference,
	errors.CodeUnknownVariant,
}

func parseFailure(err error) error {
	if err == nil {
		return nil
	}
	for _, code := range parseErrorCodes {
		if errors.IsCode(err, code) {
			return errors.WithExitCode(err, errors.ExitParseError)
		}
	}
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
