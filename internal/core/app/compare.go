package app

import (
	"context"
	"io"
	"ksymtypes/internal/core/errors"
	"ksymtypes/internal/data/history"
	"ksymtypes/internal/engine/compare"
	"ksymtypes/internal/engine/loader"
	"ksymtypes/internal/engine/symtypes"
	"ksymtypes/internal/shared/observability"
	"ksymtypes/internal/ui/report"
	"ksymtypes/internal/ui/report/formats"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Version is reported in generated documents. The CLI sets it at startup.
var Version = "dev"

// Compare loads both corpora and compares them. Any input that fails to load
// fails the comparison.
func (a *App) Compare(ctx context.Context, oldPath, newPath string) (*compare.Result, error) {
	var oldCorpus, newCorpus *symtypes.Corpus
	err := a.phase(ctx, "reading", func(ctx context.Context) error {
		opts := a.loaderOptions()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			oldCorpus, err = loader.LoadCorpus(gctx, oldPath, opts)
			return err
		})
		g.Go(func() error {
			var err error
			newCorpus, err = loader.LoadCorpus(gctx, newPath, opts)
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return nil, parseFailure(err)
	}

	var res *compare.Result
	err = a.phase(ctx, "comparing", func(ctx context.Context) error {
		var err error
		res, err = compare.Compare(ctx, oldCorpus, newCorpus, compare.Options{
			Workers: a.Config.Workers.Jobs,
			Logger:  a.Logger,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.ComparisonDifferences.WithLabelValues("added").Set(float64(len(res.Added)))
	observability.ComparisonDifferences.WithLabelValues("removed").Set(float64(len(res.Removed)))
	observability.ComparisonDifferences.WithLabelValues("changed").Set(float64(len(res.Changed)))
	observability.ComparisonDifferences.WithLabelValues("types").Set(float64(len(res.TypeChanges)))
	return res, nil
}

// ReportOptions selects how WriteComparison renders a result.
type ReportOptions struct {
	Format  string
	Color   bool
	OldPath string
	NewPath string
}

// WriteComparison renders res in the requested format.
func (a *App) WriteComparison(ctx context.Context, w io.Writer, res *compare.Result, opts ReportOptions) error {
	return a.phase(ctx, "writing", func(context.Context) error {
		var (
			out string
			err error
		)
		switch strings.ToLower(opts.Format) {
		case "", "text":
			err = report.WriteComparison(w, res, report.Style{Color: opts.Color, Context: a.Config.Compare.Context})
			if err != nil {
				return errors.Wrap(err, errors.CodeIO, "failed to write comparison")
			}
			return nil
		case "tsv":
			out, err = formats.NewTSVGenerator(res).Generate()
		case "markdown":
			out, err = formats.NewMarkdownGenerator().Generate(res, formats.MarkdownReportOptions{
				OldPath: opts.OldPath,
				NewPath: opts.NewPath,
				Version: Version,
			})
		default:
			return errors.WithExitCode(errors.New(errors.CodeValidationError, "unknown report format "+opts.Format), errors.ExitUsage)
		}
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to render comparison")
		}
		if _, err := io.WriteString(w, out); err != nil {
			return errors.Wrap(err, errors.CodeIO, "failed to write comparison")
		}
		return nil
	})
}

// CompareOutcome returns the silent error signalling differences, or nil.
func CompareOutcome(res *compare.Result) error {
	if !res.HasDifferences() {
		return nil
	}
	return errors.Silent("ABI differences found", errors.ExitDifferences)
}

// RecordRun stores a comparison in the run history and returns its id.
func (a *App) RecordRun(ctx context.Context, oldPath, newPath string, res *compare.Result) (string, error) {
	store, err := a.historyStore()
	if err != nil {
		return "", err
	}
	run := history.Run{
		Project:   a.Config.History.Project,
		Timestamp: time.Now().UTC(),
		OldPath:   oldPath,
		NewPath:   newPath,
		Added:     len(res.Added),
		Removed:   len(res.Removed),
		Changed:   len(res.Changed),
	}
	for _, name := range res.Added {
		run.Symbols = append(run.Symbols, history.Symbol{Name: name, Change: history.ChangeAdded})
	}
	for _, name := range res.Removed {
		run.Symbols = append(run.Symbols, history.Symbol{Name: name, Change: history.ChangeRemoved})
	}
	for _, c := range res.Changed {
		run.Symbols = append(run.Symbols, history.Symbol{Name: c.Name, Change: history.ChangeChanged, Path: c.Path.String()})
	}
	id, err := store.SaveRun(ctx, run)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeIO, "failed to record run")
	}
	a.Logger.WithField("id", id).Debug("comparison recorded")
	return id, nil
}

// History lists recorded runs of project, newest first. An empty project uses
// the configured one.
func (a *App) History(ctx context.Context, project string, limit int) ([]history.Run, error) {
	if project == "" {
		project = a.Config.History.Project
	}
	store, err := a.historyStore()
	if err != nil {
		return nil, err
	}
	runs, err := store.ListRuns(ctx, project, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "failed to list runs")
	}
	return runs, nil
}

// RunSymbols returns the exports recorded for a run.
func (a *App) RunSymbols(ctx context.Context, id string) ([]history.Symbol, error) {
	store, err := a.historyStore()
	if err != nil {
		return nil, err
	}
	symbols, err := store.Symbols(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "failed to load run symbols")
	}
	return symbols, nil
}
