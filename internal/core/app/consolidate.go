package app

import (
	"bytes"
	"context"
	"io"
	"ksymtypes/internal/core/errors"
	"ksymtypes/internal/engine/consolidate"
	"ksymtypes/internal/engine/loader"
	"ksymtypes/internal/shared/observability"
	"ksymtypes/internal/shared/util"
	"ksymtypes/internal/ui/report"

	"github.com/sirupsen/logrus"
)

type ConsolidateResult struct {
	Table *consolidate.ConsolidatedTable
	// Skipped lists inputs that failed to load and were left out.
	Skipped   []loader.FileResult
	Conflicts []consolidate.Conflict
}

// ExportConflicts returns the conflicts on exported symbols.
func (r *ConsolidateResult) ExportConflicts() []consolidate.Conflict {
	return r.Table.ExportConflicts()
}

// Consolidate loads every input under paths and merges them. With
// consolidate.keep_going disabled the first input that fails to load aborts the
// run; otherwise failed inputs are listed in Skipped.
func (a *App) Consolidate(ctx context.Context, paths []string) (*ConsolidateResult, error) {
	res := &ConsolidateResult{}

	var loaded *loader.Loaded
	err := a.phase(ctx, "reading", func(ctx context.Context) error {
		var err error
		loaded, err = loader.Load(ctx, paths, a.loaderOptions())
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Skipped = loaded.Failed()
	if len(res.Skipped) > 0 && !a.Config.Consolidate.KeepGoing {
		return nil, parseFailure(res.Skipped[0].Err)
	}

	tables := loaded.Tables()
	sources := make([]consolidate.Source, len(tables))
	for i, t := range tables {
		sources[i] = consolidate.Source{ID: t.Source, Table: t}
	}

	err = a.phase(ctx, "consolidating", func(ctx context.Context) error {
		var err error
		res.Table, err = consolidate.Consolidate(ctx, sources)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Conflicts = res.Table.Conflicts()

	stats := res.Table.Stats()
	exportConflicts := len(res.ExportConflicts())
	observability.ConsolidatedTypes.Set(float64(stats.Types + stats.Exports))
	observability.ConsolidationConflicts.WithLabelValues("export").Set(float64(exportConflicts))
	observability.ConsolidationConflicts.WithLabelValues("type").Set(float64(len(res.Conflicts) - exportConflicts))

	a.Logger.WithFields(logrus.Fields{
		"sources":   stats.Sources,
		"types":     stats.Types,
		"exports":   stats.Exports,
		"variants":  stats.Variants,
		"conflicts": len(res.Conflicts),
		"skipped":   len(res.Skipped),
	}).Debug("consolidation finished")
	return res, nil
}

// WriteConsolidated writes the consolidated table to output, or to stdout when
// output is empty or "-". Files are replaced atomically.
func (a *App) WriteConsolidated(ctx context.Context, res *ConsolidateResult, output string, stdout io.Writer) error {
	return a.phase(ctx, "writing", func(context.Context) error {
		if output == "" || output == "-" {
			if err := report.WriteConsolidated(stdout, res.Table); err != nil {
				return errors.Wrap(err, errors.CodeIO, "failed to write consolidated output")
			}
			return nil
		}
		var buf bytes.Buffer
		if err := report.WriteConsolidated(&buf, res.Table); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to render consolidated output")
		}
		if err := util.WriteFileAtomic(output, buf.Bytes(), 0o644); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to write consolidated output"), errors.CtxPath, output)
		}
		return nil
	})
}

// ConsolidateOutcome turns a finished consolidation into the error the process
// should exit with: skipped inputs first, then export conflicts, then type
// conflicts when strict. Nil means a clean run.
func (a *App) ConsolidateOutcome(res *ConsolidateResult) error {
	if n := len(res.Skipped); n > 0 {
		return errors.Silent(plural(n, "input")+" could not be loaded", errors.ExitParseError)
	}
	if n := len(res.ExportConflicts()); n > 0 {
		return errors.Silent(plural(n, "export conflict")+" found", errors.ExitConflicts)
	}
	if n := len(res.Conflicts); n > 0 && a.Config.Consolidate.Strict {
		return errors.Silent(plural(n, "type conflict")+" found", errors.ExitConflicts)
	}
	return nil
}
