package loader

import (
	"context"
	"io"
	"ksymtypes/internal/core/errors"
	"ksymtypes/internal/engine/symtypes"
	"ksymtypes/internal/shared/observability"
	"ksymtypes/internal/shared/util"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Options controls Load.
type Options struct {
	Scan  ScanOptions
	Parse symtypes.ParseOptions
	// Workers bounds concurrent parsing. Zero means one worker per CPU.
	Workers int
	Logger  logrus.FieldLogger
	// ProgressInterval throttles progress logging; zero uses two seconds.
	ProgressInterval time.Duration
}

// FileResult is the outcome of loading one input.
type FileResult struct {
	Input  Input
	Tables []*symtypes.TypeTable
	Err    error
}

// Loaded holds the results of Load in input order.
type Loaded struct {
	Results []FileResult
}

// Tables returns the tables of every successfully parsed input. Tables from a
// plain file are named by the input ID; tables from a consolidated file keep
// the names recorded in it.
func (l *Loaded) Tables() []*symtypes.TypeTable {
	var out []*symtypes.TypeTable
	for _, r := range l.Results {
		if r.Err == nil {
			out = append(out, r.Tables...)
		}
	}
	return out
}

// Failed returns the inputs that could not be loaded.
func (l *Loaded) Failed() []FileResult {
	var out []FileResult
	for _, r := range l.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Load collects the inputs named by paths and parses them in parallel. A file
// that fails to parse is recorded in its FileResult and does not stop the
// others; the returned error covers collection failures and cancellation.
func Load(ctx context.Context, paths []string, opts Options) (*Loaded, error) {
	ctx, span := observability.Tracer.Start(ctx, "loader.Load")
	defer span.End()

	inputs, err := Collect(paths, opts.Scan)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "failed to collect symtypes files")
	}
	span.SetAttributes(attribute.Int("files", len(inputs)))

	logger := opts.logger()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	progress := util.NewProgress(len(inputs), interval)

	results := make([]FileResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = loadFile(in, opts.Parse)
			if err := results[i].Err; err != nil {
				observability.FilesParsedTotal.WithLabelValues("error").Inc()
				logger.WithField("path", in.Path).WithError(err).Warn("failed to load symtypes file")
			} else {
				observability.FilesParsedTotal.WithLabelValues("ok").Inc()
			}
			progress.Step(func(done, total int64) {
				logger.WithFields(logrus.Fields{"done": done, "total": total}).Debug("loading symtypes files")
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := &Loaded{Results: results}
	logger.WithFields(logrus.Fields{
		"files":  len(inputs),
		"failed": len(loaded.Failed()),
	}).Debug("symtypes files loaded")
	return loaded, nil
}

func loadFile(in Input, opts symtypes.ParseOptions) FileResult {
	start := time.Now()
	f, err := os.Open(in.Path)
	if err != nil {
		err = errors.AddContext(errors.Wrap(err, errors.CodeIO, "failed to open symtypes file"), errors.CtxPath, in.Path)
		return FileResult{Input: in, Err: errors.AddContext(err, errors.CtxSource, in.ID)}
	}
	defer f.Close()

	tables, err := symtypes.Read(in.Path, f, opts)
	if err != nil {
		return FileResult{Input: in, Err: err}
	}
	format := "plain"
	if len(tables) == 1 && tables[0].Source == in.Path {
		tables[0].Source = in.ID
	} else {
		format = "consolidated"
	}
	records := 0
	for _, t := range tables {
		records += t.Len()
	}
	observability.ParsingDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	observability.RecordsParsedTotal.Add(float64(records))
	return FileResult{Input: in, Tables: tables}
}

// LoadCorpus loads every input under path into a corpus for comparison. Any
// file that fails to load fails the whole corpus.
func LoadCorpus(ctx context.Context, path string, opts Options) (*symtypes.Corpus, error) {
	loaded, err := Load(ctx, []string{path}, opts)
	if err != nil {
		return nil, err
	}
	if failed := loaded.Failed(); len(failed) > 0 {
		return nil, failed[0].Err
	}
	corpus := symtypes.NewCorpus(loaded.Tables())
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	for _, d := range corpus.Duplicates() {
		opts.logger().WithFields(logrus.Fields{"export": d.Name, "first": d.First, "second": d.Second}).
			Debug("export defined identically in more than one file")
	}
	return corpus, nil
}
