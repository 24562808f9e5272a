// Package compare reports the ABI differences between two corpora of type
// tables.
package compare

import (
	"context"
	"io"
	"ksymtypes/internal/engine/graph"
	"ksymtypes/internal/engine/symtypes"
	"ksymtypes/internal/shared/observability"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options tunes a comparison.
type Options struct {
	// Workers bounds the number of exports compared concurrently. Zero means
	// one worker per CPU.
	Workers int
	Logger  logrus.FieldLogger
}

// ChangedSymbol is an export present on both sides whose type graph differs.
type ChangedSymbol struct {
	Name string
	Path graph.ChangePath
}

// TypeChange is a record that differs directly between the two sides, with the
// exports it affects. Old or New is nil when the record is missing on that side.
type TypeChange struct {
	Key     symtypes.Key
	Old     []symtypes.Token
	New     []symtypes.Token
	Exports []string
}

// Result lists all differences, each slice sorted.
type Result struct {
	Added       []string
	Removed     []string
	Changed     []ChangedSymbol
	TypeChanges []TypeChange
}

// HasDifferences reports whether the comparison found anything.
func (r *Result) HasDifferences() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || len(r.Changed) > 0
}

// ChangedNames returns the names of changed exports.
func (r *Result) ChangedNames() []string {
	names := make([]string, len(r.Changed))
	for i, c := range r.Changed {
		names[i] = c.Name
	}
	return names
}

type symbolOutcome struct {
	changed ChangedSymbol
	types   []typeDelta
}

// Compare finds exports added to or removed from newCorpus relative to
// oldCorpus, and exports present in both whose type graphs are not
// structurally equivalent. Exports are compared in parallel and share one
// memo of proven verdicts.
func Compare(ctx context.Context, oldCorpus, newCorpus *symtypes.Corpus, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	res := &Result{}
	var common []string
	for _, name := range oldCorpus.Exports() {
		if _, ok := newCorpus.TableFor(name); ok {
			common = append(common, name)
		} else {
			res.Removed = append(res.Removed, name)
		}
	}
	for _, name := range newCorpus.Exports() {
		if _, ok := oldCorpus.TableFor(name); !ok {
			res.Added = append(res.Added, name)
		}
	}

	eq := graph.NewEquivalence(graph.Deep)
	outcomes := make([]*symbolOutcome, len(common))
	var compared atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range common {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			oldTable, _ := oldCorpus.TableFor(name)
			newTable, _ := newCorpus.TableFor(name)
			key := symtypes.ExportKey(name)
			compared.Add(1)
			if eq.Equal(oldTable, key, newTable, key) {
				return nil
			}
			outcomes[i] = &symbolOutcome{
				changed: ChangedSymbol{Name: name, Path: graph.FindChangePath(eq, oldTable, newTable, key)},
				types:   collectTypeChanges(eq, oldTable, newTable, key),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[string]*TypeChange)
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		res.Changed = append(res.Changed, o.changed)
		for _, d := range o.types {
			id := d.id()
			tc, ok := merged[id]
			if !ok {
				tc = &TypeChange{Key: d.key, Old: d.old, New: d.new}
				merged[id] = tc
			}
			tc.Exports = append(tc.Exports, o.changed.Name)
		}
	}
	for _, tc := range merged {
		sort.Strings(tc.Exports)
		res.TypeChanges = append(res.TypeChanges, *tc)
	}
	sort.Slice(res.TypeChanges, func(i, j int) bool {
		a, b := res.TypeChanges[i], res.TypeChanges[j]
		if a.Key != b.Key {
			return a.Key.Less(b.Key)
		}
		if as, bs := joinTokens(a.Old), joinTokens(b.Old); as != bs {
			return as < bs
		}
		return joinTokens(a.New) < joinTokens(b.New)
	})

	observability.ComparedSymbolsTotal.Add(float64(compared.Load()))
	size, hits, misses := eq.Stats()
	logger.WithFields(logrus.Fields{
		"compared": compared.Load(),
		"changed":  len(res.Changed),
		"added":    len(res.Added),
		"removed":  len(res.Removed),
		"memo":     size,
		"hits":     hits,
		"misses":   misses,
	}).Debug("comparison finished")
	return res, nil
}

func joinTokens(tokens []symtypes.Token) string {
	if tokens == nil {
		return "\x00"
	}
	return strings.Join(symtypes.TokenStrings(tokens), " ")
}
