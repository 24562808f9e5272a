// Package consolidate merges type tables from many sources into one table that
// keeps every distinct variant of each type along with where it came from.
package consolidate

import (
	"context"
	"fmt"
	"ksymtypes/internal/engine/graph"
	"ksymtypes/internal/engine/symtypes"
	"sort"
)

// Source is one input of a consolidation.
type Source struct {
	ID    string
	Table *symtypes.TypeTable
}

// Variant is one distinct definition of a type across the consolidated sources.
type Variant struct {
	Record *symtypes.TypeRecord
	// Sources lists the IDs of the sources using this variant, sorted.
	Sources []string

	origin *symtypes.TypeTable
}

type sourceEntry struct {
	id      string
	table   *symtypes.TypeTable
	mapping map[symtypes.Key]int
}

// ConsolidatedTable is the result of Consolidate. It is read-only.
type ConsolidatedTable struct {
	types   map[symtypes.Key][]*Variant
	sources []*sourceEntry
	byID    map[string]*sourceEntry
}

// Consolidate merges the sources. Sources are processed in ID order, so the
// result does not depend on the order of the input slice. Within each key the
// first variant seen is the representative. Two records are the same variant
// when they are structurally equal with named references compared by key;
// anonymous types are canonicalized first so that they compare by content.
// Sources sharing an ID are merged into one.
func Consolidate(ctx context.Context, sources []Source) (*ConsolidatedTable, error) {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &ConsolidatedTable{
		types: make(map[symtypes.Key][]*Variant),
		byID:  make(map[string]*sourceEntry),
	}
	eq := graph.NewEquivalence(graph.Shallow)

	for _, src := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := graph.CanonicalizeAnonymous(src.Table)
		if err != nil {
			return nil, fmt.Errorf("consolidate %s: %w", src.ID, err)
		}
		entry, ok := c.byID[src.ID]
		if !ok {
			entry = &sourceEntry{id: src.ID, table: table, mapping: make(map[symtypes.Key]int)}
			c.byID[src.ID] = entry
			c.sources = append(c.sources, entry)
		}
		for _, key := range table.Keys() {
			if _, done := entry.mapping[key]; done {
				continue
			}
			rec, _ := table.Lookup(key)
			entry.mapping[key] = c.addVariant(eq, key, rec, table, src.ID)
		}
	}
	return c, nil
}

func (c *ConsolidatedTable) addVariant(eq *graph.Equivalence, key symtypes.Key, rec *symtypes.TypeRecord, table *symtypes.TypeTable, id string) int {
	variants := c.types[key]
	for i, v := range variants {
		if eq.Equal(v.origin, key, table, key) {
			v.Sources = insertSorted(v.Sources, id)
			return i
		}
	}
	c.types[key] = append(variants, &Variant{Record: rec, Sources: []string{id}, origin: table})
	return len(variants)
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	if i < len(ids) && ids[i] == id {
		return ids
	}
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

// Keys returns all consolidated keys, types first.
func (c *ConsolidatedTable) Keys() []symtypes.Key {
	keys := make([]symtypes.Key, 0, len(c.types))
	for k := range c.types {
		keys = append(keys, k)
	}
	symtypes.SortKeys(keys)
	return keys
}

// Variants returns the variants of key, representative first.
func (c *ConsolidatedTable) Variants(key symtypes.Key) []*Variant {
	return c.types[key]
}

// Representative returns the first-seen variant of key.
func (c *ConsolidatedTable) Representative(key symtypes.Key) (*symtypes.TypeRecord, bool) {
	vs := c.types[key]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0].Record, true
}

// Provenance returns, for each variant of key, the sorted IDs of the sources
// using it.
func (c *ConsolidatedTable) Provenance(key symtypes.Key) [][]string {
	vs := c.types[key]
	out := make([][]string, len(vs))
	for i, v := range vs {
		out[i] = append([]string(nil), v.Sources...)
	}
	return out
}

// SourceIDs returns the IDs of the consolidated sources, sorted.
func (c *ConsolidatedTable) SourceIDs() []string {
	ids := make([]string, len(c.sources))
	for i, s := range c.sources {
		ids[i] = s.id
	}
	return ids
}

// VariantIndex returns which variant of key the source id uses.
func (c *ConsolidatedTable) VariantIndex(id string, key symtypes.Key) (int, bool) {
	s, ok := c.byID[id]
	if !ok {
		return 0, false
	}
	idx, ok := s.mapping[key]
	return idx, ok
}

// Tables rebuilds one table per source, each record taken in the variant the
// source uses. Anonymous types carry their canonical names.
func (c *ConsolidatedTable) Tables() []*symtypes.TypeTable {
	out := make([]*symtypes.TypeTable, 0, len(c.sources))
	for _, s := range c.sources {
		t := symtypes.NewTypeTable(s.id)
		keys := make([]symtypes.Key, 0, len(s.mapping))
		for k := range s.mapping {
			keys = append(keys, k)
		}
		symtypes.SortKeys(keys)
		for _, k := range keys {
			t.Add(c.types[k][s.mapping[k]].Record)
		}
		for _, k := range s.table.Opaque() {
			t.MarkOpaque(k, 0)
		}
		out = append(out, t)
	}
	return out
}

// Stats summarizes the table.
type Stats struct {
	Sources  int
	Types    int
	Exports  int
	Variants int
}

func (c *ConsolidatedTable) Stats() Stats {
	st := Stats{Sources: len(c.sources)}
	for k, vs := range c.types {
		if k.IsExport() {
			st.Exports++
		} else {
			st.Types++
		}
		st.Variants += len(vs)
	}
	return st
}
