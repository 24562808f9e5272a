// Package report renders consolidated tables, comparison results and conflict
// listings.
package report

import (
	"bufio"
	"io"
	"ksymtypes/internal/engine/consolidate"
	"ksymtypes/internal/engine/graph"
	"ksymtypes/internal/engine/symtypes"
)

type consolidatedFile struct {
	id   string
	keys []symtypes.Key
}

// WriteConsolidated writes c in the consolidated symtypes format. Only records
// reachable from each source's exports are written. Variants are numbered by
// first appearance when sources are visited in ID order; keys with a single
// variant carry no suffix and are left implicit in the file lines, except for
// exports.
func WriteConsolidated(w io.Writer, c *consolidate.ConsolidatedTable) error {
	outIdx := make(map[symtypes.Key]map[int]int)
	var files []consolidatedFile

	for _, t := range c.Tables() {
		names := t.ExportNames()
		roots := make([]symtypes.Key, len(names))
		for i, n := range names {
			roots[i] = symtypes.ExportKey(n)
		}
		order := graph.Reachable(t, roots)
		for _, k := range order {
			vi, _ := c.VariantIndex(t.Source, k)
			m := outIdx[k]
			if m == nil {
				m = make(map[int]int)
				outIdx[k] = m
			}
			if _, ok := m[vi]; !ok {
				m[vi] = len(m)
			}
		}
		files = append(files, consolidatedFile{id: t.Source, keys: order})
	}

	keys := make([]symtypes.Key, 0, len(outIdx))
	for k := range outIdx {
		keys = append(keys, k)
	}
	symtypes.SortKeys(keys)

	bw := bufio.NewWriter(w)
	for _, k := range keys {
		m := outIdx[k]
		byOut := make([]int, len(m))
		for vi, oi := range m {
			byOut[oi] = vi
		}
		variants := c.Variants(k)
		for oi, vi := range byOut {
			name := symtypes.VariantName(k, oi, len(m) > 1)
			if err := symtypes.WriteRecord(bw, name, variants[vi].Record.Signature); err != nil {
				return err
			}
		}
	}

	for _, f := range files {
		if _, err := bw.WriteString(symtypes.FileLinePrefix + f.id); err != nil {
			return err
		}
		entries := append([]symtypes.Key(nil), f.keys...)
		symtypes.SortKeys(entries)
		for _, k := range entries {
			m := outIdx[k]
			var name string
			switch {
			case len(m) > 1:
				vi, _ := c.VariantIndex(f.id, k)
				name = symtypes.VariantName(k, m[vi], true)
			case k.IsExport():
				name = k.String()
			default:
				continue
			}
			if _, err := bw.WriteString(" " + name); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
