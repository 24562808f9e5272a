package symtypes

import (
	"fmt"
	"sort"
)

// TypeTable holds the records of one symtypes source. A table is built by the
// parser and must not be modified once it is shared.
type TypeTable struct {
	// Source is the path or identifier the table was read from.
	Source string

	records map[Key]*TypeRecord
	exports []*TypeRecord
	opaque  map[Key]int
}

func NewTypeTable(source string) *TypeTable {
	return &TypeTable{
		Source:  source,
		records: make(map[Key]*TypeRecord),
		opaque:  make(map[Key]int),
	}
}

// Add inserts rec. It returns false when a record with the same key exists.
func (t *TypeTable) Add(rec *TypeRecord) bool {
	if _, ok := t.records[rec.Key]; ok {
		return false
	}
	t.records[rec.Key] = rec
	if rec.Key.IsExport() {
		t.exports = append(t.exports, rec)
	}
	return true
}

// MarkOpaque records an unresolved reference that is tolerated because of its
// kind, together with the first line referencing it.
func (t *TypeTable) MarkOpaque(k Key, line int) {
	if _, ok := t.opaque[k]; !ok {
		t.opaque[k] = line
	}
}

func (t *TypeTable) Lookup(k Key) (*TypeRecord, bool) {
	rec, ok := t.records[k]
	return rec, ok
}

// Export returns the exported symbol name.
func (t *TypeTable) Export(name string) (*TypeRecord, bool) {
	return t.Lookup(ExportKey(name))
}

// Exports returns exported symbols in the order they were added.
func (t *TypeTable) Exports() []*TypeRecord {
	return t.exports
}

// ExportNames returns the sorted names of all exports.
func (t *TypeTable) ExportNames() []string {
	names := make([]string, len(t.exports))
	for i, rec := range t.exports {
		names[i] = rec.Key.Name
	}
	sort.Strings(names)
	return names
}

// Keys returns all record keys, types first, each group sorted by name.
func (t *TypeTable) Keys() []Key {
	keys := make([]Key, 0, len(t.records))
	for k := range t.records {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

func (t *TypeTable) Len() int {
	return len(t.records)
}

// Opaque returns the sorted keys of tolerated unresolved references.
func (t *TypeTable) Opaque() []Key {
	keys := make([]Key, 0, len(t.opaque))
	for k := range t.opaque {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

func (t *TypeTable) IsOpaque(k Key) bool {
	_, ok := t.opaque[k]
	return ok
}

// Records returns all records ordered by source line, then by key. Synthesized
// records without a line come last.
func (t *TypeTable) Records() []*TypeRecord {
	out := make([]*TypeRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Line == 0) != (b.Line == 0) {
			return a.Line != 0
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Key.Less(b.Key)
	})
	return out
}

// Rename returns a copy of the table with keys replaced according to mapping,
// both on records and on every reference. Keys absent from mapping are kept.
// Records that collapse onto the same key must have equal signatures; the
// first one is kept.
func (t *TypeTable) Rename(mapping map[Key]Key) (*TypeTable, error) {
	rename := func(k Key) Key {
		if n, ok := mapping[k]; ok {
			return n
		}
		return k
	}
	out := NewTypeTable(t.Source)
	for _, rec := range t.Records() {
		sig := make([]Token, len(rec.Signature))
		for i, tok := range rec.Signature {
			if tok.Ref != nil {
				sig[i] = Ref(rename(tok.Ref.Key))
				continue
			}
			sig[i] = tok
		}
		renamed := &TypeRecord{Key: rename(rec.Key), Signature: sig, Line: rec.Line}
		if !out.Add(renamed) {
			prev, _ := out.Lookup(renamed.Key)
			if !TokensEqual(prev.Signature, renamed.Signature) {
				return nil, fmt.Errorf("%s: renaming %s to %s collides with a different record", t.Source, rec.Key, renamed.Key)
			}
		}
	}
	for k, line := range t.opaque {
		out.MarkOpaque(rename(k), line)
	}
	return out, nil
}

// Validate checks that every reference reachable from an export resolves, marking
// unresolved references whose kind is listed in opaqueKinds as opaque. The first
// failure is returned as a ParseError.
func (t *TypeTable) Validate(opaqueKinds []Kind) error {
	tolerated := make(map[Kind]bool, len(opaqueKinds))
	for _, k := range opaqueKinds {
		tolerated[k] = true
	}
	visited := make(map[Key]bool)
	var stack []*TypeRecord
	for _, exp := range t.exports {
		stack = append(stack[:0], exp)
		visited[exp.Key] = true
		for len(stack) > 0 {
			rec := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, ref := range rec.References() {
				if visited[ref] {
					continue
				}
				target, ok := t.records[ref]
				if !ok {
					if tolerated[ref.Kind] {
						t.MarkOpaque(ref, rec.Line)
						continue
					}
					return newParseError(t.Source, rec.Line, ReasonUnresolvedReference, ref.String(),
						"Type '%s' is not known (referenced by '%s')", ref, rec.Key)
				}
				visited[ref] = true
				stack = append(stack, target)
			}
		}
	}
	return nil
}
