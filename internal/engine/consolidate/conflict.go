package consolidate

import "ksymtypes/internal/engine/symtypes"

// Conflict describes a key with more than one variant. For an exported symbol
// this means two sources export the same name with different signatures.
type Conflict struct {
	Key      symtypes.Key
	Variants []*Variant
}

// IsExport reports whether the conflict is about an exported symbol.
func (c Conflict) IsExport() bool {
	return c.Key.IsExport()
}

// Conflicts returns every key with more than one variant, types first.
func (c *ConsolidatedTable) Conflicts() []Conflict {
	var out []Conflict
	for _, k := range c.Keys() {
		if vs := c.types[k]; len(vs) > 1 {
			out = append(out, Conflict{Key: k, Variants: vs})
		}
	}
	return out
}

// ExportConflicts returns the conflicts about exported symbols.
func (c *ConsolidatedTable) ExportConflicts() []Conflict {
	var out []Conflict
	for _, cf := range c.Conflicts() {
		if cf.IsExport() {
			out = append(out, cf)
		}
	}
	return out
}
