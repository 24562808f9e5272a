package symtypes

import (
	"ksymtypes/internal/shared/util"
	"sort"
)

// Duplicate is an export defined by more than one table of a corpus.
type Duplicate struct {
	Name string
	// First is the source whose definition the corpus uses.
	First  string
	Second string
	// Differs is set when the two definitions do not have the same signature.
	Differs bool
	Line    int
}

// Corpus is a set of tables searched together for exported symbols. When an
// export appears in several tables the first table wins.
type Corpus struct {
	tables     []*TypeTable
	exports    map[string]int
	duplicates []Duplicate
}

func NewCorpus(tables []*TypeTable) *Corpus {
	c := &Corpus{tables: tables, exports: make(map[string]int)}
	seen := make(map[string]bool)
	for i, t := range tables {
		for _, rec := range t.Exports() {
			name := rec.Key.Name
			first, ok := c.exports[name]
			if !ok {
				c.exports[name] = i
				continue
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			prev, _ := tables[first].Export(name)
			c.duplicates = append(c.duplicates, Duplicate{
				Name:    name,
				First:   tables[first].Source,
				Second:  t.Source,
				Differs: !TokensEqual(prev.Signature, rec.Signature),
				Line:    rec.Line,
			})
		}
	}
	sort.Slice(c.duplicates, func(i, j int) bool { return c.duplicates[i].Name < c.duplicates[j].Name })
	return c
}

func (c *Corpus) Tables() []*TypeTable {
	return c.tables
}

// Exports returns all exported symbol names, sorted.
func (c *Corpus) Exports() []string {
	return util.SortedStringKeys(c.exports)
}

// TableFor returns the table that defines the export name.
func (c *Corpus) TableFor(name string) (*TypeTable, bool) {
	i, ok := c.exports[name]
	if !ok {
		return nil, false
	}
	return c.tables[i], true
}

// Duplicates lists exports defined by more than one table, by name.
func (c *Corpus) Duplicates() []Duplicate {
	return c.duplicates
}

// Validate fails on the first export that two tables define with different
// signatures. Identical redefinitions are accepted.
func (c *Corpus) Validate() error {
	for _, d := range c.duplicates {
		if d.Differs {
			return newParseError(d.Second, d.Line, ReasonDuplicateDefinition, d.Name,
				"Export '%s' is duplicate. Previous occurrence found in '%s'.", d.Name, d.First)
		}
	}
	return nil
}
