// # internal/ui/report/formats/tsv.go
package formats

import (
	"fmt"
	"ksymtypes/internal/engine/compare"
	"strings"
)

type TSVGenerator struct {
	result *compare.Result
}

func NewTSVGenerator(res *compare.Result) *TSVGenerator {
	return &TSVGenerator{result: res}
}

// Generate lists one row per added, removed or changed export. Changed rows
// name the type where the change path ends.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Change\tSymbol\tType\tPath\n")
	for _, name := range t.result.Removed {
		buf.WriteString(fmt.Sprintf("removed\t%s\t\t\n", name))
	}
	for _, name := range t.result.Added {
		buf.WriteString(fmt.Sprintf("added\t%s\t\t\n", name))
	}
	for _, c := range t.result.Changed {
		typ := ""
		if len(c.Path) > 0 {
			typ = c.Path[len(c.Path)-1].Key.String()
		}
		buf.WriteString(fmt.Sprintf("changed\t%s\t%s\t%s\n", c.Name, typ, c.Path))
	}

	return buf.String(), nil
}

// GenerateTypeChanges lists one row per changed type and affected export.
func (t *TSVGenerator) GenerateTypeChanges() (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tExport\tOld\tNew\n")
	for _, tc := range t.result.TypeChanges {
		for _, name := range tc.Exports {
			buf.WriteString(fmt.Sprintf("%s\t%s\t%t\t%t\n", tc.Key, name, tc.Old != nil, tc.New != nil))
		}
	}

	return buf.String(), nil
}
