package report

import (
	"fmt"
	"io"
	"ksymtypes/internal/engine/compare"
	"ksymtypes/internal/engine/diff"
	"ksymtypes/internal/engine/symtypes"
	"strings"
)

// WriteComparison renders res as text: added and removed exports, the change
// path of every changed export, and one diff per changed type listing the
// exports it affects. Blocks are separated by blank lines. Nothing is written
// for an empty result.
func WriteComparison(w io.Writer, res *compare.Result, style Style) error {
	p := newPalette(w, style.Color)
	var blocks []string

	if len(res.Removed)+len(res.Added) > 0 {
		var b strings.Builder
		for _, name := range res.Removed {
			fmt.Fprintf(&b, "Export '%s' has been removed\n", name)
		}
		for _, name := range res.Added {
			fmt.Fprintf(&b, "Export '%s' has been added\n", name)
		}
		blocks = append(blocks, b.String())
	}

	if len(res.Changed) > 0 {
		var b strings.Builder
		for _, c := range res.Changed {
			fmt.Fprintf(&b, "Export '%s' has changed: %s\n", c.Name, c.Path)
		}
		blocks = append(blocks, b.String())
	}

	for _, tc := range res.TypeChanges {
		text, err := typeChangeDiff(tc, style.Context)
		if err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString(p.title(fmt.Sprintf("The following '%d' exports are different:", len(tc.Exports))))
		b.WriteString("\n")
		for _, name := range tc.Exports {
			b.WriteString(" " + name + "\n")
		}
		b.WriteString("\n")
		b.WriteString(p.title(fmt.Sprintf("because of a changed '%s':", tc.Key)))
		b.WriteString("\n")
		b.WriteString(p.diff(text))
		blocks = append(blocks, b.String())
	}

	_, err := io.WriteString(w, strings.Join(blocks, "\n"))
	return err
}

func typeChangeDiff(tc compare.TypeChange, context int) (string, error) {
	return signatureDiff(tc.Old, tc.New, context)
}

func signatureDiff(before, after []symtypes.Token, context int) (string, error) {
	if context <= 0 {
		context = diff.DefaultContext
	}
	return diff.UnifiedContext(
		diff.PrettyFormat(symtypes.TokenStrings(before)),
		diff.PrettyFormat(symtypes.TokenStrings(after)),
		context,
	)
}
