package report

import (
	"fmt"
	"io"
	"ksymtypes/internal/engine/consolidate"
	"strings"
)

const maxListedSources = 5

// WriteConflicts lists every conflict with the sources using each variant and a
// diff of each variant against the representative.
func WriteConflicts(w io.Writer, conflicts []consolidate.Conflict, style Style) error {
	p := newPalette(w, style.Color)
	var blocks []string
	for _, cf := range conflicts {
		var b strings.Builder
		if cf.IsExport() {
			b.WriteString(p.title(fmt.Sprintf("Export '%s' has %d conflicting definitions:", cf.Key.Name, len(cf.Variants))))
		} else {
			b.WriteString(p.title(fmt.Sprintf("Type '%s' has %d variants:", cf.Key, len(cf.Variants))))
		}
		b.WriteString("\n")
		for i, v := range cf.Variants {
			fmt.Fprintf(&b, " @%d used by %s\n", i, listSources(v.Sources))
		}
		base := cf.Variants[0].Record.Signature
		for i, v := range cf.Variants[1:] {
			text, err := signatureDiff(base, v.Record.Signature, style.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "@0 -> @%d:\n", i+1)
			b.WriteString(p.diff(text))
		}
		blocks = append(blocks, b.String())
	}
	_, err := io.WriteString(w, strings.Join(blocks, "\n"))
	return err
}

func listSources(ids []string) string {
	if len(ids) <= maxListedSources {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(ids[:maxListedSources], ", "), len(ids)-maxListedSources)
}
