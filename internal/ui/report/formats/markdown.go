package formats

import (
	"fmt"
	"ksymtypes/internal/engine/compare"
	"ksymtypes/internal/engine/diff"
	"ksymtypes/internal/engine/symtypes"
	"strings"
	"time"
)

type MarkdownReportOptions struct {
	OldPath     string
	NewPath     string
	Version     string
	GeneratedAt time.Time
}

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(res *compare.Result, opts MarkdownReportOptions) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Kernel ABI Comparison\n")
	b.WriteString("old: " + nonEmpty(opts.OldPath, "unknown") + "\n")
	b.WriteString("new: " + nonEmpty(opts.NewPath, "unknown") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# ABI Comparison\n\n")
	b.WriteString("| Added | Removed | Changed | Changed types |\n")
	b.WriteString("| ---: | ---: | ---: | ---: |\n")
	b.WriteString(fmt.Sprintf("| %d | %d | %d | %d |\n\n", len(res.Added), len(res.Removed), len(res.Changed), len(res.TypeChanges)))

	if !res.HasDifferences() {
		b.WriteString("No differences found.\n")
		return b.String(), nil
	}

	writeNameList(&b, "Removed Exports", res.Removed)
	writeNameList(&b, "Added Exports", res.Added)

	if len(res.Changed) > 0 {
		b.WriteString("## Changed Exports\n\n")
		b.WriteString("| Export | Change path |\n")
		b.WriteString("| --- | --- |\n")
		for _, c := range res.Changed {
			b.WriteString(fmt.Sprintf("| `%s` | `%s` |\n", c.Name, c.Path))
		}
		b.WriteString("\n")
	}

	if len(res.TypeChanges) > 0 {
		b.WriteString("## Changed Types\n\n")
		for _, tc := range res.TypeChanges {
			text, err := diff.Unified(
				diff.PrettyFormat(symtypes.TokenStrings(tc.Old)),
				diff.PrettyFormat(symtypes.TokenStrings(tc.New)),
			)
			if err != nil {
				return "", err
			}
			b.WriteString(fmt.Sprintf("### `%s`\n\n", tc.Key))
			b.WriteString("Affects: " + codeList(tc.Exports) + "\n\n")
			b.WriteString("```diff\n" + text + "```\n\n")
		}
	}

	return b.String(), nil
}

func writeNameList(b *strings.Builder, title string, names []string) {
	if len(names) == 0 {
		return
	}
	b.WriteString("## " + title + "\n\n")
	for _, n := range names {
		b.WriteString("- `" + n + "`\n")
	}
	b.WriteString("\n")
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
