package formats

import (
	"ksymtypes/internal/engine/compare"
	"ksymtypes/internal/engine/graph"
	"ksymtypes/internal/engine/symtypes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *compare.Result {
	foo := symtypes.Key{Kind: symtypes.KindStruct, Name: "foo"}
	return &compare.Result{
		Added:   []string{"new_fn"},
		Removed: []string{"old_fn"},
		Changed: []compare.ChangedSymbol{{
			Name: "use_foo",
			Path: graph.ChangePath{{Key: symtypes.ExportKey("use_foo")}, {Key: foo, Member: "b"}},
		}},
		TypeChanges: []compare.TypeChange{{
			Key:     foo,
			Old:     []symtypes.Token{symtypes.Atom("struct"), symtypes.Atom("foo"), symtypes.Atom("{"), symtypes.Atom("}")},
			New:     []symtypes.Token{symtypes.Atom("struct"), symtypes.Atom("foo"), symtypes.Atom("{"), symtypes.Atom("int"), symtypes.Atom("b"), symtypes.Atom(";"), symtypes.Atom("}")},
			Exports: []string{"use_foo"},
		}},
	}
}

func TestTSVGenerator(t *testing.T) {
	gen := NewTSVGenerator(sampleResult())
	out, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, ""+
		"Change\tSymbol\tType\tPath\n"+
		"removed\told_fn\t\t\n"+
		"added\tnew_fn\t\t\n"+
		"changed\tuse_foo\ts#foo\tuse_foo -> s#foo.b\n", out)

	types, err := gen.GenerateTypeChanges()
	require.NoError(t, err)
	assert.Equal(t, "Type\tExport\tOld\tNew\ns#foo\tuse_foo\ttrue\ttrue\n", types)
}

func TestMarkdownGenerator(t *testing.T) {
	out, err := NewMarkdownGenerator().Generate(sampleResult(), MarkdownReportOptions{
		OldPath:     "v6.1",
		NewPath:     "v6.2",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "---\ntitle: Kernel ABI Comparison\nold: v6.1\nnew: v6.2\ngenerated_at: 2026-01-02T03:04:05Z\nversion: unknown\n---\n"))
	assert.Contains(t, out, "| 1 | 1 | 1 | 1 |\n")
	assert.Contains(t, out, "- `old_fn`\n")
	assert.Contains(t, out, "| `use_foo` | `use_foo -> s#foo.b` |\n")
	assert.Contains(t, out, "```diff\n@@ -1,2 +1,3 @@\n struct foo {\n+\tint b;\n }\n```\n")

	empty, err := NewMarkdownGenerator().Generate(&compare.Result{}, MarkdownReportOptions{})
	require.NoError(t, err)
	assert.Contains(t, empty, "No differences found.\n")
}
