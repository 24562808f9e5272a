package report

import (
	"bytes"
	"context"
	"ksymtypes/internal/engine/compare"
	"ksymtypes/internal/engine/consolidate"
	"ksymtypes/internal/engine/symtypes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, id, data string) *symtypes.TypeTable {
	t.Helper()
	table, err := symtypes.Parse(id, strings.NewReader(data), symtypes.DefaultParseOptions())
	require.NoError(t, err)
	return table
}

func consolidateStrings(t *testing.T, files map[string]string) *consolidate.ConsolidatedTable {
	t.Helper()
	var sources []consolidate.Source
	for id, data := range files {
		sources = append(sources, consolidate.Source{ID: id, Table: parse(t, id, data)})
	}
	c, err := consolidate.Consolidate(context.Background(), sources)
	require.NoError(t, err)
	return c
}

func writeConsolidated(t *testing.T, c *consolidate.ConsolidatedTable) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteConsolidated(&buf, c))
	return buf.String()
}

func TestWriteConsolidatedVariants(t *testing.T) {
	c := consolidateStrings(t, map[string]string{
		"test_b.symtypes": "s#foo struct foo { UNKNOWN }\nbaz int baz ( s#foo )\n",
		"test_a.symtypes": "s#foo struct foo { int a ; }\nbar int bar ( s#foo )\n",
	})
	assert.Equal(t, ""+
		"s#foo@0 struct foo { int a ; }\n"+
		"s#foo@1 struct foo { UNKNOWN }\n"+
		"bar int bar ( s#foo )\n"+
		"baz int baz ( s#foo )\n"+
		"F#test_a.symtypes s#foo@0 bar\n"+
		"F#test_b.symtypes s#foo@1 baz\n", writeConsolidated(t, c))
}

func TestWriteConsolidatedSharedTypes(t *testing.T) {
	c := consolidateStrings(t, map[string]string{
		"test_a.symtypes": "s#foo struct foo { int a ; }\ns#unused struct unused { }\nbar int bar ( s#foo )\n",
		"test_b.symtypes": "s#foo struct foo { int a ; }\nbaz int baz ( s#foo )\n",
	})
	assert.Equal(t, ""+
		"s#foo struct foo { int a ; }\n"+
		"bar int bar ( s#foo )\n"+
		"baz int baz ( s#foo )\n"+
		"F#test_a.symtypes bar\n"+
		"F#test_b.symtypes baz\n", writeConsolidated(t, c), "unreachable types are dropped")
}

func TestConsolidationIsIdempotent(t *testing.T) {
	c := consolidateStrings(t, map[string]string{
		"a.symtypes": "s#list struct list { s#list * next ; }\ns#foo struct foo { int a ; s#list l ; }\nbar int bar ( s#foo )\n",
		"b.symtypes": "s#list struct list { s#list * next ; }\ns#foo struct foo { long a ; s#list l ; }\nbaz int baz ( s#foo )\n",
		"c.symtypes": "s#__anon_3 struct { int x ; }\nqux void qux ( s#__anon_3 * )\n",
	})
	first := writeConsolidated(t, c)

	tables, err := symtypes.Read("all.symtypes", strings.NewReader(first), symtypes.DefaultParseOptions())
	require.NoError(t, err)
	var sources []consolidate.Source
	for _, table := range tables {
		sources = append(sources, consolidate.Source{ID: table.Source, Table: table})
	}
	again, err := consolidate.Consolidate(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, first, writeConsolidated(t, again))
}

func TestWriteComparison(t *testing.T) {
	oldC := symtypes.NewCorpus([]*symtypes.TypeTable{parse(t, "old", ""+
		"s#foo struct foo { int a ; }\nbar int bar ( s#foo * )\nqux void qux ( )\n")})
	newC := symtypes.NewCorpus([]*symtypes.TypeTable{parse(t, "new", ""+
		"s#foo struct foo { int a ; int b ; }\nbar int bar ( s#foo * )\nbaz void baz ( )\n")})
	res, err := compare.Compare(context.Background(), oldC, newC, compare.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, res, Style{}))
	assert.Equal(t, ""+
		"Export 'qux' has been removed\n"+
		"Export 'baz' has been added\n"+
		"\n"+
		"Export 'bar' has changed: bar -> s#foo.b\n"+
		"\n"+
		"The following '1' exports are different:\n"+
		" bar\n"+
		"\n"+
		"because of a changed 's#foo':\n"+
		"@@ -1,3 +1,4 @@\n"+
		" struct foo {\n"+
		" \tint a;\n"+
		"+\tint b;\n"+
		" }\n", buf.String())
}

func TestWriteComparisonEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, &compare.Result{}, Style{}))
	assert.Empty(t, buf.String())
}

func TestWriteComparisonColor(t *testing.T) {
	res := &compare.Result{TypeChanges: []compare.TypeChange{{
		Key:     symtypes.Key{Kind: symtypes.KindStruct, Name: "foo"},
		Old:     []symtypes.Token{symtypes.Atom("int")},
		New:     []symtypes.Token{symtypes.Atom("long")},
		Exports: []string{"f"},
	}}}
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, res, Style{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "+long")
}

func TestWriteConflicts(t *testing.T) {
	c := consolidateStrings(t, map[string]string{
		"a.symtypes": "s#foo struct foo { int a ; }\nf int f ( s#foo )\n",
		"b.symtypes": "s#foo struct foo { long a ; }\nf long f ( s#foo )\n",
	})
	var buf bytes.Buffer
	require.NoError(t, WriteConflicts(&buf, c.Conflicts(), Style{}))
	out := buf.String()
	assert.Contains(t, out, "Type 's#foo' has 2 variants:\n @0 used by a.symtypes\n @1 used by b.symtypes\n@0 -> @1:\n")
	assert.Contains(t, out, "Export 'f' has 2 conflicting definitions:")
	assert.Contains(t, out, "-\tint a;\n+\tlong a;\n")
}

func TestWriteConflictsContext(t *testing.T) {
	c := consolidateStrings(t, map[string]string{
		"a.symtypes": "s#foo struct foo { int a ; int b ; int c ; int d ; int e ; }\nf int f ( s#foo )\n",
		"b.symtypes": "s#foo struct foo { int a ; int b ; int c ; int d ; long e ; }\ng int g ( s#foo )\n",
	})

	var narrow bytes.Buffer
	require.NoError(t, WriteConflicts(&narrow, c.Conflicts(), Style{Context: 1}))
	assert.Contains(t, narrow.String(), " \tint d;\n-\tint e;\n+\tlong e;\n")
	assert.NotContains(t, narrow.String(), "int c;")

	var wide bytes.Buffer
	require.NoError(t, WriteConflicts(&wide, c.Conflicts(), Style{}))
	assert.Contains(t, wide.String(), " \tint b;\n")
}

func TestListSources(t *testing.T) {
	assert.Equal(t, "a, b", listSources([]string{"a", "b"}))
	assert.Equal(t, "a, b, c, d, e and 2 more", listSources([]string{"a", "b", "c", "d", "e", "f", "g"}))
}
