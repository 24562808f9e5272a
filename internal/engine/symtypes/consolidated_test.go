package symtypes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readString(t *testing.T, data string) ([]*TypeTable, error) {
	t.Helper()
	return Read("consolidated.symtypes", strings.NewReader(data), DefaultParseOptions())
}

func TestReadConsolidated(t *testing.T) {
	tables, err := readString(t, ""+
		"s#foo@0 struct foo { int a ; }\n"+
		"s#foo@1 struct foo { UNKNOWN }\n"+
		"t#u8 typedef unsigned char u8\n"+
		"bar int bar ( s#foo , t#u8 )\n"+
		"baz int baz ( s#foo )\n"+
		"F#test_a.symtypes s#foo@0 bar\n"+
		"F#test_b.symtypes s#foo@1 baz\n")
	require.NoError(t, err)
	require.Len(t, tables, 2)

	a := tables[0]
	assert.Equal(t, "test_a.symtypes", a.Source)
	foo, ok := a.Lookup(Key{Kind: KindStruct, Name: "foo"})
	require.True(t, ok)
	assert.Equal(t, "struct foo { int a ; }", strings.Join(TokenStrings(foo.Signature), " "))
	_, ok = a.Lookup(Key{Kind: KindTypedef, Name: "u8"})
	assert.True(t, ok, "single-variant type is taken implicitly")
	assert.Equal(t, []string{"bar"}, a.ExportNames())

	b := tables[1]
	foo, ok = b.Lookup(Key{Kind: KindStruct, Name: "foo"})
	require.True(t, ok)
	assert.Equal(t, "struct foo { UNKNOWN }", strings.Join(TokenStrings(foo.Signature), " "))
	_, ok = b.Lookup(Key{Kind: KindTypedef, Name: "u8"})
	assert.False(t, ok)
}

func TestReadPlainFile(t *testing.T) {
	tables, err := readString(t, "f int f ( )\n")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "consolidated.symtypes", tables[0].Source)
}

func TestReadConsolidatedErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		reason Reason
		line   int
	}{
		{
			name:   "unknown variant",
			data:   "s#foo@0 struct foo { }\nbar int bar ( s#foo )\nF#a.symtypes s#foo@1 bar\n",
			reason: ReasonUnknownVariant,
			line:   3,
		},
		{
			name:   "implicit multi-variant reference",
			data:   "s#foo@0 struct foo { }\ns#foo@1 struct foo { int a ; }\nbar int bar ( s#foo )\nF#a.symtypes bar\n",
			reason: ReasonUnknownVariant,
			line:   4,
		},
		{
			name:   "duplicate file record",
			data:   "bar int bar ( )\nF#a.symtypes bar\nF#a.symtypes bar\n",
			reason: ReasonDuplicateDefinition,
			line:   3,
		},
		{
			name:   "duplicate variant",
			data:   "s#foo@0 struct foo { }\ns#foo@0 struct foo { }\nF#a.symtypes s#foo@0\n",
			reason: ReasonDuplicateDefinition,
			line:   2,
		},
		{
			name:   "unresolved implicit type",
			data:   "bar int bar ( s#foo )\nF#a.symtypes bar\n",
			reason: ReasonUnresolvedReference,
			line:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readString(t, tt.data)
			pe := requireParseError(t, err)
			assert.Equal(t, tt.reason, pe.Reason)
			assert.Equal(t, tt.line, pe.Line)
			assert.Equal(t, "consolidated.symtypes", pe.Path)
		})
	}
}

func TestVariantName(t *testing.T) {
	k := Key{Kind: KindStruct, Name: "foo"}
	assert.Equal(t, "s#foo", VariantName(k, 0, false))
	assert.Equal(t, "s#foo@2", VariantName(k, 2, true))

	base, label := splitVariant("s#foo@12")
	assert.Equal(t, "s#foo", base)
	assert.Equal(t, "12", label)
	base, label = splitVariant("s#foo@bar")
	assert.Equal(t, "s#foo@bar", base)
	assert.Empty(t, label)
}
