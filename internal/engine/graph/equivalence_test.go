package graph

import (
	"ksymtypes/internal/engine/symtypes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, name, data string) *symtypes.TypeTable {
	t.Helper()
	table, err := symtypes.Parse(name, strings.NewReader(data), symtypes.DefaultParseOptions())
	require.NoError(t, err)
	return table
}

func structKey(name string) symtypes.Key {
	return symtypes.Key{Kind: symtypes.KindStruct, Name: name}
}

func TestEquivalenceIdenticalTables(t *testing.T) {
	data := "s#foo struct foo { int a ; }\nf int f ( s#foo * )\n"
	a := mustParse(t, "a", data)
	b := mustParse(t, "b", data)

	eq := NewEquivalence(Deep)
	assert.True(t, eq.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")))
	size, _, _ := eq.Stats()
	assert.Equal(t, 2, size)
}

func TestEquivalenceDeepChange(t *testing.T) {
	a := mustParse(t, "a", "s#foo struct foo { int a ; }\nf int f ( s#foo * )\n")
	b := mustParse(t, "b", "s#foo struct foo { int a ; int b ; }\nf int f ( s#foo * )\n")

	deep := NewEquivalence(Deep)
	assert.False(t, deep.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")))

	shallow := NewEquivalence(Shallow)
	assert.True(t, shallow.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")),
		"shallow mode compares named references by key only")
	assert.False(t, shallow.Equal(a, structKey("foo"), b, structKey("foo")))
}

func TestEquivalenceCycles(t *testing.T) {
	data := "" +
		"s#list struct list { s#list * next ; s#node * owner ; }\n" +
		"s#node struct node { s#list l ; int v ; }\n" +
		"f void f ( s#node * )\n"
	a := mustParse(t, "a", data)
	b := mustParse(t, "b", data)

	eq := NewEquivalence(Deep)
	assert.True(t, eq.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")))
	assert.True(t, eq.Equal(a, structKey("list"), b, structKey("list")))

	c := mustParse(t, "c", strings.Replace(data, "int v ;", "long v ;", 1))
	eq = NewEquivalence(Deep)
	assert.False(t, eq.Equal(a, structKey("list"), c, structKey("list")),
		"a change reachable only through a cycle is detected")
	assert.False(t, eq.Equal(a, symtypes.ExportKey("f"), c, symtypes.ExportKey("f")))
}

func TestEquivalenceSelfReferenceOnlyCycle(t *testing.T) {
	a := mustParse(t, "a", "s#n struct n { s#n * next ; }\nf void f ( s#n * )\n")
	b := mustParse(t, "b", "s#n struct n { s#n * next ; }\nf void f ( s#n * )\n")
	eq := NewEquivalence(Deep)
	assert.True(t, eq.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")))
}

func TestEquivalenceMissingAndOpaque(t *testing.T) {
	a := mustParse(t, "a", "e#e enum e { X = E#X }\nf int f ( e#e )\n")
	b := mustParse(t, "b", "e#e enum e { X = E#X }\nf int f ( e#e )\n")
	eq := NewEquivalence(Deep)
	assert.True(t, eq.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")), "opaque on both sides")

	assert.False(t, eq.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("g")), "missing side")
}

func TestEquivalenceNominalMismatch(t *testing.T) {
	a := mustParse(t, "a", "s#a struct a { int x ; }\nf int f ( s#a * )\n")
	b := mustParse(t, "b", "s#b struct a { int x ; }\nf int f ( s#b * )\n")
	eq := NewEquivalence(Deep)
	assert.False(t, eq.Equal(a, symtypes.ExportKey("f"), b, symtypes.ExportKey("f")))
}

func TestEquivalenceAnonymousFollowedInShallowMode(t *testing.T) {
	a := mustParse(t, "a", "s#__anon_1 struct { int x ; }\ns#foo struct foo { s#__anon_1 u ; }\n")
	b := mustParse(t, "b", "s#__anon_9 struct { long x ; }\ns#foo struct foo { s#__anon_9 u ; }\n")
	eq := NewEquivalence(Shallow)
	assert.False(t, eq.Equal(a, structKey("foo"), b, structKey("foo")))

	c := mustParse(t, "c", "s#__anon_3 struct { int x ; }\ns#foo struct foo { s#__anon_3 u ; }\n")
	assert.True(t, eq.Equal(a, structKey("foo"), c, structKey("foo")), "anonymous names do not matter")
}

func TestEquivalenceConcurrentUse(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("s#t" + itoa(i) + " struct t" + itoa(i) + " { s#t" + itoa((i+1)%50) + " * next ; }\n")
		sb.WriteString("f" + itoa(i) + " void f" + itoa(i) + " ( s#t" + itoa(i) + " * )\n")
	}
	a := mustParse(t, "a", sb.String())
	b := mustParse(t, "b", sb.String())

	eq := NewEquivalence(Deep)
	var wg sync.WaitGroup
	results := make([]bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := symtypes.ExportKey("f" + itoa(i))
			results[i] = eq.Equal(a, k, b, k)
		}(i)
	}
	wg.Wait()
	for i, ok := range results {
		assert.True(t, ok, "f%d", i)
	}
}

func itoa(i int) string {
	const digits = "0123456789"
	if i < 10 {
		return digits[i : i+1]
	}
	return itoa(i/10) + digits[i%10:i%10+1]
}
