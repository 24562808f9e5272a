// Package symtypes models the genksyms symtypes format: type records made of
// atoms and references, grouped into per-file type tables.
package symtypes

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a record.
type Kind string

const (
	KindStruct   Kind = "struct"
	KindUnion    Kind = "union"
	KindEnum     Kind = "enum"
	KindTypedef  Kind = "typedef"
	KindBasic    Kind = "basic"
	KindFunction Kind = "function"
)

// AnonymousPrefix starts the tag of types that have no source-level name.
const AnonymousPrefix = "__anon"

var kindPrefixes = map[byte]Kind{
	's': KindStruct,
	'u': KindUnion,
	'e': KindEnum,
	't': KindTypedef,
	'E': KindBasic,
}

// Prefix returns the record-name prefix of the kind, such as "s#". Exported
// symbols have no prefix.
func (k Kind) Prefix() string {
	switch k {
	case KindStruct:
		return "s#"
	case KindUnion:
		return "u#"
	case KindEnum:
		return "e#"
	case KindTypedef:
		return "t#"
	case KindBasic:
		return "E#"
	}
	return ""
}

// Nominal reports whether records of the kind carry a tag name that takes part in
// type identity.
func (k Kind) Nominal() bool {
	switch k {
	case KindStruct, KindUnion, KindEnum, KindTypedef:
		return true
	}
	return false
}

// ParseKind accepts a kind name ("struct") or its one-letter prefix ("s" or "s#").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "#")
	if len(s) == 1 {
		if k, ok := kindPrefixes[s[0]]; ok {
			return k, nil
		}
	}
	switch k := Kind(strings.ToLower(s)); k {
	case KindStruct, KindUnion, KindEnum, KindTypedef, KindBasic, KindFunction:
		return k, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Key identifies a record within a table.
type Key struct {
	Kind Kind
	Name string
}

// ExportKey returns the key of the exported symbol name.
func ExportKey(name string) Key {
	return Key{Kind: KindFunction, Name: name}
}

// ParseKey decodes a record name such as "s#foo" or "foo". It fails for an
// unknown prefix or an empty name.
func ParseKey(s string) (Key, bool) {
	if len(s) >= 2 && s[1] == '#' {
		k, ok := kindPrefixes[s[0]]
		if !ok || len(s) == 2 {
			return Key{}, false
		}
		return Key{Kind: k, Name: s[2:]}, true
	}
	if s == "" {
		return Key{}, false
	}
	return Key{Kind: KindFunction, Name: s}, true
}

func (k Key) String() string {
	return k.Kind.Prefix() + k.Name
}

// IsExport reports whether the key names an exported symbol.
func (k Key) IsExport() bool {
	return k.Kind == KindFunction
}

// IsAnonymous reports whether the key names a type without a source-level tag.
func (k Key) IsAnonymous() bool {
	return k.Kind.Nominal() && (k.Name == "" || strings.HasPrefix(k.Name, AnonymousPrefix))
}

// Less orders type records before exports, then by name.
func (k Key) Less(o Key) bool {
	if k.IsExport() != o.IsExport() {
		return !k.IsExport()
	}
	return k.String() < o.String()
}

// SortKeys sorts keys with Key.Less.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// Reference points from a token to another record by key. It is resolved against
// the table that holds the referencing record.
type Reference struct {
	Key Key
}

// Token is one word of a signature: either a literal atom or a reference.
type Token struct {
	Literal string
	Ref     *Reference
}

// Atom returns a literal token.
func Atom(s string) Token {
	return Token{Literal: s}
}

// Ref returns a reference token.
func Ref(k Key) Token {
	return Token{Ref: &Reference{Key: k}}
}

func (t Token) IsReference() bool {
	return t.Ref != nil
}

func (t Token) String() string {
	if t.Ref != nil {
		return t.Ref.Key.String()
	}
	return t.Literal
}

// Equal compares the tokens textually; references are equal when their keys are.
func (t Token) Equal(o Token) bool {
	if t.IsReference() != o.IsReference() {
		return false
	}
	if t.Ref != nil {
		return t.Ref.Key == o.Ref.Key
	}
	return t.Literal == o.Literal
}

// TokensEqual compares two signatures token by token.
func TokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// TokenStrings renders tokens as the words of the symtypes format.
func TokenStrings(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.String()
	}
	return out
}

// TypeRecord is one line of a symtypes file. Exported symbols are records of
// KindFunction.
type TypeRecord struct {
	Key       Key
	Signature []Token
	// Line is the 1-based line the record was read from, zero when synthesized.
	Line int
}

// References returns the keys referenced by the signature, in token order and
// without duplicates.
func (r *TypeRecord) References() []Key {
	var out []Key
	seen := make(map[Key]bool)
	for _, t := range r.Signature {
		if t.Ref == nil || seen[t.Ref.Key] {
			continue
		}
		seen[t.Ref.Key] = true
		out = append(out, t.Ref.Key)
	}
	return out
}

func (r *TypeRecord) String() string {
	var b strings.Builder
	b.WriteString(r.Key.String())
	for _, t := range r.Signature {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	return b.String()
}
