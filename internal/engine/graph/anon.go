package graph

import (
	"fmt"
	"ksymtypes/internal/engine/symtypes"

	"github.com/cespare/xxhash/v2"
)

// AnonymousName builds the canonical name for an anonymous type with the given
// content hash.
func AnonymousName(hash uint64) string {
	return fmt.Sprintf("%s_%016x", symtypes.AnonymousPrefix, hash)
}

// CanonicalizeAnonymous renames every anonymous record of t after a hash of its
// content, so that structurally identical anonymous types get identical names in
// every table. Nested anonymous references contribute their own hash. The
// returned table is t itself when it holds no anonymous records.
func CanonicalizeAnonymous(t *symtypes.TypeTable) (*symtypes.TypeTable, error) {
	var anon []symtypes.Key
	for _, k := range t.Keys() {
		if k.IsAnonymous() {
			anon = append(anon, k)
		}
	}
	if len(anon) == 0 {
		return t, nil
	}

	h := &anonHasher{
		table:      t,
		hashes:     make(map[symtypes.Key]uint64),
		inProgress: make(map[symtypes.Key]bool),
	}
	mapping := make(map[symtypes.Key]symtypes.Key, len(anon))
	for _, k := range anon {
		mapping[k] = symtypes.Key{Kind: k.Kind, Name: AnonymousName(h.hash(k))}
	}
	return t.Rename(mapping)
}

type anonHasher struct {
	table      *symtypes.TypeTable
	hashes     map[symtypes.Key]uint64
	inProgress map[symtypes.Key]bool
}

func (h *anonHasher) hash(k symtypes.Key) uint64 {
	if v, ok := h.hashes[k]; ok {
		return v
	}
	rec, ok := h.table.Lookup(k)
	if !ok {
		return 0
	}
	h.inProgress[k] = true
	d := xxhash.New()
	_, _ = d.WriteString(string(k.Kind))
	for _, tok := range rec.Signature {
		_, _ = d.WriteString(" ")
		if tok.Ref == nil {
			_, _ = d.WriteString(tok.Literal)
			continue
		}
		ref := tok.Ref.Key
		switch {
		case !ref.IsAnonymous():
			_, _ = d.WriteString(ref.String())
		case h.inProgress[ref]:
			// A cycle through anonymous types only; the back edge hashes by kind.
			_, _ = d.WriteString(ref.Kind.Prefix() + symtypes.AnonymousPrefix)
		default:
			_, _ = d.WriteString(ref.Kind.Prefix() + AnonymousName(h.hash(ref)))
		}
	}
	delete(h.inProgress, k)
	v := d.Sum64()
	h.hashes[k] = v
	return v
}
