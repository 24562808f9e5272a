package graph

import (
	"ksymtypes/internal/engine/symtypes"
	"strings"
)

// Step is one element of a ChangePath: a record and the member through which
// the path continues, or at which the difference sits for the last step.
type Step struct {
	Key    symtypes.Key
	Member string
}

func (s Step) String() string {
	if s.Member == "" {
		return s.Key.String()
	}
	return s.Key.String() + "." + s.Member
}

// ChangePath leads from an exported symbol to the first record that differs
// directly between two tables.
type ChangePath []Step

func (p ChangePath) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}

// DirectDifference reports whether two records differ without looking through
// references to named types, and the first differing token index. Differences
// inside referenced anonymous types are not direct.
func DirectDifference(oldRec, newRec *symtypes.TypeRecord) (int, bool) {
	if oldRec.Key.Kind != newRec.Key.Kind {
		return 0, true
	}
	a, b := oldRec.Signature, newRec.Signature
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].IsReference() != b[i].IsReference() {
			return i, true
		}
		if a[i].Ref == nil {
			if a[i].Literal != b[i].Literal {
				return i, true
			}
			continue
		}
		if !sameIdentity(a[i].Ref.Key, b[i].Ref.Key) {
			return i, true
		}
	}
	if len(a) != len(b) {
		return n, true
	}
	return 0, false
}

// FindChangePath searches breadth-first for the shortest chain of records from
// root to a record that differs directly. Only children that eq finds unequal
// are followed. It returns nil when the root records are equivalent.
func FindChangePath(eq *Equivalence, oldTable, newTable *symtypes.TypeTable, root symtypes.Key) ChangePath {
	type entry struct {
		p      pair
		parent int
		member string
	}
	start := pair{old: node{oldTable, root}, new: node{newTable, root}}
	queue := []entry{{p: start, parent: -1}}
	visited := map[pair]bool{start: true}

	build := func(i int, leafMember string) ChangePath {
		var rev ChangePath
		member := leafMember
		for i >= 0 {
			e := queue[i]
			rev = append(rev, Step{Key: e.p.new.key, Member: member})
			member = e.member
			i = e.parent
		}
		for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
			rev[l], rev[r] = rev[r], rev[l]
		}
		return rev
	}

	for i := 0; i < len(queue); i++ {
		cur := queue[i].p
		oldRec, okOld := oldTable.Lookup(cur.old.key)
		newRec, okNew := newTable.Lookup(cur.new.key)
		if !okOld || !okNew {
			if okOld == okNew && eq.Equal(oldTable, cur.old.key, newTable, cur.new.key) {
				continue
			}
			return build(i, "")
		}
		if idx, differs := DirectDifference(oldRec, newRec); differs {
			member := MemberAt(newRec.Signature, idx)
			if member == "" {
				member = MemberAt(oldRec.Signature, idx)
			}
			return build(i, member)
		}
		for j, tok := range oldRec.Signature {
			if tok.Ref == nil {
				continue
			}
			child := pair{
				old: node{oldTable, tok.Ref.Key},
				new: node{newTable, newRec.Signature[j].Ref.Key},
			}
			if visited[child] {
				continue
			}
			visited[child] = true
			if eq.Equal(oldTable, child.old.key, newTable, child.new.key) {
				continue
			}
			queue = append(queue, entry{p: child, parent: i, member: MemberAt(oldRec.Signature, j)})
		}
	}
	return nil
}
