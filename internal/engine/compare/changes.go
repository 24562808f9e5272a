package compare

import (
	"ksymtypes/internal/engine/graph"
	"ksymtypes/internal/engine/symtypes"
)

type typeDelta struct {
	key symtypes.Key
	old []symtypes.Token
	new []symtypes.Token
}

func (d typeDelta) id() string {
	return d.key.String() + "\x01" + joinTokens(d.old) + "\x01" + joinTokens(d.new)
}

type refPair struct {
	old symtypes.Key
	new symtypes.Key
}

// collectTypeChanges walks the type graphs below root and returns every record
// pair that differs directly. The walk descends only into pairs that are not
// equivalent. When a record differs directly, its references are matched by
// name since token positions no longer line up.
func collectTypeChanges(eq *graph.Equivalence, oldTable, newTable *symtypes.TypeTable, root symtypes.Key) []typeDelta {
	var out []typeDelta
	visited := make(map[refPair]bool)
	stack := []refPair{{old: root, new: root}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[p] {
			continue
		}
		visited[p] = true

		oldRec, okOld := oldTable.Lookup(p.old)
		newRec, okNew := newTable.Lookup(p.new)
		if !okOld || !okNew {
			if okOld == okNew {
				// Opaque on both sides, or unresolved; nothing to show.
				continue
			}
			d := typeDelta{key: p.new}
			if okOld {
				d.key, d.old = p.old, oldRec.Signature
			} else {
				d.new = newRec.Signature
			}
			out = append(out, d)
			continue
		}

		var children []refPair
		if _, differs := graph.DirectDifference(oldRec, newRec); differs {
			out = append(out, typeDelta{key: p.new, old: oldRec.Signature, new: newRec.Signature})
			children = pairByName(oldRec, newRec)
		} else {
			for i, tok := range oldRec.Signature {
				if tok.Ref != nil {
					children = append(children, refPair{old: tok.Ref.Key, new: newRec.Signature[i].Ref.Key})
				}
			}
		}
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			if visited[c] || eq.Equal(oldTable, c.old, newTable, c.new) {
				continue
			}
			stack = append(stack, c)
		}
	}
	return out
}

func pairByName(oldRec, newRec *symtypes.TypeRecord) []refPair {
	present := make(map[symtypes.Key]bool)
	for _, k := range newRec.References() {
		present[k] = true
	}
	var out []refPair
	for _, k := range oldRec.References() {
		if present[k] {
			out = append(out, refPair{old: k, new: k})
		}
	}
	return out
}
