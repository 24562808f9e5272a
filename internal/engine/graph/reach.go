package graph

import "ksymtypes/internal/engine/symtypes"

// Reachable returns the keys of records reachable from roots, roots included,
// in depth-first preorder. References that t does not define are skipped.
func Reachable(t *symtypes.TypeTable, roots []symtypes.Key) []symtypes.Key {
	var order []symtypes.Key
	visited := make(map[symtypes.Key]bool)
	var stack []symtypes.Key
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[k] {
			continue
		}
		rec, ok := t.Lookup(k)
		if !ok {
			continue
		}
		visited[k] = true
		order = append(order, k)
		refs := rec.References()
		for i := len(refs) - 1; i >= 0; i-- {
			if !visited[refs[i]] {
				stack = append(stack, refs[i])
			}
		}
	}
	return order
}
