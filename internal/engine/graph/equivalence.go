// # internal/engine/graph/equivalence.go
package graph

import (
	"ksymtypes/internal/engine/symtypes"
	"math"
	"sync"
	"sync/atomic"
)

// Mode selects how far structural comparison follows references.
type Mode int

const (
	// Deep follows every reference and compares the referenced records.
	Deep Mode = iota
	// Shallow compares references to named types by key only and follows
	// references to anonymous types.
	Shallow
)

func (m Mode) String() string {
	if m == Shallow {
		return "shallow"
	}
	return "deep"
}

type node struct {
	table *symtypes.TypeTable
	key   symtypes.Key
}

type pair struct {
	old node
	new node
}

const notAssumed = math.MaxInt

// Equivalence decides structural equality of records across two tables. Verdicts
// are memoized and shared between goroutines; an Equivalence must only be used
// for a single pair of table sets with stable contents.
type Equivalence struct {
	mode Mode

	mu     sync.RWMutex
	proven map[pair]bool

	hits   atomic.Int64
	misses atomic.Int64
}

func NewEquivalence(mode Mode) *Equivalence {
	return &Equivalence{mode: mode, proven: make(map[pair]bool)}
}

func (e *Equivalence) Mode() Mode {
	return e.mode
}

// Equal reports whether record oldKey of oldTable is structurally equivalent to
// record newKey of newTable. Cycles are resolved coinductively: a pair reached
// again while it is still being compared is assumed equal.
func (e *Equivalence) Equal(oldTable *symtypes.TypeTable, oldKey symtypes.Key, newTable *symtypes.TypeTable, newKey symtypes.Key) bool {
	w := walk{eq: e, inProgress: make(map[pair]int)}
	ok, _ := w.compare(pair{old: node{oldTable, oldKey}, new: node{newTable, newKey}}, 0)
	return ok
}

// Stats returns the number of memoized verdicts and the memo hit/miss counters.
func (e *Equivalence) Stats() (size int, hits, misses int64) {
	e.mu.RLock()
	size = len(e.proven)
	e.mu.RUnlock()
	return size, e.hits.Load(), e.misses.Load()
}

func (e *Equivalence) lookup(p pair) (bool, bool) {
	e.mu.RLock()
	v, ok := e.proven[p]
	e.mu.RUnlock()
	if ok {
		e.hits.Add(1)
	} else {
		e.misses.Add(1)
	}
	return v, ok
}

func (e *Equivalence) store(v bool, pairs ...pair) {
	e.mu.Lock()
	for _, p := range pairs {
		e.proven[p] = v
	}
	e.mu.Unlock()
}

// walk is the state of one depth-first comparison. Pairs found equal only under
// the assumption that an ancestor is equal stay pending until that ancestor is
// decided.
type walk struct {
	eq         *Equivalence
	inProgress map[pair]int
	pending    []pair
}

// compare returns the verdict for p and the lowest depth of an in-progress pair
// the verdict relies on, or notAssumed.
func (w *walk) compare(p pair, depth int) (bool, int) {
	if v, ok := w.eq.lookup(p); ok {
		return v, notAssumed
	}
	if d, ok := w.inProgress[p]; ok {
		return true, d
	}

	oldRec, okOld := p.old.table.Lookup(p.old.key)
	newRec, okNew := p.new.table.Lookup(p.new.key)
	if !okOld || !okNew {
		// Two opaque references to the same name are equal; a missing side is not.
		v := !okOld && !okNew && p.old.key == p.new.key &&
			p.old.table.IsOpaque(p.old.key) && p.new.table.IsOpaque(p.new.key)
		w.eq.store(v, p)
		return v, notAssumed
	}

	w.inProgress[p] = depth
	mark := len(w.pending)
	v, low := w.compareRecords(p, oldRec, newRec, depth)
	delete(w.inProgress, p)

	if !v {
		w.pending = w.pending[:mark]
		w.eq.store(false, p)
		return false, notAssumed
	}
	if low >= depth {
		w.eq.store(true, append(w.pending[mark:], p)...)
		w.pending = w.pending[:mark]
		return true, notAssumed
	}
	w.pending = append(w.pending, p)
	return true, low
}

func (w *walk) compareRecords(p pair, oldRec, newRec *symtypes.TypeRecord, depth int) (bool, int) {
	if oldRec.Key.Kind != newRec.Key.Kind || len(oldRec.Signature) != len(newRec.Signature) {
		return false, notAssumed
	}
	low := notAssumed
	for i, a := range oldRec.Signature {
		b := newRec.Signature[i]
		if a.IsReference() != b.IsReference() {
			return false, notAssumed
		}
		if a.Ref == nil {
			if a.Literal != b.Literal {
				return false, notAssumed
			}
			continue
		}
		if !sameIdentity(a.Ref.Key, b.Ref.Key) {
			return false, notAssumed
		}
		if w.eq.mode == Shallow && !a.Ref.Key.IsAnonymous() {
			continue
		}
		child := pair{old: node{p.old.table, a.Ref.Key}, new: node{p.new.table, b.Ref.Key}}
		v, l := w.compare(child, depth+1)
		if !v {
			return false, notAssumed
		}
		if l < low {
			low = l
		}
	}
	return true, low
}

// sameIdentity checks the nominal part of two references: kinds must match,
// and names must match unless both sides are anonymous.
func sameIdentity(a, b symtypes.Key) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.IsAnonymous() || b.IsAnonymous() {
		return a.IsAnonymous() && b.IsAnonymous()
	}
	return a.Name == b.Name
}
