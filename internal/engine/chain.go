package engine

import (
	"github.com/roach88/semnet/internal/network"
	"github.com/roach88/semnet/internal/props"
)

// Direction says where Extend places the new edge pair.
type Direction int

const (
	// Append adds the pair at the end of the chain.
	Append Direction = iota

	// Prepend adds the pair at the start of the chain.
	Prepend
)

func (d Direction) String() string {
	if d == Prepend {
		return "prepend"
	}
	return "append"
}

// Chain is a partial embedding of a pattern: two parallel sequences of
// matched base edges and the pattern edges they were matched against.
//
// A Chain is a value. Extend returns a new chain with its own backing
// arrays, so branches never share mutable state.
type Chain struct {
	matched []*network.Edge
	pattern []*network.Edge
}

// Mapping is the assignment a chain induces, keyed by pattern ids.
type Mapping struct {
	Entities map[string]string `json:"entities"`
	Labels   map[string]string `json:"labels"`
}

// Len returns the number of matched pairs.
func (c Chain) Len() int {
	return len(c.matched)
}

// Matched returns a copy of the matched base edges in chain order.
func (c Chain) Matched() []*network.Edge {
	return append([]*network.Edge(nil), c.matched...)
}

// Pattern returns a copy of the pattern edges in chain order.
func (c Chain) Pattern() []*network.Edge {
	return append([]*network.Edge(nil), c.pattern...)
}

// Extend tries to match the base edge matched to the pattern edge pattern.
// It succeeds only if the induced entity and label mappings stay bijective
// and the pattern's props (on the edge and on both endpoints) are subsets
// of the matched side's. On failure the zero Chain and false are returned;
// the receiver is never modified.
func (c Chain) Extend(matched, pattern *network.Edge, dir Direction) (Chain, bool) {
	if !propsCompatible(matched, pattern) || !c.consistent(matched, pattern) {
		return Chain{}, false
	}

	n := len(c.matched) + 1
	next := Chain{
		matched: make([]*network.Edge, 0, n),
		pattern: make([]*network.Edge, 0, n),
	}
	if dir == Prepend {
		next.matched = append(append(next.matched, matched), c.matched...)
		next.pattern = append(append(next.pattern, pattern), c.pattern...)
	} else {
		next.matched = append(append(next.matched, c.matched...), matched)
		next.pattern = append(append(next.pattern, c.pattern...), pattern)
	}
	return next, true
}

// Mapping folds the chain into its entity and label assignments.
func (c Chain) Mapping() Mapping {
	m := Mapping{
		Entities: make(map[string]string, len(c.pattern)+1),
		Labels:   make(map[string]string, len(c.pattern)),
	}
	for i, p := range c.pattern {
		e := c.matched[i]
		m.Labels[p.Label] = e.Label
		m.Entities[p.Source.ID] = e.Source.ID
		m.Entities[p.Target.ID] = e.Target.ID
	}
	return m
}

func propsCompatible(matched, pattern *network.Edge) bool {
	return props.Subset(matched.Props, pattern.Props) &&
		props.Subset(matched.Source.Props, pattern.Source.Props) &&
		props.Subset(matched.Target.Props, pattern.Target.Props)
}

// bijection accumulates pattern->matched pairs and rejects any pair that
// would map one key to two values or two keys to one value.
type bijection struct {
	forward  map[string]string
	backward map[string]string
}

func newBijection(size int) bijection {
	return bijection{
		forward:  make(map[string]string, size),
		backward: make(map[string]string, size),
	}
}

func (b bijection) add(from, to string) bool {
	if got, ok := b.forward[from]; ok && got != to {
		return false
	}
	if got, ok := b.backward[to]; ok && got != from {
		return false
	}
	b.forward[from] = to
	b.backward[to] = from
	return true
}

func (c Chain) consistent(matched, pattern *network.Edge) bool {
	entities := newBijection(2 * (len(c.pattern) + 1))
	labels := newBijection(len(c.pattern) + 1)

	pairs := func(m, p *network.Edge) bool {
		return entities.add(p.Source.ID, m.Source.ID) &&
			entities.add(p.Target.ID, m.Target.ID) &&
			labels.add(p.Label, m.Label)
	}
	for i, p := range c.pattern {
		if !pairs(c.matched[i], p) {
			return false
		}
	}
	return pairs(matched, pattern)
}
