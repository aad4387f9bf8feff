package network

import (
	"iter"
	"slices"

	"github.com/roach88/semnet/internal/props"
)

// SelectEdges returns the edges matching sel whose props contain filter,
// sorted by triplet.
//
// Index choice:
//   - no keys: every edge
//   - label only: the label index
//   - source or target given: that index, with the remaining keys checked
//     per edge (source wins when both are given)
func (n *Network) SelectEdges(sel Selector, filter props.Object) []*Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.selectEdgesLocked(sel, filter)
}

func (n *Network) selectEdgesLocked(sel Selector, filter props.Object) []*Edge {
	var candidates tripletSet
	switch {
	case sel.Source != "":
		candidates = n.bySource[sel.Source]
	case sel.Target != "":
		candidates = n.byTarget[sel.Target]
	case sel.Label != "":
		candidates = n.byLabel[sel.Label]
	default:
		out := make([]*Edge, 0, len(n.edges))
		for _, e := range n.edges {
			if props.Subset(e.Props, filter) {
				out = append(out, e)
			}
		}
		slices.SortFunc(out, compareEdges)
		return out
	}

	out := make([]*Edge, 0, len(candidates))
	for t := range candidates {
		if sel.Target != "" && t.Target != sel.Target {
			continue
		}
		if sel.Label != "" && t.Label != sel.Label {
			continue
		}
		e := n.edges[t]
		if props.Subset(e.Props, filter) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// Outgoing returns the edges whose source is id, sorted by triplet.
func (n *Network) Outgoing(id string) []*Edge {
	return n.SelectEdges(Selector{Source: id}, nil)
}

// Incoming returns the edges whose target is id, sorted by triplet.
func (n *Network) Incoming(id string) []*Edge {
	return n.SelectEdges(Selector{Target: id}, nil)
}

// Entities iterates all entities in id order. The iteration works on a
// snapshot taken when it starts, so the network may be mutated while
// iterating.
func (n *Network) Entities() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range n.SelectEntities(nil) {
			if !yield(e) {
				return
			}
		}
	}
}

// Edges iterates all edges in triplet order over a snapshot.
func (n *Network) Edges() iter.Seq[*Edge] {
	return func(yield func(*Edge) bool) {
		for _, e := range n.SelectEdges(Selector{}, nil) {
			if !yield(e) {
				return
			}
		}
	}
}
