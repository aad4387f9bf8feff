package network

import (
	"github.com/roach88/semnet/internal/props"
)

// CreateEdge inserts a new edge between two existing, distinct entities.
// Nil props are stored as an empty object.
func (n *Network) CreateEdge(label, source, target string, p props.Object) (*Edge, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.createEdgeLocked("create edge", Triplet{Label: label, Source: source, Target: target}, p)
}

func (n *Network) createEdgeLocked(op string, t Triplet, p props.Object) (*Edge, error) {
	if t.Label == "" || t.Source == "" || t.Target == "" {
		return nil, newError(CodeInvalidID, op, t.String())
	}
	if t.Source == t.Target {
		return nil, newError(CodeSelfLoop, op, t.String())
	}
	src, ok := n.entities[t.Source]
	if !ok {
		return nil, newError(CodeNotFound, op, t.Source)
	}
	tgt, ok := n.entities[t.Target]
	if !ok {
		return nil, newError(CodeNotFound, op, t.Target)
	}
	if _, ok := n.edges[t]; ok {
		return nil, newError(CodeDuplicateEdge, op, t.String())
	}
	if err := n.validateEdge(op, t, p); err != nil {
		return nil, err
	}

	e := &Edge{Label: t.Label, Source: src, Target: tgt, Props: p.Clone()}
	n.edges[t] = e
	addIndex(n.byLabel, t.Label, t)
	addIndex(n.bySource, t.Source, t)
	addIndex(n.byTarget, t.Target, t)
	n.logger.Debug("edge created", "network", n.name, "edge", t.String())
	return e, nil
}

// GetOrCreateEdge returns the edge identified by the triplet, creating it
// when absent. For an existing edge, non-nil props replace the stored ones.
func (n *Network) GetOrCreateEdge(label, source, target string, p props.Object) (*Edge, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	t := Triplet{Label: label, Source: source, Target: target}
	e, ok := n.edges[t]
	if !ok {
		return n.createEdgeLocked("get or create edge", t, p)
	}
	if p != nil {
		if err := n.validateEdge("get or create edge", t, p); err != nil {
			return nil, err
		}
		e.Props = p.Clone()
	}
	return e, nil
}

// UpdateEdge replaces the props of an existing edge.
func (n *Network) UpdateEdge(label, source, target string, p props.Object) (*Edge, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	t := Triplet{Label: label, Source: source, Target: target}
	e, ok := n.edges[t]
	if !ok {
		return nil, newError(CodeNotFound, "update edge", t.String())
	}
	if err := n.validateEdge("update edge", t, p); err != nil {
		return nil, err
	}
	e.Props = p.Clone()
	return e, nil
}

// Edge looks up an edge by its triplet.
func (n *Network) Edge(label, source, target string) (*Edge, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	t := Triplet{Label: label, Source: source, Target: target}
	e, ok := n.edges[t]
	if !ok {
		return nil, newError(CodeNotFound, "get edge", t.String())
	}
	return e, nil
}

// HasEdge reports whether the triplet identifies an edge.
func (n *Network) HasEdge(label, source, target string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.edges[Triplet{Label: label, Source: source, Target: target}]
	return ok
}

// DeleteEdge removes an edge from the primary map and all three indices.
func (n *Network) DeleteEdge(label, source, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	t := Triplet{Label: label, Source: source, Target: target}
	if _, ok := n.edges[t]; !ok {
		return newError(CodeNotFound, "delete edge", t.String())
	}
	n.removeEdgeLocked(t)
	return nil
}

func (n *Network) removeEdgeLocked(t Triplet) {
	delete(n.edges, t)
	removeIndex(n.byLabel, t.Label, t)
	removeIndex(n.bySource, t.Source, t)
	removeIndex(n.byTarget, t.Target, t)
	n.logger.Debug("edge deleted", "network", n.name, "edge", t.String())
}

func addIndex(idx map[string]tripletSet, key string, t Triplet) {
	set, ok := idx[key]
	if !ok {
		set = make(tripletSet)
		idx[key] = set
	}
	set[t] = struct{}{}
}

func removeIndex(idx map[string]tripletSet, key string, t Triplet) {
	set, ok := idx[key]
	if !ok {
		return
	}
	delete(set, t)
	if len(set) == 0 {
		delete(idx, key)
	}
}
