package engine

import (
	"context"

	"github.com/roach88/semnet/internal/network"
)

// walk is the state of one depth-first traversal of the pattern.
type walk struct {
	m       *Matcher
	pattern *network.Network
	req     Required
	visited map[network.Triplet]bool
}

func (m *Matcher) newWalk(pattern *network.Network, req Required, seed *network.Edge) *walk {
	return &walk{
		m:       m,
		pattern: pattern,
		req:     req,
		visited: map[network.Triplet]bool{seed.Key(): true},
	}
}

type neighbour struct {
	edge *network.Edge
	dir  Direction
}

// neighbours lists the pattern edges sharing an entity with p, in visiting
// order: out of the target, into the target, into the source, out of the
// source. The anchor of each neighbour (its source for Append, its target
// for Prepend) is always an endpoint of p.
func (w *walk) neighbours(p *network.Edge) []neighbour {
	var out []neighbour
	add := func(edges []*network.Edge, dir Direction) {
		for _, e := range edges {
			out = append(out, neighbour{edge: e, dir: dir})
		}
	}
	add(w.pattern.Outgoing(p.Target.ID), Append)
	add(w.pattern.Incoming(p.Target.ID), Prepend)
	add(w.pattern.Incoming(p.Source.ID), Prepend)
	add(w.pattern.Outgoing(p.Source.ID), Append)
	return out
}

// visit expands chains across every unvisited neighbour of p, recursing
// into each before moving on, and returns the surviving chains.
func (w *walk) visit(ctx context.Context, p *network.Edge, chains []Chain) ([]Chain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, nb := range w.neighbours(p) {
		key := nb.edge.Key()
		if w.visited[key] {
			continue
		}
		w.visited[key] = true

		var err error
		chains, err = w.expand(ctx, nb.edge, nb.dir, chains)
		if err != nil {
			return nil, err
		}
		chains, err = w.visit(ctx, nb.edge, chains)
		if err != nil {
			return nil, err
		}
	}
	return chains, nil
}

// expand branches every chain over the base edges compatible with the
// pattern edge p and keeps the successful branches.
func (w *walk) expand(ctx context.Context, p *network.Edge, dir Direction, chains []Chain) ([]Chain, error) {
	var next []Chain
	for _, c := range chains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sel := w.selector(p, c.Mapping())
		for _, e := range w.m.base.SelectEdges(sel, p.Props) {
			if branch, ok := c.Extend(e, p, dir); ok {
				next = append(next, branch)
			}
		}
	}
	w.m.observer.Expanded(p.Key(), len(chains), len(next))
	return next, nil
}

// selector builds the base query for p. The anchor endpoint is always bound
// by the chain's mapping. The other endpoint and the label are literal when
// required, narrowed to their binding when the chain already has one, and
// wildcards otherwise. Narrowing by an existing binding never changes the
// result since Extend would reject any other candidate.
func (w *walk) selector(p *network.Edge, m Mapping) network.Selector {
	bind := func(id string) string {
		if w.req.Entities[id] {
			return id
		}
		return m.Entities[id]
	}

	sel := network.Selector{
		Source: bind(p.Source.ID),
		Target: bind(p.Target.ID),
	}
	if w.req.Labels[p.Label] {
		sel.Label = p.Label
	} else {
		sel.Label = m.Labels[p.Label]
	}
	return sel
}
