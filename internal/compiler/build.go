package compiler

import (
	"context"
	"fmt"

	"github.com/roach88/semnet/internal/engine"
	"github.com/roach88/semnet/internal/network"
)

// BuildNetwork parses a network script and creates its declarations in a
// new network, in the order written. Edges must follow the declarations of
// both endpoints.
func BuildNetwork(name, script string, opts ...network.Option) (*network.Network, error) {
	n := network.New(name, opts...)
	if err := Apply(n, script); err != nil {
		return nil, err
	}
	return n, nil
}

// Apply parses a network script and creates its declarations in n. On
// error, declarations before the failing line remain applied.
func Apply(n *network.Network, script string) error {
	items, err := Parse(script, ModeNetwork)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.IsEdge() {
			_, err = n.CreateEdge(it.IDs[0], it.IDs[1], it.IDs[2], it.Props)
		} else {
			_, err = n.CreateEntity(it.IDs[0], it.Props)
		}
		if err != nil {
			return buildError(it, err)
		}
	}
	return nil
}

// Query is a compiled query script.
type Query struct {
	Pattern  *network.Network
	Required engine.Required
}

// CompileQuery parses a query script into a pattern network and the sets
// of required entity ids and labels. Edge endpoints not declared on their
// own line are created with empty props; a later entity line with props
// fills them in.
func CompileQuery(script string) (*Query, error) {
	items, err := Parse(script, ModeQuery)
	if err != nil {
		return nil, err
	}

	q := &Query{
		Pattern: network.New("Query"),
		Required: engine.Required{
			Entities: make(map[string]bool),
			Labels:   make(map[string]bool),
		},
	}
	entityWild := make(map[string]bool)
	labelWild := make(map[string]bool)

	mark := func(seen map[string]bool, id string, wildcard bool, it Item) error {
		if prev, ok := seen[id]; ok && prev != wildcard {
			return &ScriptError{
				Line:    it.Line,
				Code:    ErrWildcardConflict,
				Message: fmt.Sprintf("%q is used both as a wildcard and as a literal", id),
			}
		}
		seen[id] = wildcard
		return nil
	}

	for _, it := range items {
		if !it.IsEdge() {
			if err := mark(entityWild, it.IDs[0], it.Wildcard[0], it); err != nil {
				return nil, err
			}
			if _, err := q.Pattern.GetOrCreateEntity(it.IDs[0], it.Props); err != nil {
				return nil, buildError(it, err)
			}
			continue
		}

		if err := mark(labelWild, it.IDs[0], it.Wildcard[0], it); err != nil {
			return nil, err
		}
		for i := 1; i < 3; i++ {
			if err := mark(entityWild, it.IDs[i], it.Wildcard[i], it); err != nil {
				return nil, err
			}
			if _, err := q.Pattern.GetOrCreateEntity(it.IDs[i], nil); err != nil {
				return nil, buildError(it, err)
			}
		}
		if _, err := q.Pattern.CreateEdge(it.IDs[0], it.IDs[1], it.IDs[2], it.Props); err != nil {
			return nil, buildError(it, err)
		}
	}

	for id, wild := range entityWild {
		if !wild {
			q.Required.Entities[id] = true
		}
	}
	for label, wild := range labelWild {
		if !wild {
			q.Required.Labels[label] = true
		}
	}
	return q, nil
}

// Search runs the query against the matcher's base network.
func (q *Query) Search(ctx context.Context, m *engine.Matcher) ([]engine.Chain, error) {
	return m.Search(ctx, q.Pattern, q.Required)
}

func buildError(it Item, err error) *ScriptError {
	return &ScriptError{
		Line:    it.Line,
		Code:    ErrBuild,
		Message: err.Error(),
		Err:     err,
	}
}
