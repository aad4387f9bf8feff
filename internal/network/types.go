package network

import (
	"fmt"
	"strings"

	"github.com/roach88/semnet/internal/props"
)

// Entity is a node of the network.
type Entity struct {
	ID    string
	Props props.Object
}

// Edge is a directed labeled edge between two distinct entities.
type Edge struct {
	Label  string
	Source *Entity
	Target *Entity
	Props  props.Object
}

// Key returns the edge's identity triplet.
func (e *Edge) Key() Triplet {
	return Triplet{Label: e.Label, Source: e.Source.ID, Target: e.Target.ID}
}

// String renders the edge as "(source) -label-> (target)".
func (e *Edge) String() string {
	return e.Key().String()
}

// Triplet is the uniqueness key of an edge.
type Triplet struct {
	Label  string
	Source string
	Target string
}

func (t Triplet) String() string {
	return fmt.Sprintf("(%s) -%s-> (%s)", t.Source, t.Label, t.Target)
}

// Compare orders triplets by source, then label, then target.
func (t Triplet) Compare(o Triplet) int {
	if c := strings.Compare(t.Source, o.Source); c != 0 {
		return c
	}
	if c := strings.Compare(t.Label, o.Label); c != 0 {
		return c
	}
	return strings.Compare(t.Target, o.Target)
}

// Selector narrows SelectEdges by label, source ID and target ID.
// An empty field is a wildcard.
type Selector struct {
	Label  string
	Source string
	Target string
}

// Stats summarizes a network.
type Stats struct {
	Name     string `json:"name"`
	Entities int    `json:"entities"`
	Labels   int    `json:"labels"`
	Edges    int    `json:"edges"`
}

// Validator gates inserts and updates. It is consulted before any index is
// touched, so a rejected mutation leaves the network unchanged.
type Validator interface {
	ValidateEntity(id string, p props.Object) error
	ValidateEdge(label string, p props.Object) error
}
