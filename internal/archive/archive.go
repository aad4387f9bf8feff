// Package archive converts networks to and from a portable item list.
//
// An Archive lists entity items before edge items, entities by id and
// edges by triplet, so dumping the same network always yields the same
// bytes. Loading runs in two passes (entities, then edges), which accepts
// archives in any item order.
package archive

import (
	"fmt"

	"github.com/roach88/semnet/internal/network"
	"github.com/roach88/semnet/internal/props"
)

// ItemType distinguishes entity and edge records.
type ItemType string

const (
	TypeEntity ItemType = "entity"
	TypeEdge   ItemType = "edge"
)

// Archive is the serialized form of a network.
type Archive struct {
	Name string `json:"name" msgpack:"name"`

	// Schema is optional CUE source the network was validated against.
	Schema string `json:"schema,omitempty" msgpack:"schema,omitempty"`

	Items []Item `json:"items" msgpack:"items"`
}

// Item is one entity or edge record. Entities use ID; edges use Label,
// SourceID and TargetID.
type Item struct {
	Type     ItemType     `json:"type" msgpack:"type"`
	ID       string       `json:"id,omitempty" msgpack:"id,omitempty"`
	Label    string       `json:"label,omitempty" msgpack:"label,omitempty"`
	SourceID string       `json:"source_id,omitempty" msgpack:"source_id,omitempty"`
	TargetID string       `json:"target_id,omitempty" msgpack:"target_id,omitempty"`
	Props    props.Object `json:"props" msgpack:"props"`
}

// Dump captures n as an archive.
func Dump(n *network.Network) *Archive {
	stats := n.Stats()
	a := &Archive{
		Name:  n.Name(),
		Items: make([]Item, 0, stats.Entities+stats.Edges),
	}
	for e := range n.Entities() {
		a.Items = append(a.Items, Item{Type: TypeEntity, ID: e.ID, Props: e.Props.Clone()})
	}
	for e := range n.Edges() {
		a.Items = append(a.Items, Item{
			Type:     TypeEdge,
			Label:    e.Label,
			SourceID: e.Source.ID,
			TargetID: e.Target.ID,
			Props:    e.Props.Clone(),
		})
	}
	return a
}

// Load builds a new network from an archive.
func Load(a *Archive, opts ...network.Option) (*network.Network, error) {
	n := network.New(a.Name, opts...)
	if err := Push(n, a); err != nil {
		return nil, err
	}
	return n, nil
}

// Push creates the archive's entities and then its edges in n. Existing
// ids in n are not overwritten; a collision fails the push. Items applied
// before a failure remain.
func Push(n *network.Network, a *Archive) error {
	for i, it := range a.Items {
		switch it.Type {
		case TypeEntity:
			if _, err := n.CreateEntity(it.ID, it.Props); err != nil {
				return fmt.Errorf("push item %d: %w", i, err)
			}
		case TypeEdge:
		default:
			return fmt.Errorf("push item %d: unknown item type %q", i, it.Type)
		}
	}
	for i, it := range a.Items {
		if it.Type != TypeEdge {
			continue
		}
		if _, err := n.CreateEdge(it.Label, it.SourceID, it.TargetID, it.Props); err != nil {
			return fmt.Errorf("push item %d: %w", i, err)
		}
	}
	return nil
}

// Counts returns the number of entity and edge items.
func (a *Archive) Counts() (entities, edges int) {
	for _, it := range a.Items {
		switch it.Type {
		case TypeEntity:
			entities++
		case TypeEdge:
			edges++
		}
	}
	return entities, edges
}

// Value renders the archive as a props object for canonical encoding and
// hashing.
func (a *Archive) Value() props.Object {
	items := make(props.Array, len(a.Items))
	for i, it := range a.Items {
		items[i] = it.value()
	}
	obj := props.NewObject(
		props.P("name", props.String(a.Name)),
		props.P("items", items),
	)
	if a.Schema != "" {
		obj["schema"] = props.String(a.Schema)
	}
	return obj
}

func (it Item) value() props.Object {
	obj := props.NewObject(
		props.P("type", props.String(it.Type)),
		props.P("props", it.Props.Clone()),
	)
	if it.Type == TypeEdge {
		obj["label"] = props.String(it.Label)
		obj["source_id"] = props.String(it.SourceID)
		obj["target_id"] = props.String(it.TargetID)
	} else {
		obj["id"] = props.String(it.ID)
	}
	return obj
}

// ContentHash identifies the archive's content. Archives that load into
// equal networks with the same name and schema hash the same, provided
// their items are in dump order.
func (a *Archive) ContentHash() (string, error) {
	return props.Hash(props.DomainSnapshot, a.Value())
}
