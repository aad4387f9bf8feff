package network

import (
	"cmp"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/semnet/internal/props"
)

// DefaultName is used when New is called with an empty name.
const DefaultName = "Default"

type tripletSet map[Triplet]struct{}

// Network is an in-memory semantic network.
type Network struct {
	mu sync.RWMutex

	name     string
	entities map[string]*Entity
	edges    map[Triplet]*Edge

	byLabel  map[string]tripletSet
	bySource map[string]tripletSet
	byTarget map[string]tripletSet

	validator Validator
	logger    *slog.Logger
}

// Option configures a Network.
type Option func(*Network)

// WithValidator installs a Validator consulted on every insert and update.
func WithValidator(v Validator) Option {
	return func(n *Network) {
		n.validator = v
	}
}

// WithLogger sets the logger used for debug tracing of mutations.
func WithLogger(l *slog.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates an empty network.
func New(name string, opts ...Option) *Network {
	if name == "" {
		name = DefaultName
	}
	n := &Network{
		name:     name,
		entities: make(map[string]*Entity),
		edges:    make(map[Triplet]*Edge),
		byLabel:  make(map[string]tripletSet),
		bySource: make(map[string]tripletSet),
		byTarget: make(map[string]tripletSet),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the network's name.
func (n *Network) Name() string {
	return n.name
}

// Stats returns entity, label and edge counts.
func (n *Network) Stats() Stats {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Stats{
		Name:     n.name,
		Entities: len(n.entities),
		Labels:   len(n.byLabel),
		Edges:    len(n.edges),
	}
}

// Labels returns the distinct edge labels in sorted order.
func (n *Network) Labels() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	labels := make([]string, 0, len(n.byLabel))
	for l := range n.byLabel {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// LabelCount returns how many edges carry label.
func (n *Network) LabelCount(label string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.byLabel[label])
}

// CreateEntity inserts a new entity. Nil props are stored as an empty object.
func (n *Network) CreateEntity(id string, p props.Object) (*Entity, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.createEntityLocked("create entity", id, p)
}

func (n *Network) createEntityLocked(op, id string, p props.Object) (*Entity, error) {
	if id == "" {
		return nil, newError(CodeInvalidID, op, `""`)
	}
	if _, ok := n.entities[id]; ok {
		return nil, newError(CodeDuplicateID, op, id)
	}
	if err := n.validateEntity(op, id, p); err != nil {
		return nil, err
	}
	e := &Entity{ID: id, Props: p.Clone()}
	n.entities[id] = e
	n.logger.Debug("entity created", "network", n.name, "id", id)
	return e, nil
}

// GetOrCreateEntity returns the entity with id, creating it when absent.
// For an existing entity, non-nil props replace the stored ones; nil props
// leave them untouched.
func (n *Network) GetOrCreateEntity(id string, p props.Object) (*Entity, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.entities[id]
	if !ok {
		return n.createEntityLocked("get or create entity", id, p)
	}
	if p != nil {
		if err := n.validateEntity("get or create entity", id, p); err != nil {
			return nil, err
		}
		e.Props = p.Clone()
	}
	return e, nil
}

// UpdateEntity replaces the props of an existing entity.
func (n *Network) UpdateEntity(id string, p props.Object) (*Entity, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.entities[id]
	if !ok {
		return nil, newError(CodeNotFound, "update entity", id)
	}
	if err := n.validateEntity("update entity", id, p); err != nil {
		return nil, err
	}
	e.Props = p.Clone()
	return e, nil
}

// Entity looks up an entity by id.
func (n *Network) Entity(id string) (*Entity, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	e, ok := n.entities[id]
	if !ok {
		return nil, newError(CodeNotFound, "get entity", id)
	}
	return e, nil
}

// HasEntity reports whether an entity with id exists.
func (n *Network) HasEntity(id string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.entities[id]
	return ok
}

// DeleteEntity removes an entity that has no incident edges.
func (n *Network) DeleteEntity(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.entities[id]; !ok {
		return newError(CodeNotFound, "delete entity", id)
	}
	if len(n.bySource[id]) > 0 || len(n.byTarget[id]) > 0 {
		return newError(CodeEntityInUse, "delete entity", id)
	}
	delete(n.entities, id)
	n.logger.Debug("entity deleted", "network", n.name, "id", id)
	return nil
}

// DetachDeleteEntity removes an entity together with all of its incident
// edges. It returns the number of edges removed.
func (n *Network) DetachDeleteEntity(id string) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.entities[id]; !ok {
		return 0, newError(CodeNotFound, "detach delete entity", id)
	}

	incident := make([]Triplet, 0, len(n.bySource[id])+len(n.byTarget[id]))
	for t := range n.bySource[id] {
		incident = append(incident, t)
	}
	for t := range n.byTarget[id] {
		incident = append(incident, t)
	}
	for _, t := range incident {
		n.removeEdgeLocked(t)
	}
	delete(n.entities, id)
	n.logger.Debug("entity detach deleted", "network", n.name, "id", id, "edges", len(incident))
	return len(incident), nil
}

// SelectEntities returns every entity whose props contain filter, sorted
// by id. A nil or empty filter selects all entities.
func (n *Network) SelectEntities(filter props.Object) []*Entity {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]*Entity, 0, len(n.entities))
	for _, e := range n.entities {
		if props.Subset(e.Props, filter) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, compareEntities)
	return out
}

func (n *Network) validateEntity(op, id string, p props.Object) error {
	if n.validator == nil {
		return nil
	}
	if err := n.validator.ValidateEntity(id, p.Clone()); err != nil {
		return &Error{Code: CodeSchemaViolation, Op: op, Ref: id, Err: err}
	}
	return nil
}

func (n *Network) validateEdge(op string, t Triplet, p props.Object) error {
	if n.validator == nil {
		return nil
	}
	if err := n.validator.ValidateEdge(t.Label, p.Clone()); err != nil {
		return &Error{Code: CodeSchemaViolation, Op: op, Ref: t.String(), Err: err}
	}
	return nil
}

func compareEntities(a, b *Entity) int {
	return cmp.Compare(a.ID, b.ID)
}

func compareEdges(a, b *Edge) int {
	return a.Key().Compare(b.Key())
}
