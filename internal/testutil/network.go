package testutil

import (
	"testing"

	"github.com/roach88/semnet/internal/network"
	"github.com/roach88/semnet/internal/props"
)

// NetworkBuilder builds networks in tests, failing the test on any error.
type NetworkBuilder struct {
	t testing.TB
	n *network.Network
}

// NewNetwork starts a builder for a network named name.
func NewNetwork(t testing.TB, name string, opts ...network.Option) *NetworkBuilder {
	t.Helper()
	return &NetworkBuilder{t: t, n: network.New(name, opts...)}
}

// Entity creates an entity, or replaces the props of an existing one. kv
// alternates string keys and plain Go values, e.g.
// Entity("c1", "type", "some_object").
func (b *NetworkBuilder) Entity(id string, kv ...any) *NetworkBuilder {
	b.t.Helper()
	if _, err := b.n.GetOrCreateEntity(id, Props(b.t, kv...)); err != nil {
		b.t.Fatalf("entity %s: %v", id, err)
	}
	return b
}

// Edge creates an edge, creating missing endpoints with empty props.
func (b *NetworkBuilder) Edge(label, source, target string, kv ...any) *NetworkBuilder {
	b.t.Helper()
	for _, id := range []string{source, target} {
		if _, err := b.n.GetOrCreateEntity(id, nil); err != nil {
			b.t.Fatalf("endpoint %s: %v", id, err)
		}
	}
	if _, err := b.n.CreateEdge(label, source, target, Props(b.t, kv...)); err != nil {
		b.t.Fatalf("edge %s %s %s: %v", label, source, target, err)
	}
	return b
}

// Network returns the built network.
func (b *NetworkBuilder) Network() *network.Network {
	return b.n
}

// Props builds a props object from alternating keys and values.
func Props(t testing.TB, kv ...any) props.Object {
	t.Helper()
	if len(kv)%2 != 0 {
		t.Fatalf("props: odd number of arguments: %v", kv)
	}
	obj := make(props.Object, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			t.Fatalf("props: key %v is not a string", kv[i])
		}
		v, err := props.FromAny(kv[i+1])
		if err != nil {
			t.Fatalf("props: %s: %v", key, err)
		}
		obj[key] = v
	}
	return obj
}

// CircleNetwork is the shapes network used across packages: a Circle
// prototype with two parts, and two instances of which only c2 links its
// radius part back to the prototype's radius.
func CircleNetwork(t testing.TB) *network.Network {
	t.Helper()
	return NewNetwork(t, "shapes").
		Entity("Circle").
		Entity("Circle.radius").
		Entity("Circle.center").
		Edge("hasPart", "Circle", "Circle.radius").
		Edge("hasPart", "Circle", "Circle.center").
		Entity("c1", "type", "some_object").
		Edge("fromProto", "c1", "Circle").
		Entity("c1.radius").
		Edge("hasPart", "c1", "c1.radius").
		Entity("c2").
		Entity("c2.radius").
		Entity("c2.center").
		Edge("fromProto", "c2", "Circle").
		Edge("hasPart", "c2", "c2.radius").
		Edge("hasPart", "c2", "c2.center").
		Edge("fromProto", "c2.radius", "Circle.radius").
		Network()
}

// CirclePattern is the instance-of-prototype pattern. All entities are
// wildcards; the labels hasPart and fromProto are meant to be required.
func CirclePattern(t testing.TB) *network.Network {
	t.Helper()
	return NewNetwork(t, "pattern").
		Entity("Class").
		Entity("Class.part").
		Edge("hasPart", "Class", "Class.part").
		Entity("Object").
		Edge("fromProto", "Object", "Class").
		Entity("Object.part").
		Edge("hasPart", "Object", "Object.part").
		Edge("fromProto", "Object.part", "Class.part").
		Network()
}
