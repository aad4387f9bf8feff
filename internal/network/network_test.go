package network

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semnet/internal/props"
)

// assertIndexCoherent checks that every edge appears in exactly the three
// buckets its triplet names and that no bucket is empty or dangling.
func assertIndexCoherent(t *testing.T, n *Network) {
	t.Helper()
	n.mu.RLock()
	defer n.mu.RUnlock()

	for key, e := range n.edges {
		assert.Equal(t, key, e.Key(), "primary key matches edge")
		assert.Contains(t, n.byLabel[key.Label], key)
		assert.Contains(t, n.bySource[key.Source], key)
		assert.Contains(t, n.byTarget[key.Target], key)
		assert.Same(t, n.entities[key.Source], e.Source)
		assert.Same(t, n.entities[key.Target], e.Target)
	}
	for name, idx := range map[string]map[string]tripletSet{
		"label": n.byLabel, "source": n.bySource, "target": n.byTarget,
	} {
		for bucket, set := range idx {
			assert.NotEmpty(t, set, "%s bucket %q should be pruned when empty", name, bucket)
			for key := range set {
				assert.Contains(t, n.edges, key, "%s bucket %q references unknown edge", name, bucket)
			}
		}
	}
}

func mustEntity(t *testing.T, n *Network, id string, p props.Object) *Entity {
	t.Helper()
	e, err := n.CreateEntity(id, p)
	require.NoError(t, err)
	return e
}

func mustEdge(t *testing.T, n *Network, label, src, tgt string, p props.Object) *Edge {
	t.Helper()
	e, err := n.CreateEdge(label, src, tgt, p)
	require.NoError(t, err)
	return e
}

func keys(edges []*Edge) []Triplet {
	out := make([]Triplet, len(edges))
	for i, e := range edges {
		out[i] = e.Key()
	}
	return out
}

func TestNew_DefaultName(t *testing.T) {
	assert.Equal(t, "Default", New("").Name())
	assert.Equal(t, "shapes", New("shapes").Name())
}

func TestCreateEntity(t *testing.T) {
	n := New("t")

	e := mustEntity(t, n, "a", props.NewObject(props.P("kind", props.String("box"))))
	assert.Equal(t, "a", e.ID)
	assert.Equal(t, props.String("box"), e.Props["kind"])

	_, err := n.CreateEntity("a", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = n.CreateEntity("", nil)
	assert.ErrorIs(t, err, ErrInvalidID)

	nilProps := mustEntity(t, n, "b", nil)
	assert.NotNil(t, nilProps.Props)
	assert.Empty(t, nilProps.Props)
}

func TestCreateEntity_CopiesProps(t *testing.T) {
	n := New("t")
	p := props.NewObject(props.P("x", props.Int(1)))
	e := mustEntity(t, n, "a", p)

	p["x"] = props.Int(2)
	assert.Equal(t, props.Int(1), e.Props["x"], "caller mutation must not leak into the network")
}

func TestGetOrCreateEntity(t *testing.T) {
	n := New("t")

	first, err := n.GetOrCreateEntity("a", props.NewObject(props.P("v", props.Int(1))))
	require.NoError(t, err)

	t.Run("nil props keep existing", func(t *testing.T) {
		again, err := n.GetOrCreateEntity("a", nil)
		require.NoError(t, err)
		assert.Same(t, first, again)
		assert.Equal(t, props.Int(1), again.Props["v"])
	})

	t.Run("non-nil props replace", func(t *testing.T) {
		again, err := n.GetOrCreateEntity("a", props.NewObject(props.P("w", props.Int(2))))
		require.NoError(t, err)
		assert.Same(t, first, again)
		assert.Equal(t, props.NewObject(props.P("w", props.Int(2))), again.Props)
	})

	t.Run("idempotent on count", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := n.GetOrCreateEntity("a", nil)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, n.Stats().Entities)
	})
}

func TestUpdateEntity(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "a", props.NewObject(props.P("v", props.Int(1))))
	mustEntity(t, n, "b", nil)
	edge := mustEdge(t, n, "rel", "a", "b", nil)

	updated, err := n.UpdateEntity("a", props.NewObject(props.P("v", props.Int(9))))
	require.NoError(t, err)
	assert.Equal(t, props.Int(9), updated.Props["v"])
	assert.Equal(t, props.Int(9), edge.Source.Props["v"], "edges see entity updates")

	_, err = n.UpdateEntity("missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntityLookup(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "a", nil)

	e, err := n.Entity("a")
	require.NoError(t, err)
	assert.Equal(t, "a", e.ID)
	assert.True(t, n.HasEntity("a"))

	_, err = n.Entity("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, n.HasEntity("nope"))
}

func TestDeleteEntity(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "a", nil)
	mustEntity(t, n, "b", nil)
	mustEntity(t, n, "lonely", nil)
	mustEdge(t, n, "rel", "a", "b", nil)

	err := n.DeleteEntity("a")
	assert.ErrorIs(t, err, ErrEntityInUse)
	err = n.DeleteEntity("b")
	assert.ErrorIs(t, err, ErrEntityInUse, "incoming edges also block delete")

	require.NoError(t, n.DeleteEntity("lonely"))
	assert.False(t, n.HasEntity("lonely"))

	assert.ErrorIs(t, n.DeleteEntity("lonely"), ErrNotFound)
	assertIndexCoherent(t, n)
}

func TestDetachDeleteEntity_Cascades(t *testing.T) {
	n := New("t")
	for _, id := range []string{"a", "b", "c", "d"} {
		mustEntity(t, n, id, nil)
	}
	mustEdge(t, n, "rel", "a", "b", nil)
	mustEdge(t, n, "rel", "c", "a", nil)
	mustEdge(t, n, "other", "a", "d", nil)
	mustEdge(t, n, "rel", "c", "d", nil)

	removed, err := n.DetachDeleteEntity("a")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.False(t, n.HasEntity("a"))

	for e := range n.Edges() {
		assert.NotEqual(t, "a", e.Source.ID)
		assert.NotEqual(t, "a", e.Target.ID)
	}
	assert.Equal(t, []string{"rel"}, n.Labels(), "label bucket for 'other' is pruned")
	assert.Equal(t, 1, n.Stats().Edges)
	assertIndexCoherent(t, n)

	_, err = n.DetachDeleteEntity("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEdge(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "a", nil)
	mustEntity(t, n, "b", nil)

	e := mustEdge(t, n, "rel", "a", "b", props.NewObject(props.P("w", props.Float(0.5))))
	assert.Equal(t, Triplet{Label: "rel", Source: "a", Target: "b"}, e.Key())
	assert.Equal(t, "(a) -rel-> (b)", e.String())

	tests := []struct {
		name            string
		label, src, tgt string
		want            error
	}{
		{"duplicate triplet", "rel", "a", "b", ErrDuplicateEdge},
		{"missing source", "rel", "x", "b", ErrNotFound},
		{"missing target", "rel", "a", "x", ErrNotFound},
		{"empty label", "", "a", "b", ErrInvalidID},
		{"self loop", "rel", "a", "a", ErrSelfLoop},
		{"self loop on missing entity", "any", "zz", "zz", ErrSelfLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.CreateEdge(tt.label, tt.src, tt.tgt, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Same label, opposite direction and a second label are distinct edges.
	mustEdge(t, n, "rel", "b", "a", nil)
	mustEdge(t, n, "other", "a", "b", nil)
	assert.Equal(t, 3, n.Stats().Edges)
	assertIndexCoherent(t, n)
}

func TestGetOrCreateEdge(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "a", nil)
	mustEntity(t, n, "b", nil)

	first, err := n.GetOrCreateEdge("rel", "a", "b", props.NewObject(props.P("v", props.Int(1))))
	require.NoError(t, err)

	again, err := n.GetOrCreateEdge("rel", "a", "b", nil)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, props.Int(1), again.Props["v"])

	again, err = n.GetOrCreateEdge("rel", "a", "b", props.Object{})
	require.NoError(t, err)
	assert.Empty(t, again.Props)
	assert.Equal(t, 1, n.LabelCount("rel"))
}

func TestUpdateAndDeleteEdge(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "a", nil)
	mustEntity(t, n, "b", nil)
	mustEdge(t, n, "rel", "a", "b", nil)

	e, err := n.UpdateEdge("rel", "a", "b", props.NewObject(props.P("k", props.Bool(true))))
	require.NoError(t, err)
	assert.Equal(t, props.Bool(true), e.Props["k"])

	_, err = n.UpdateEdge("rel", "b", "a", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := n.Edge("rel", "a", "b")
	require.NoError(t, err)
	assert.Same(t, e, got)
	assert.True(t, n.HasEdge("rel", "a", "b"))

	require.NoError(t, n.DeleteEdge("rel", "a", "b"))
	assert.False(t, n.HasEdge("rel", "a", "b"))
	assert.ErrorIs(t, n.DeleteEdge("rel", "a", "b"), ErrNotFound)
	assert.Empty(t, n.Labels())
	assertIndexCoherent(t, n)

	// Entities stay; deleting the edge frees them.
	require.NoError(t, n.DeleteEntity("a"))
}

func TestSelectEdges(t *testing.T) {
	n := New("t")
	for _, id := range []string{"a", "b", "c"} {
		mustEntity(t, n, id, nil)
	}
	heavy := props.NewObject(props.P("w", props.Int(2)))
	mustEdge(t, n, "x", "a", "b", heavy)
	mustEdge(t, n, "y", "a", "b", nil)
	mustEdge(t, n, "x", "b", "c", heavy)
	mustEdge(t, n, "x", "a", "c", nil)
	mustEdge(t, n, "y", "c", "a", nil)

	tr := func(l, s, d string) Triplet { return Triplet{Label: l, Source: s, Target: d} }

	tests := []struct {
		name   string
		sel    Selector
		filter props.Object
		want   []Triplet
	}{
		{"all", Selector{}, nil, []Triplet{tr("x", "a", "b"), tr("x", "a", "c"), tr("y", "a", "b"), tr("x", "b", "c"), tr("y", "c", "a")}},
		{"label", Selector{Label: "y"}, nil, []Triplet{tr("y", "a", "b"), tr("y", "c", "a")}},
		{"source", Selector{Source: "a"}, nil, []Triplet{tr("x", "a", "b"), tr("x", "a", "c"), tr("y", "a", "b")}},
		{"target", Selector{Target: "b"}, nil, []Triplet{tr("x", "a", "b"), tr("y", "a", "b")}},
		{"label and source", Selector{Label: "x", Source: "a"}, nil, []Triplet{tr("x", "a", "b"), tr("x", "a", "c")}},
		{"label and target", Selector{Label: "x", Target: "c"}, nil, []Triplet{tr("x", "a", "c"), tr("x", "b", "c")}},
		{"source and target", Selector{Source: "a", Target: "b"}, nil, []Triplet{tr("x", "a", "b"), tr("y", "a", "b")}},
		{"full triplet", Selector{Label: "y", Source: "a", Target: "b"}, nil, []Triplet{tr("y", "a", "b")}},
		{"props filter", Selector{}, heavy, []Triplet{tr("x", "a", "b"), tr("x", "b", "c")}},
		{"props filter with label", Selector{Label: "x", Source: "a"}, heavy, []Triplet{tr("x", "a", "b")}},
		{"unknown label", Selector{Label: "nope"}, nil, []Triplet{}},
		{"unknown source", Selector{Source: "nope"}, nil, []Triplet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keys(n.SelectEdges(tt.sel, tt.filter)))
		})
	}

	assert.Equal(t, keys(n.SelectEdges(Selector{Source: "a"}, nil)), keys(n.Outgoing("a")))
	assert.Equal(t, []Triplet{tr("y", "c", "a")}, keys(n.Incoming("a")))
}

func TestSelectEntities(t *testing.T) {
	n := New("t")
	mustEntity(t, n, "c", props.NewObject(props.P("kind", props.String("circle"))))
	mustEntity(t, n, "a", props.NewObject(props.P("kind", props.String("circle")), props.P("r", props.Int(1))))
	mustEntity(t, n, "b", props.NewObject(props.P("kind", props.String("square"))))

	ids := func(es []*Entity) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.ID
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(n.SelectEntities(nil)))
	assert.Equal(t, []string{"a", "c"}, ids(n.SelectEntities(props.NewObject(props.P("kind", props.String("circle"))))))
	assert.Equal(t, []string{"a"}, ids(n.SelectEntities(props.NewObject(props.P("r", props.Float(1))))), "numbers compare by value")
	assert.Empty(t, n.SelectEntities(props.NewObject(props.P("missing", props.Null{}))))
}

func TestIterators_StopEarlyAndSnapshot(t *testing.T) {
	n := New("t")
	for _, id := range []string{"c", "a", "b"} {
		mustEntity(t, n, id, nil)
	}

	var seen []string
	for e := range n.Entities() {
		seen = append(seen, e.ID)
		if e.ID == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)

	// Mutating during iteration is allowed; the snapshot is unaffected.
	var all []string
	for e := range n.Entities() {
		all = append(all, e.ID)
		_, err := n.GetOrCreateEntity("z"+e.ID, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, all)
	assert.Equal(t, 6, n.Stats().Entities)
}

func TestStatsAndLabels(t *testing.T) {
	n := New("stats")
	for _, id := range []string{"a", "b", "c"} {
		mustEntity(t, n, id, nil)
	}
	mustEdge(t, n, "z", "a", "b", nil)
	mustEdge(t, n, "m", "b", "c", nil)
	mustEdge(t, n, "m", "a", "c", nil)

	assert.Equal(t, Stats{Name: "stats", Entities: 3, Labels: 2, Edges: 3}, n.Stats())
	assert.Equal(t, []string{"m", "z"}, n.Labels())
	assert.Equal(t, 2, n.LabelCount("m"))
	assert.Equal(t, 0, n.LabelCount("nope"))
}

type rejectKind struct{}

func (rejectKind) ValidateEntity(id string, p props.Object) error {
	if _, ok := p["forbidden"]; ok {
		return errors.New("forbidden key")
	}
	return nil
}

func (rejectKind) ValidateEdge(label string, p props.Object) error {
	if label == "banned" {
		return errors.New("banned label")
	}
	return nil
}

func TestValidator(t *testing.T) {
	n := New("t", WithValidator(rejectKind{}))
	mustEntity(t, n, "a", nil)
	mustEntity(t, n, "b", nil)

	_, err := n.CreateEntity("c", props.NewObject(props.P("forbidden", props.Bool(true))))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaViolation)
	assert.Contains(t, err.Error(), "forbidden key")
	assert.False(t, n.HasEntity("c"), "rejected insert leaves no trace")

	_, err = n.CreateEdge("banned", "a", "b", nil)
	assert.ErrorIs(t, err, ErrSchemaViolation)
	assert.Empty(t, n.Labels())
	assertIndexCoherent(t, n)

	_, err = n.UpdateEntity("a", props.NewObject(props.P("forbidden", props.Int(1))))
	assert.ErrorIs(t, err, ErrSchemaViolation)
	e, _ := n.Entity("a")
	assert.Empty(t, e.Props, "rejected update leaves props unchanged")
}

func TestError_Format(t *testing.T) {
	n := New("t")
	_, err := n.Entity("ghost")

	var nerr *Error
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, CodeNotFound, nerr.Code)
	assert.Equal(t, "get entity", nerr.Op)
	assert.Equal(t, "ghost", nerr.Ref)
	assert.Equal(t, "network: get entity ghost: NOT_FOUND", err.Error())
	assert.False(t, errors.Is(err, ErrDuplicateID))
}

func TestIndexCoherence_RandomOps(t *testing.T) {
	n := New("t")
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		mustEntity(t, n, id, nil)
	}
	labels := []string{"p", "q"}

	// Deterministic sweep of create and delete operations.
	step := 0
	for _, l := range labels {
		for _, s := range ids {
			for _, d := range ids {
				if s == d {
					continue
				}
				step++
				if step%3 == 0 {
					continue
				}
				mustEdge(t, n, l, s, d, nil)
			}
		}
	}
	assertIndexCoherent(t, n)

	for _, e := range slices.Collect(n.Edges()) {
		if e.Source.ID == "c" || e.Label == "q" && e.Target.ID == "a" {
			require.NoError(t, n.DeleteEdge(e.Label, e.Source.ID, e.Target.ID))
		}
	}
	assertIndexCoherent(t, n)
	assert.Empty(t, n.Outgoing("c"))

	_, err := n.DetachDeleteEntity("b")
	require.NoError(t, err)
	assertIndexCoherent(t, n)
}
