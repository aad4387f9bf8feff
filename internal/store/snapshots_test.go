package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semnet/internal/archive"
	"github.com/roach88/semnet/internal/props"
)

func TestSnapshots_SaveGet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, "snap-1") {
		t.Run(name, func(t *testing.T) {
			a := circleArchive(t)
			a.Schema = "entity: {...}"

			info, err := s.Save(ctx, a)
			require.NoError(t, err)

			wantHash, err := a.ContentHash()
			require.NoError(t, err)
			assert.Equal(t, SnapshotInfo{
				ID:          "snap-1",
				Seq:         1,
				Name:        "shapes",
				ContentHash: wantHash,
				Entities:    8,
				Edges:       8,
			}, info)

			got, gotInfo, err := s.Get(ctx, "snap-1")
			require.NoError(t, err)
			assert.Equal(t, info, gotInfo)
			assert.Equal(t, a, got)

			gotHash, err := got.ContentHash()
			require.NoError(t, err)
			assert.Equal(t, wantHash, gotHash)
		})
	}
}

func TestSnapshots_PreservesItemOrder(t *testing.T) {
	ctx := context.Background()
	a := &archive.Archive{
		Name: "mixed",
		Items: []archive.Item{
			{Type: archive.TypeEntity, ID: "b", Props: props.Object{}},
			{Type: archive.TypeEdge, Label: "r", SourceID: "b", TargetID: "a", Props: props.MustParseObject(`{"w":1.5}`)},
			{Type: archive.TypeEntity, ID: "a", Props: props.MustParseObject(`{"n":1}`)},
		},
	}
	for name, s := range backends(t, "snap-1") {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, a)
			require.NoError(t, err)

			got, _, err := s.Get(ctx, "snap-1")
			require.NoError(t, err)
			assert.Equal(t, a.Items, got.Items)
		})
	}
}

func TestSnapshots_SaveUnchangedIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, "snap-1", "snap-2") {
		t.Run(name, func(t *testing.T) {
			first, err := s.Save(ctx, circleArchive(t))
			require.NoError(t, err)

			again, err := s.Save(ctx, circleArchive(t))
			require.NoError(t, err)
			assert.Equal(t, first, again)

			infos, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, infos, 1)
		})
	}
}

func TestSnapshots_SeqAndLatest(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, "snap-1", "snap-2", "snap-3") {
		t.Run(name, func(t *testing.T) {
			a := circleArchive(t)
			_, err := s.Save(ctx, a)
			require.NoError(t, err)

			other := &archive.Archive{Name: "other", Items: []archive.Item{}}
			_, err = s.Save(ctx, other)
			require.NoError(t, err)

			a.Items = a.Items[:1]
			_, err = s.Save(ctx, a)
			require.NoError(t, err)

			infos, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 3)
			for i, info := range infos {
				assert.Equal(t, int64(i+1), info.Seq)
			}

			got, info, err := s.Latest(ctx, "shapes")
			require.NoError(t, err)
			assert.Equal(t, "snap-3", info.ID)
			assert.Len(t, got.Items, 1)

			_, info, err = s.Latest(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, "snap-2", info.ID)

			_, info, err = s.Latest(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, "snap-3", info.ID)
		})
	}
}

func TestSnapshots_Delete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, "snap-1", "snap-2") {
		t.Run(name, func(t *testing.T) {
			a := circleArchive(t)
			_, err := s.Save(ctx, a)
			require.NoError(t, err)
			a.Items = a.Items[:2]
			_, err = s.Save(ctx, a)
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, "snap-2"))

			_, _, err = s.Get(ctx, "snap-2")
			assert.ErrorIs(t, err, ErrNotFound)

			_, info, err := s.Latest(ctx, "shapes")
			require.NoError(t, err)
			assert.Equal(t, "snap-1", info.ID)

			assert.ErrorIs(t, s.Delete(ctx, "snap-2"), ErrNotFound)
		})
	}
}

func TestSnapshots_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, _, err = s.Latest(ctx, "")
			assert.ErrorIs(t, err, ErrNotFound)

			infos, err := s.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, infos)
			assert.Empty(t, infos)
		})
	}
}

func TestSnapshots_SeqContinuesAfterDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t, "snap-1", "snap-2", "snap-3") {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, circleArchive(t))
			require.NoError(t, err)

			other := &archive.Archive{Name: "other", Items: []archive.Item{}}
			info, err := s.Save(ctx, other)
			require.NoError(t, err)
			assert.Equal(t, int64(2), info.Seq)

			require.NoError(t, s.Delete(ctx, info.ID))

			info, err = s.Save(ctx, other)
			require.NoError(t, err)
			assert.Equal(t, "snap-3", info.ID)
			assert.Equal(t, int64(3), info.Seq)
		})
	}
}

func TestSQLiteStore_DuplicateItemFailsAtomically(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t, "snap-1")

	a := &archive.Archive{
		Name: "dup",
		Items: []archive.Item{
			{Type: archive.TypeEntity, ID: "a", Props: props.Object{}},
			{Type: archive.TypeEntity, ID: "a", Props: props.Object{}},
		},
	}
	_, err := s.Save(ctx, a)
	require.Error(t, err)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestBadgerStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := DefaultBadgerConfig(dir)
	cfg.IDs = NewFixedGenerator("snap-1")
	s, err := OpenBadger(cfg)
	require.NoError(t, err)
	_, err = s.Save(ctx, circleArchive(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenBadger(DefaultBadgerConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	got, info, err := reopened.Latest(ctx, "shapes")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", info.ID)
	assert.Equal(t, circleArchive(t), got)
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("a")
	assert.Equal(t, "a", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	var g UUIDv7Generator
	assert.NotEqual(t, g.Generate(), g.Generate())
}
