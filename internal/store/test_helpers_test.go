package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/semnet/internal/archive"
	"github.com/roach88/semnet/internal/testutil"
)

// createTestStore creates a new SQLite store in a temp directory.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	var opts []Option
	if len(ids) > 0 {
		opts = append(opts, WithIDGenerator(NewFixedGenerator(ids...)))
	}
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBadger creates an in-memory Badger store.
func createTestBadger(t *testing.T, ids ...string) *BadgerStore {
	t.Helper()
	cfg := InMemoryBadgerConfig()
	if len(ids) > 0 {
		cfg.IDs = NewFixedGenerator(ids...)
	}
	s, err := OpenBadger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns one store per backend, each with the given ids.
func backends(t *testing.T, ids ...string) map[string]Snapshots {
	t.Helper()
	return map[string]Snapshots{
		BackendSQLite: createTestStore(t, ids...),
		BackendBadger: createTestBadger(t, ids...),
	}
}

func circleArchive(t *testing.T) *archive.Archive {
	t.Helper()
	return archive.Dump(testutil.CircleNetwork(t))
}
