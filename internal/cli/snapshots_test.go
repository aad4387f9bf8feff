package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semnet/internal/store"
)

func TestSnapshotsCommandEmpty(t *testing.T) {
	opts := newTestRootOptions(t, "text")

	out, err := execute(t, NewSnapshotsCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshots")
}

func TestSnapshotsCommandList(t *testing.T) {
	opts := newTestRootOptions(t, "json")
	loadShapes(t, opts)
	loadShapes(t, opts, "--name", "circles")

	out, err := execute(t, NewSnapshotsCommand(opts))
	require.NoError(t, err)

	var infos []store.SnapshotInfo
	decodeResponse(t, out, &infos)
	require.Len(t, infos, 2)
	assert.Equal(t, "shapes", infos[0].Name)
	assert.Equal(t, int64(1), infos[0].Seq)
	assert.Equal(t, "circles", infos[1].Name)
	assert.Equal(t, int64(2), infos[1].Seq)

	out, err = execute(t, NewSnapshotsCommand(opts), "--name", "circles")
	require.NoError(t, err)
	infos = nil
	decodeResponse(t, out, &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, "circles", infos[0].Name)
}

func TestSnapshotsCommandText(t *testing.T) {
	opts := newTestRootOptions(t, "text")
	loadShapes(t, opts)

	out, err := execute(t, NewSnapshotsCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "shapes")
}

func TestSnapshotsRemove(t *testing.T) {
	opts := newTestRootOptions(t, "json")
	loadShapes(t, opts)

	_, info, err := opts.loadArchive(t.Context(), NetworkSource{})
	require.NoError(t, err)

	_, err = execute(t, NewSnapshotsCommand(opts), "rm", info.ID)
	require.NoError(t, err)

	out, err := execute(t, NewSnapshotsCommand(opts))
	require.NoError(t, err)
	var infos []store.SnapshotInfo
	decodeResponse(t, out, &infos)
	assert.Empty(t, infos)
}

func TestSnapshotsRemoveNotFound(t *testing.T) {
	opts := newTestRootOptions(t, "json")

	out, err := execute(t, NewSnapshotsCommand(opts), "rm", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
	assert.Equal(t, "abc", shortHash("abc"))
}
