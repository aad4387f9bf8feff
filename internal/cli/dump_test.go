package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/semnet/internal/archive"
	"github.com/roach88/semnet/internal/compiler"
)

func shapesArchiveJSON(t *testing.T) string {
	t.Helper()
	script, err := os.ReadFile(shapesScript)
	require.NoError(t, err)
	n, err := compiler.BuildNetwork("shapes", string(script))
	require.NoError(t, err)
	data, err := archive.Marshal(archive.Dump(n), archive.EncodingJSON)
	require.NoError(t, err)
	return string(data)
}

func TestDumpCommandScript(t *testing.T) {
	opts := newTestRootOptions(t, "text")

	out, err := execute(t, NewDumpCommand(opts), "--script", shapesScript)
	require.NoError(t, err)
	assert.Equal(t, shapesArchiveJSON(t), out)
}

func TestDumpCommandSnapshotMatchesScript(t *testing.T) {
	opts := newTestRootOptions(t, "json")
	loadShapes(t, opts)

	out, err := execute(t, NewDumpCommand(opts))
	require.NoError(t, err)
	assert.Equal(t, shapesArchiveJSON(t), out)
}

func TestDumpCommandKeepsSchema(t *testing.T) {
	opts := newTestRootOptions(t, "text")
	loadShapes(t, opts, "--schema", shapesSchema)

	out, err := execute(t, NewDumpCommand(opts), "--name", "shapes")
	require.NoError(t, err)

	a, err := archive.Unmarshal([]byte(out), archive.EncodingJSON)
	require.NoError(t, err)
	assert.Contains(t, a.Schema, "some_object")
}

func TestDumpCommandMsgpackFile(t *testing.T) {
	opts := newTestRootOptions(t, "text")
	path := filepath.Join(t.TempDir(), "shapes.msgpack")

	out, err := execute(t, NewDumpCommand(opts), "--script", shapesScript, "--encoding", "msgpack", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	a, err := archive.Unmarshal(data, archive.EncodingMsgpack)
	require.NoError(t, err)

	n, err := archive.Load(a)
	require.NoError(t, err)
	stats := n.Stats()
	assert.Equal(t, "shapes", stats.Name)
	assert.Equal(t, 8, stats.Entities)
	assert.Equal(t, 8, stats.Edges)
}

func TestDumpCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"unknown_encoding", []string{"--script", shapesScript, "--encoding", "xml"}, ErrCodeGeneric},
		{"empty_store", []string{}, ErrCodeNotFound},
		{"unwritable_output", []string{"--script", shapesScript, "-o", "/nonexistent/dir/out.json"}, ErrCodeWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := newTestRootOptions(t, "json")

			out, err := execute(t, NewDumpCommand(opts), tt.args...)
			require.Error(t, err)
			resp := decodeResponse(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
