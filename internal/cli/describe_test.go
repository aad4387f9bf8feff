package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeCommandJSON(t *testing.T) {
	opts := newTestRootOptions(t, "json")

	out, err := execute(t, NewDescribeCommand(opts), "--script", shapesScript)
	require.NoError(t, err)

	var result DescribeResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "shapes", result.Name)
	assert.Equal(t, 8, result.Entities)
	assert.Equal(t, 2, result.Labels)
	assert.Equal(t, 8, result.Edges)
	assert.True(t, result.Connected)
	assert.True(t, result.Acyclic)
	assert.Equal(t, []LabelCount{
		{Label: "fromProto", Edges: 3},
		{Label: "hasPart", Edges: 5},
	}, result.ByLabel)
}

func TestDescribeCommandText(t *testing.T) {
	opts := newTestRootOptions(t, "text")
	loadShapes(t, opts)

	out, err := execute(t, NewDescribeCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "Network: shapes")
	assert.Contains(t, out, "connected: true")
	assert.Contains(t, out, "Edges by label:")
	assert.Contains(t, out, "hasPart")
}

func TestDescribeCommandCyclic(t *testing.T) {
	opts := newTestRootOptions(t, "json")

	out, err := execute(t, NewDescribeCommand(opts), "--script", "testdata/cyclic.sn")
	require.NoError(t, err)

	var result DescribeResult
	decodeResponse(t, out, &result)
	assert.True(t, result.Connected)
	assert.False(t, result.Acyclic)
}
