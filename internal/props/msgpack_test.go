package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestObject_Msgpack(t *testing.T) {
	obj := MustParseObject(`{"s": "x", "i": 300, "neg": -2, "f": 2.5, "b": true, "n": null, "a": [1, "y"], "o": {"k": false}}`)

	data, err := msgpack.Marshal(obj)
	require.NoError(t, err)

	var got Object
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.True(t, Equal(obj, got), "got %v", got)
	assert.Equal(t, Int(300), got["i"], "integers stay integral")
	assert.Equal(t, Float(2.5), got["f"])
}
