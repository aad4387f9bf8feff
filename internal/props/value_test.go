package props

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectUnmarshalJSON_NumberKinds(t *testing.T) {
	obj := MustParseObject(`{"count": 3, "ratio": 0.5, "big": 9007199254740993, "exp": 1e3}`)

	assert.Equal(t, Int(3), obj["count"])
	assert.Equal(t, Float(0.5), obj["ratio"])
	assert.Equal(t, Int(9007199254740993), obj["big"], "large integers must not lose precision")
	assert.Equal(t, Float(1000), obj["exp"])
}

func TestObjectUnmarshalJSON_Nested(t *testing.T) {
	obj := MustParseObject(`{"tags": ["a", true, null], "meta": {"type": "ENTITY"}}`)

	assert.Equal(t, Array{String("a"), Bool(true), Null{}}, obj["tags"])
	assert.Equal(t, Object{"type": String("ENTITY")}, obj["meta"])
}

func TestParseObject_Empty(t *testing.T) {
	obj, err := ParseObject(nil)
	require.NoError(t, err)
	assert.NotNil(t, obj)
	assert.Empty(t, obj)

	obj, err = ParseObject([]byte("null"))
	require.NoError(t, err)
	assert.Empty(t, obj)
}

func TestParseObject_RejectsNonObject(t *testing.T) {
	_, err := ParseObject([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`{"a": `))
	assert.Error(t, err)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "x", String("x")},
		{"int", 7, Int(7)},
		{"uint8", uint8(7), Int(7)},
		{"float", 1.5, Float(1.5)},
		{"json number int", json.Number("12"), Int(12)},
		{"json number float", json.Number("1.25"), Float(1.25)},
		{"slice", []any{"a", 1}, Array{String("a"), Int(1)}},
		{"map", map[string]any{"k": false}, Object{"k": Bool(false)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)

	_, err = FromAny(map[string]any{"nested": []any{make(chan int)}})
	assert.ErrorContains(t, err, `["nested"]`)
}

func TestToAny_RoundTrip(t *testing.T) {
	obj := MustParseObject(`{"a": 1, "b": [true, "x"], "c": {"d": null}, "e": 2.5}`)

	back, err := ObjectFromAny(obj.ToMap())
	require.NoError(t, err)
	assert.Equal(t, obj, back)
}

func TestClone_IsDeep(t *testing.T) {
	orig := Object{"list": Array{String("a")}, "inner": Object{"k": Int(1)}}
	cp := orig.Clone()

	cp["list"].(Array)[0] = String("changed")
	cp["inner"].(Object)["k"] = Int(2)

	assert.Equal(t, String("a"), orig["list"].(Array)[0])
	assert.Equal(t, Int(1), orig["inner"].(Object)["k"])
}

func TestClone_NilReceiver(t *testing.T) {
	var obj Object
	cp := obj.Clone()
	assert.NotNil(t, cp)
	assert.Empty(t, cp)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes as the surrogate 0xD83D, which sorts before U+FF61 in
	// UTF-16. UTF-8 byte order is the reverse.
	obj := Object{"\uFF61": Int(1), "\U0001F600": Int(2), "a": Int(3)}
	assert.Equal(t, []string{"a", "\U0001F600", "\uFF61"}, obj.SortedKeys())
}

func TestNewObject(t *testing.T) {
	obj := NewObject(P("type", String("ENTITY")), P("arity", Int(2)), P("type", String("KIND")))
	assert.Equal(t, Object{"type": String("KIND"), "arity": Int(2)}, obj)
}
