package doc

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysUTF16(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": 1,
		"a": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"tag": "<a>&</a>"})
	require.NoError(t, err)
	assert.Equal(t, `{"tag":"<a>&</a>"}`, string(got))
}

func TestMarshalCanonical_IntegralFloat(t *testing.T) {
	got, err := MarshalCanonical(float64(5))
	require.NoError(t, err)
	assert.Equal(t, "5", string(got))
}

func TestMarshalCanonical_FractionalFloat(t *testing.T) {
	got, err := MarshalCanonical(2.5)
	require.NoError(t, err)
	assert.Equal(t, "2.5", string(got))
}

func TestMarshalCanonical_Null(t *testing.T) {
	got, err := MarshalCanonical(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(got))
}

func TestMarshalCanonical_JSONNumber(t *testing.T) {
	got, err := MarshalCanonical(json.Number("42"))
	require.NoError(t, err)
	assert.Equal(t, "42", string(got))
}

func TestMarshalCanonical_NestedFields(t *testing.T) {
	f := Fields{
		"name": "widget",
		"dims": map[string]any{"w": 3, "h": 4},
		"tags": []any{"x", "y"},
	}
	got, err := MarshalCanonical(f)
	require.NoError(t, err)
	assert.Equal(t, `{"dims":{"h":4,"w":3},"name":"widget","tags":["x","y"]}`, string(got))
}

func TestMarshalCanonical_NonFiniteFloatRejected(t *testing.T) {
	_, err := MarshalCanonical(math.Inf(1))
	assert.Error(t, err)

	_, err = MarshalCanonical(math.NaN())
	assert.Error(t, err)
}

func TestDeepEqual_CrossRepresentation(t *testing.T) {
	assert.True(t, DeepEqual(int64(5), float64(5)))
	assert.True(t, DeepEqual(json.Number("5"), 5))
	assert.True(t, DeepEqual(
		map[string]any{"a": 1, "b": []any{1, 2}},
		map[string]any{"b": []any{1, 2}, "a": 1},
	))
}

func TestDeepEqual_Distinguishes(t *testing.T) {
	assert.False(t, DeepEqual(5, "5"))
	assert.False(t, DeepEqual(nil, false))
	assert.False(t, DeepEqual(
		map[string]any{"a": 1},
		map[string]any{"a": 1, "b": 2},
	))
}

func TestFieldsClone_NoAliasing(t *testing.T) {
	orig := Fields{"nested": map[string]any{"k": 1}}
	copied := orig.Clone()
	copied["nested"].(map[string]any)["k"] = 2

	assert.Equal(t, 1, orig["nested"].(map[string]any)["k"])
}

func TestParseID(t *testing.T) {
	id, err := ParseID("abc")
	require.NoError(t, err)
	assert.Equal(t, ID("abc"), id)

	_, err = ParseID("")
	assert.Error(t, err)
}
