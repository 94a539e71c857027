package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/reconcile"
)

func TestDecodeMessage_Added(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"msg":"added","id":"a","fields":{"x":1}}`))
	require.NoError(t, err)

	assert.Equal(t, reconcile.TagAdded, m.Tag)
	assert.Equal(t, doc.ID("a"), m.ID)
	assert.True(t, doc.DeepEqual(m.Fields["x"], 1))
}

func TestDecodeMessage_ChangedSetAndCleared(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"msg":"changed","id":"a","fields":{"x":2},"cleared":["y"]}`))
	require.NoError(t, err)

	assert.Equal(t, reconcile.TagChanged, m.Tag)
	require.Contains(t, m.Changes, "x")
	assert.IsType(t, doc.Set{}, m.Changes["x"])
	require.Contains(t, m.Changes, "y")
	assert.IsType(t, doc.Unset{}, m.Changes["y"])
}

func TestDecodeMessage_ChangedFieldBothSetAndCleared(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"msg":"changed","id":"a","fields":{"x":2},"cleared":["x"]}`))
	require.Error(t, err)
	assert.True(t, reconcile.IsMalformed(err))
}

func TestDecodeMessage_Removed(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"msg":"removed","id":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, reconcile.TagRemoved, m.Tag)
}

func TestDecodeMessage_ReplacedWithBody(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"msg":"replaced","id":"a","replace":{"x":1}}`))
	require.NoError(t, err)

	assert.Equal(t, reconcile.TagReplaced, m.Tag)
	require.NotNil(t, m.Replacement)
	assert.True(t, doc.DeepEqual((*m.Replacement)["x"], 1))
}

func TestDecodeMessage_ReplacedNullMeansDelete(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"msg":"replaced","id":"a","replace":null}`))
	require.NoError(t, err)
	assert.Nil(t, m.Replacement)

	// An absent replace key means the same thing.
	m, err = DecodeMessage([]byte(`{"msg":"replaced","id":"a"}`))
	require.NoError(t, err)
	assert.Nil(t, m.Replacement)
}

func TestDecodeMessage_UnknownTag(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"msg":"exploded","id":"a"}`))
	require.Error(t, err)

	var pe *reconcile.ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, reconcile.ErrCodeUnknownMessage, pe.Code)
}

func TestDecodeMessage_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid JSON":         `{`,
		"missing id":           `{"msg":"added","fields":{"x":1}}`,
		"added without fields": `{"msg":"added","id":"a"}`,
		"changed without ops":  `{"msg":"changed","id":"a"}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(input))
			require.Error(t, err)
			assert.True(t, reconcile.IsMalformed(err))
		})
	}
}
