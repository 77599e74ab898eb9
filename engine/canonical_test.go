package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSortsObjectKeys(t *testing.T) {
	got, err := marshalCanonical(map[string]any{
		"zeta":  json.Number("1"),
		"alpha": json.Number("2"),
		"mid":   "x",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":"x","zeta":1}`, string(got))
}

func TestCanonicalRejectsFloats(t *testing.T) {
	_, err := marshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = marshalCanonical([]any{float32(2)})
	assert.Error(t, err)
}

func TestCanonicalNormalizesStrings(t *testing.T) {
	// Precomposed e-acute and e plus combining acute normalize to the same
	// bytes.
	a, err := marshalCanonical("\u00e9")
	require.NoError(t, err)
	b, err := marshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCanonicalNestedStructures(t *testing.T) {
	got, err := marshalCanonical(map[string]any{
		"list": []any{json.Number("1"), map[string]any{"b": true, "a": nil}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1,{"a":null,"b":true}]}`, string(got))
}

func TestCanonicalDoesNotEscapeHTML(t *testing.T) {
	got, err := marshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}
