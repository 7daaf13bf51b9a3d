package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreSchema = &Schema{
	Name: "test-score",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		},
		"required":             []string{"score"},
		"additionalProperties": false,
	},
}

func TestValidateJSON(t *testing.T) {
	assert.NoError(t, ValidateJSON(nil, json.RawMessage(`not json`)))
	assert.NoError(t, ValidateJSON(scoreSchema, json.RawMessage(`{"score": 80}`)))

	for _, raw := range []string{`{"score": 120}`, `{"grade": 1}`, `{"score": 1`} {
		err := ValidateJSON(scoreSchema, json.RawMessage(raw))
		var invalid *ErrInvalidResponse
		require.True(t, errors.As(err, &invalid), raw)
		assert.Equal(t, raw, string(invalid.Content))
	}
}

func TestExtractJSONObject(t *testing.T) {
	raw, ok := ExtractJSONObject("Sure! Here it is:\n```json\n{\"score\": 80, \"nested\": {\"a\": 1}}\n```\nThanks")
	require.True(t, ok)
	assert.JSONEq(t, `{"score": 80, "nested": {"a": 1}}`, string(raw))

	_, ok = ExtractJSONObject("no object here")
	assert.False(t, ok)
}
