package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":         map[string]any{"type": "string"},
			"lesson_number": map[string]any{"type": "integer"},
		},
		"required": []string{"query"},
	}
}

func TestValidateParameters_Valid(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"query":         "what is MCP",
		"lesson_number": 3,
	}, testSchema())
	assert.NoError(t, err)
}

func TestValidateParameters_MissingRequired(t *testing.T) {
	err := ValidateParameters(map[string]any{"lesson_number": 3}, testSchema())
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "query", vErr.Field)
}

func TestValidateParameters_WrongType(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"query":         "x",
		"lesson_number": "three",
	}, testSchema())
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "lesson_number", vErr.Field)
}

func TestValidateParameters_JSONNumbersAsIntegers(t *testing.T) {
	// JSON decoding yields float64 for all numbers.
	err := ValidateParameters(map[string]any{
		"query":         "x",
		"lesson_number": float64(4),
	}, testSchema())
	assert.NoError(t, err)

	err = ValidateParameters(map[string]any{
		"query":         "x",
		"lesson_number": 4.5,
	}, testSchema())
	assert.Error(t, err)
}

func TestValidateParameters_RequiredAsAnySlice(t *testing.T) {
	schema := testSchema()
	schema["required"] = []any{"query"}

	err := ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
}

func TestValidateParameters_ExtraFieldsAllowed(t *testing.T) {
	err := ValidateParameters(map[string]any{
		"query": "x",
		"extra": 42,
	}, testSchema())
	assert.NoError(t, err)
}
