package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stageArgs struct {
	DealID    string `json:"deal_id" jsonschema:"description=Deal identifier"`
	NewStage  string `json:"new_stage" jsonschema:"description=Target pipeline stage"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

func TestDecodeArgs(t *testing.T) {
	got, err := DecodeArgs[stageArgs](map[string]any{
		"deal_id":   "d-42",
		"new_stage": "negotiation",
		"confirmed": true,
	})
	assert.NoError(t, err)
	assert.Equal(t, "d-42", got.DealID)
	assert.Equal(t, "negotiation", got.NewStage)
	assert.True(t, got.Confirmed)
}

func TestDecodeArgsTypeMismatch(t *testing.T) {
	_, err := DecodeArgs[stageArgs](map[string]any{
		"deal_id": 12345,
	})
	assert.True(t, errors.Is(err, ErrInvalidArgs), "got %v", err)
}

func TestReflectSchema(t *testing.T) {
	schema := ReflectSchema[stageArgs]()

	assert.ElementsMatch(t, []string{"deal_id", "new_stage"}, schema.Required)
	assert.Contains(t, schema.Properties, "confirmed")
	assert.Equal(t, "string", schema.Properties["deal_id"].Type)
	assert.Equal(t, "Deal identifier", schema.Properties["deal_id"].Description)
	assert.Equal(t, "boolean", schema.Properties["confirmed"].Type)
}
