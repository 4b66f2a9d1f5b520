package schemaregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const noteSchema = `{
	"type": "object",
	"properties": {
		"reason": {"type": "string", "minLength": 1},
		"severity": {"type": "string", "enum": ["low", "medium", "high"]}
	},
	"required": ["reason"]
}`

func TestValidateAgainstRegisteredSchema(t *testing.T) {
	registry := New()
	assert.NoError(t, registry.Register("5/DamageRequest", []byte(noteSchema)))

	assert.NoError(t, registry.Validate("5/DamageRequest", map[string]any{
		"reason":   "screen cracked",
		"severity": "high",
	}))

	err := registry.Validate("5/DamageRequest", map[string]any{"severity": "high"})
	assert.Error(t, err)
}

func TestValidateUnregisteredKeyAccepts(t *testing.T) {
	registry := New()
	assert.NoError(t, registry.Validate("5/RepairRequest", map[string]any{"anything": true}))
}

func TestRegisterRejectsMalformedSchema(t *testing.T) {
	registry := New()
	assert.Error(t, registry.Register("5/DamageRequest", []byte(`{"type": 12}`)))
}
