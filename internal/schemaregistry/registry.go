package schemaregistry

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Registry holds compiled JSON schemas for approval-note payloads, keyed by
// "<category id>/<action>". Keys without a registered schema validate freely;
// field-shape enforcement is opt-in per key.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

func New() *Registry {
	return &Registry{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles and stores a schema for the given key, replacing any
// previous one.
func (r *Registry) Register(key string, schemaJSON []byte) error {
	compiler := jsonschema.NewCompiler()
	url := key + ".schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("adding schema for %q: %w", key, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("compiling schema for %q: %w", key, err)
	}
	r.mu.Lock()
	r.schemas[key] = schema
	r.mu.Unlock()
	return nil
}

// Validate checks a payload against the schema registered for key, if any.
func (r *Registry) Validate(key string, payload map[string]any) error {
	r.mu.RLock()
	schema := r.schemas[key]
	r.mu.RUnlock()
	if schema == nil {
		return nil
	}
	return schema.Validate(map[string]interface{}(payload))
}
