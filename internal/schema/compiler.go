package schema

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// Built-in schema names
const (
	CreateCase   = "create_case"
	UpdateStatus = "update_status"
	AssignCase   = "assign_case"
	ListCases    = "list_cases"
	SignUpload   = "sign_upload"
	FieldReport  = "field_report"
)

//go:embed schemas/*.json
var builtin embed.FS

type Compiler struct {
	mu       sync.Mutex // js.Compiler is not safe for concurrent use
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
}

// NewCompilerWithCache creates a new compiler with cache
func NewCompilerWithCache(maxSize int) *Compiler {
	c := js.NewCompiler()
	c.Draft = js.Draft2020

	return &Compiler{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
	}
}

// Raw returns the source of a built-in schema
func Raw(name string) ([]byte, error) {
	b, err := builtin.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return b, nil
}

// Named compiles and caches a built-in schema
func (c *Compiler) Named(name string) (*js.Schema, error) {
	key := "builtin:" + name
	if compiled, ok := c.cache.Get(key); ok {
		return compiled, nil
	}
	raw, err := Raw(name)
	if err != nil {
		return nil, err
	}
	return c.compile(key, "mem://schemas/"+name+".json", raw)
}

// Prepare compiles and caches an ad-hoc schema
func (c *Compiler) Prepare(ctx context.Context, schema map[string]interface{}) (*js.Schema, error) {
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	key := string(schemaBytes)
	if compiled, ok := c.cache.Get(key); ok {
		return compiled, nil
	}

	// Use a hash-based URL to avoid URL parsing issues with JSON content
	hash := fmt.Sprintf("%x", sha256.Sum256(schemaBytes))
	return c.compile(key, fmt.Sprintf("mem://schema/%s.json", hash[:16]), schemaBytes)
}

func (c *Compiler) compile(key, resourceURL string, raw []byte) (*js.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if compiled, ok := c.cache.Get(key); ok {
		return compiled, nil
	}
	if err := c.compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	compiled, err := c.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	c.cache.Add(key, compiled)
	return compiled, nil
}

// Validate validates a value against an ad-hoc schema
func (c *Compiler) Validate(ctx context.Context, schema map[string]interface{}, value interface{}) error {
	compiled, err := c.Prepare(ctx, schema)
	if err != nil {
		return err
	}
	return validateValue(compiled, value)
}

// ValidateNamed validates a value against a built-in schema
func (c *Compiler) ValidateNamed(ctx context.Context, name string, value interface{}) error {
	compiled, err := c.Named(name)
	if err != nil {
		return err
	}
	return validateValue(compiled, value)
}

// Decode validates raw JSON against a built-in schema and unmarshals it into out
func (c *Compiler) Decode(ctx context.Context, name string, raw []byte, out interface{}) error {
	compiled, err := c.Named(name)
	if err != nil {
		return err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return nil
}

func validateValue(compiled *js.Schema, value interface{}) error {
	// Round-trip so structs and typed maps validate as plain JSON values
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var valueRaw interface{}
	if err := json.Unmarshal(valueBytes, &valueRaw); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}

	if err := compiled.Validate(valueRaw); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
