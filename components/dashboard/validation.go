package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// PayloadValidator validates action payloads against their schema.
type PayloadValidator interface {
	Validate(def ActionDefinition, payload map[string]any) error
}

// JSONSchemaValidator compiles action schemas and validates payload maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the payload satisfies the action schema. Failures wrap
// ErrValidation.
func (v *JSONSchemaValidator) Validate(def ActionDefinition, payload map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	// round-trip through JSON so typed Go values match the schema's JSON types
	normalized := map[string]any{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: marshal payload for %s: %v", ErrValidation, def.Code, err)
		}
		if err := json.Unmarshal(data, &normalized); err != nil {
			return fmt.Errorf("%w: normalize payload for %s: %v", ErrValidation, def.Code, err)
		}
	}
	if err := schema.Validate(normalized); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &PayloadError{Action: def.Code, Fields: fieldErrors(verr)}
		}
		return fmt.Errorf("%w: payload for %s: %v", ErrValidation, def.Code, err)
	}
	return nil
}

// CoercePayload converts flag-style string values into the JSON types the
// action schema declares for each property. Fields the schema does not type,
// or values that do not parse, stay strings so validation reports them.
func (def ActionDefinition) CoercePayload(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	props, _ := def.Schema["properties"].(map[string]any)
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[key] = value
		prop, _ := props[key].(map[string]any)
		kind, _ := prop["type"].(string)
		switch kind {
		case "integer":
			if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				out[key] = i
			}
		case "number":
			if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				out[key] = f
			}
		case "boolean":
			if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
				out[key] = b
			}
		}
	}
	return out
}

// FieldError names one payload location that failed its schema.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PayloadError lists every failing field of an action payload. It matches
// ErrValidation under errors.Is.
type PayloadError struct {
	Action string
	Fields []FieldError
}

func (e *PayloadError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: payload for %s: %s", ErrValidation, e.Action, strings.Join(parts, "; "))
}

func (e *PayloadError) Unwrap() error { return ErrValidation }

// fieldErrors flattens the leaf causes of a schema failure. The payload root
// is reported as "payload".
func fieldErrors(verr *jsonschema.ValidationError) []FieldError {
	var out []FieldError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				field = "payload"
			}
			out = append(out, FieldError{Field: strings.ReplaceAll(field, "/", "."), Message: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func (v *JSONSchemaValidator) schemaFor(def ActionDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", def.Code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", def.Code, err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}
