package validate

import (
	"fmt"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"

	"github.com/xcono/oanda/internal/generate"
	"github.com/xcono/oanda/internal/models"
)

// definitionsRef is where generated definitions live in the root document
const definitionsRef = "#/definitions/"

// SchemaValidator validates JSON data against JSON schemas. Definitions added
// with AddDefinitions or AddPage are compiled on first use.
type SchemaValidator struct {
	mu          sync.Mutex
	schemas     map[string]*gojsonschema.Schema
	definitions map[string]generate.Schema
	generator   *generate.SchemaGenerator
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{
		schemas:     make(map[string]*gojsonschema.Schema),
		definitions: make(map[string]generate.Schema),
		generator:   generate.NewSchemaGeneratorWithPrefix(definitionsRef),
	}
}

// AddSchema adds a JSON schema to the validator
func (v *SchemaValidator) AddSchema(name string, schemaData interface{}) error {
	var loader gojsonschema.JSONLoader

	switch data := schemaData.(type) {
	case string:
		loader = gojsonschema.NewStringLoader(data)
	case []byte:
		loader = gojsonschema.NewBytesLoader(data)
	case map[string]interface{}:
		loader = gojsonschema.NewGoLoader(data)
	default:
		return fmt.Errorf("unsupported schema data type: %T", schemaData)
	}

	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas[name] = schema
	return nil
}

// AddDefinitions registers generated definition schemas. Their $refs must use
// the "#/definitions/" prefix.
func (v *SchemaValidator) AddDefinitions(definitions map[string]generate.Schema) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for name, s := range definitions {
		v.definitions[name] = s
	}
	// compiled definitions embed the previous definition set
	for name := range v.schemas {
		if _, generated := v.definitions[name]; generated {
			delete(v.schemas, name)
		}
	}
}

// AddPage generates and registers the definitions of a scraped page
func (v *SchemaValidator) AddPage(schema *models.Schema) error {
	definitions, err := v.generator.Definitions(schema)
	if err != nil {
		return fmt.Errorf("failed to generate definitions for %s: %w", schema.Name, err)
	}
	v.AddDefinitions(definitions)
	return nil
}

// Validate validates JSON data against a named schema or definition
func (v *SchemaValidator) Validate(schemaName string, data interface{}) (*ValidationResult, error) {
	schema, err := v.lookup(schemaName)
	if err != nil {
		return nil, err
	}

	var loader gojsonschema.JSONLoader
	switch d := data.(type) {
	case string:
		loader = gojsonschema.NewStringLoader(d)
	case []byte:
		loader = gojsonschema.NewBytesLoader(d)
	case map[string]interface{}:
		loader = gojsonschema.NewGoLoader(d)
	default:
		// Try to marshal to JSON first
		jsonData, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data to JSON: %w", err)
		}
		loader = gojsonschema.NewBytesLoader(jsonData)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: v.convertErrors(result.Errors()),
	}, nil
}

func (v *SchemaValidator) lookup(name string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, exists := v.schemas[name]; exists {
		return schema, nil
	}
	if _, exists := v.definitions[name]; !exists {
		return nil, fmt.Errorf("schema %s not found", name)
	}

	// the root document carries the definitions reachable from name, so a
	// dangling reference elsewhere does not break unrelated validations
	reachable := make(map[string]generate.Schema)
	v.collect(name, reachable)

	root := map[string]interface{}{
		"definitions": reachable,
		"allOf": []interface{}{
			map[string]interface{}{"$ref": definitionsRef + name},
		},
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(root))
	if err != nil {
		return nil, fmt.Errorf("failed to compile definition %s: %w", name, err)
	}

	v.schemas[name] = schema
	return schema, nil
}

// collect adds name and every definition it references to into
func (v *SchemaValidator) collect(name string, into map[string]generate.Schema) {
	if _, seen := into[name]; seen {
		return
	}
	s, ok := v.definitions[name]
	if !ok {
		return
	}
	into[name] = s
	for _, ref := range refs(s) {
		v.collect(ref, into)
	}
}

func refs(s generate.Schema) []string {
	var names []string
	if strings.HasPrefix(s.Ref, definitionsRef) {
		names = append(names, strings.TrimPrefix(s.Ref, definitionsRef))
	}
	for _, p := range s.Properties {
		names = append(names, refs(p)...)
	}
	if s.Items != nil {
		names = append(names, refs(*s.Items)...)
	}
	for _, sub := range s.AllOf {
		names = append(names, refs(sub)...)
	}
	for _, sub := range s.AnyOf {
		names = append(names, refs(sub)...)
	}
	return names
}

// ValidationResult represents the result of a validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Value       string `json:"value,omitempty"`
}

// convertErrors converts gojsonschema errors to our error format
func (v *SchemaValidator) convertErrors(errors []gojsonschema.ResultError) []ValidationError {
	var validationErrors []ValidationError

	for _, err := range errors {
		validationError := ValidationError{
			Field:       err.Field(),
			Type:        err.Type(),
			Description: err.Description(),
		}

		if err.Value() != nil {
			validationError.Value = fmt.Sprintf("%v", err.Value())
		}

		validationErrors = append(validationErrors, validationError)
	}

	return validationErrors
}
