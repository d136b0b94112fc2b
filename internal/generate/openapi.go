package generate

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xcono/oanda/internal/models"
)

// ComponentsRef is the reference prefix of OpenAPI component schemas
const ComponentsRef = "#/components/schemas/"

// OpenAPISpec represents an OpenAPI 3.0 specification
type OpenAPISpec struct {
	OpenAPI    string         `yaml:"openapi" json:"openapi"`
	Info       OpenAPIInfo    `yaml:"info" json:"info"`
	Paths      map[string]any `yaml:"paths" json:"paths"`
	Components Components     `yaml:"components" json:"components"`
}

// OpenAPIInfo represents the info section of OpenAPI spec
type OpenAPIInfo struct {
	Title       string `yaml:"title" json:"title"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Components holds the reusable schemas of a spec
type Components struct {
	Schemas map[string]Schema `yaml:"schemas" json:"schemas"`
}

// Schema represents a schema in OpenAPI spec. It stays within the JSON-Schema
// subset gojsonschema understands, so the same value drives validation.
type Schema struct {
	Ref            string            `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Type           string            `yaml:"type,omitempty" json:"type,omitempty"`
	Properties     map[string]Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required       []string          `yaml:"required,omitempty" json:"required,omitempty"`
	Description    string            `yaml:"description,omitempty" json:"description,omitempty"`
	Example        any               `yaml:"example,omitempty" json:"example,omitempty"`
	Default        any               `yaml:"default,omitempty" json:"default,omitempty"`
	Enum           []any             `yaml:"enum,omitempty" json:"enum,omitempty"`
	Items          *Schema           `yaml:"items,omitempty" json:"items,omitempty"`
	AllOf          []Schema          `yaml:"allOf,omitempty" json:"allOf,omitempty"`
	AnyOf          []Schema          `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
	XFormat        string            `yaml:"x-format,omitempty" json:"x-format,omitempty"`
	XImplementedBy []string          `yaml:"x-implemented-by,omitempty" json:"x-implemented-by,omitempty"`
}

// jsonSchemaTypes maps reference primitives to JSON-Schema types
var jsonSchemaTypes = map[string]string{
	"string":  "string",
	"integer": "integer",
	"boolean": "boolean",
	"float":   "number",
	"number":  "number",
	"object":  "object",
}

// SchemaGenerator generates JSON-Schema components from scraped definitions
type SchemaGenerator struct {
	refPrefix string
}

// NewSchemaGenerator creates a generator referencing OpenAPI components
func NewSchemaGenerator() *SchemaGenerator {
	return NewSchemaGeneratorWithPrefix(ComponentsRef)
}

// NewSchemaGeneratorWithPrefix creates a generator whose $refs use prefix,
// e.g. "#/definitions/" for a plain JSON-Schema document.
func NewSchemaGeneratorWithPrefix(prefix string) *SchemaGenerator {
	return &SchemaGenerator{refPrefix: prefix}
}

// GenerateSpec generates an OpenAPI 3.0 document carrying the page's definitions as components
func (g *SchemaGenerator) GenerateSpec(schema *models.Schema) (*OpenAPISpec, error) {
	if schema == nil {
		return nil, fmt.Errorf("invalid schema: nil")
	}

	schemas, err := g.Definitions(schema)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Definitions scraped from %s", schema.Name)
	if schema.Source != "" {
		description = fmt.Sprintf("Definitions scraped from %s (%s)", schema.Name, schema.Source)
	}

	return &OpenAPISpec{
		OpenAPI: "3.0.0",
		Info: OpenAPIInfo{
			Title:       fmt.Sprintf("OANDA v20 %s", schema.Name),
			Version:     "1.0.0",
			Description: description,
		},
		Paths:      make(map[string]any),
		Components: Components{Schemas: schemas},
	}, nil
}

// Definitions converts every definition and stream of a page into a named schema
func (g *SchemaGenerator) Definitions(schema *models.Schema) (map[string]Schema, error) {
	schemas := make(map[string]Schema, len(schema.Definitions)+len(schema.Streams))

	for _, d := range schema.Definitions {
		s, err := g.definitionSchema(d)
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for %s: %w", d.Name, err)
		}
		schemas[d.Name] = s
	}

	for _, s := range schema.Streams {
		stream := Schema{Description: s.DocString}
		for _, m := range s.Messages {
			stream.AnyOf = append(stream.AnyOf, g.ref(m))
		}
		schemas[ExportedName(s.Name)+"Message"] = stream
	}

	return schemas, nil
}

func (g *SchemaGenerator) definitionSchema(d models.Definition) (Schema, error) {
	switch v := d.Value.(type) {
	case *models.Struct:
		return g.structSchema(d.DocString, v), nil
	case models.Table:
		if v.IsEnum() {
			enum := make([]any, 0, len(v.Rows))
			for _, row := range v.Rows {
				enum = append(enum, row.(models.ValueDescription).Value)
			}
			return Schema{Type: "string", Enum: enum, Description: d.DocString}, nil
		}
		if len(v.Rows) != 1 {
			return Schema{}, fmt.Errorf("expected one row in typed table, got %d", len(v.Rows))
		}
		return g.typedSchema(d.DocString, v.Rows[0]), nil
	case models.Empty:
		s := Schema{Description: d.DocString, XImplementedBy: v.ImplementedBy}
		for _, name := range v.ImplementedBy {
			s.AnyOf = append(s.AnyOf, g.ref(name))
		}
		return s, nil
	default:
		return Schema{}, fmt.Errorf("unsupported definition value %T", d.Value)
	}
}

func (g *SchemaGenerator) structSchema(doc string, st *models.Struct) Schema {
	s := Schema{
		Type:        "object",
		Description: doc,
		Properties:  make(map[string]Schema, len(st.Fields)),
	}

	for _, f := range st.Fields {
		prop := g.typeSchema(f.TypeName)
		if f.IsArray {
			prop = Schema{Type: "array", Items: &prop}
		}
		if prop.Ref == "" {
			prop.Description = f.DocString
			if f.HasDefault() {
				prop.Default = *f.Default
			}
		}
		s.Properties[f.Name] = prop

		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}

	return s
}

func (g *SchemaGenerator) typedSchema(doc string, row models.Row) Schema {
	var s Schema
	typeName := models.RowType(row)
	if t, ok := jsonSchemaTypes[typeName]; ok {
		s.Type = t
	} else {
		s.AllOf = []Schema{g.ref(typeName)}
	}
	s.Description = doc

	switch r := row.(type) {
	case models.FormattedExample:
		s.XFormat = r.Format
		s.Example = r.Example
	case models.Format:
		s.XFormat = r.Format
	case models.Example:
		s.Example = r.Example
	}

	return s
}

func (g *SchemaGenerator) typeSchema(typeName string) Schema {
	if t, ok := jsonSchemaTypes[typeName]; ok {
		return Schema{Type: t}
	}
	return g.ref(typeName)
}

func (g *SchemaGenerator) ref(name string) Schema {
	return Schema{Ref: g.refPrefix + name}
}

// Bundle merges several specs into one document. Component names are unique
// across the reference, so on a clash the first spec wins.
func Bundle(title, description string, specs ...*OpenAPISpec) (*OpenAPISpec, []string) {
	bundled := &OpenAPISpec{
		OpenAPI: "3.0.0",
		Info: OpenAPIInfo{
			Title:       title,
			Version:     "1.0.0",
			Description: description,
		},
		Paths:      make(map[string]any),
		Components: Components{Schemas: make(map[string]Schema)},
	}

	var duplicates []string
	for _, spec := range specs {
		if spec == nil {
			continue
		}
		for path, item := range spec.Paths {
			if _, exists := bundled.Paths[path]; !exists {
				bundled.Paths[path] = item
			}
		}
		for name, s := range spec.Components.Schemas {
			if _, exists := bundled.Components.Schemas[name]; exists {
				duplicates = append(duplicates, name)
				continue
			}
			bundled.Components.Schemas[name] = s
		}
	}

	sort.Strings(duplicates)
	return bundled, duplicates
}

// ToYAML converts the OpenAPI spec to YAML format
func (spec *OpenAPISpec) ToYAML() ([]byte, error) {
	return yaml.Marshal(spec)
}

// ToJSON converts the OpenAPI spec to JSON format
func (spec *OpenAPISpec) ToJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(spec, "", "  ")
}

// FromYAML parses a spec previously written with ToYAML
func FromYAML(data []byte) (*OpenAPISpec, error) {
	var spec OpenAPISpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}
	return &spec, nil
}
