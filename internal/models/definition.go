package models

// Field represents one member of a documented struct
type Field struct {
	Name      string  `json:"name"`
	TypeName  string  `json:"type_name"`
	DocString string  `json:"doc_string,omitempty"`
	IsArray   bool    `json:"is_array"`
	Default   *string `json:"default,omitempty"`
	Required  bool    `json:"required"`
}

// HasDefault reports whether the field carries a documented default value.
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// Optional reports whether the field may be absent on the wire. A field with a
// default is present-with-fallback and therefore never optional.
func (f Field) Optional() bool {
	return !f.Required && !f.HasDefault()
}

// Struct represents an ordered collection of fields
type Struct struct {
	Fields []Field `json:"fields"`
}

// Row represents one row of a documentation table. It is one of
// ValueDescription, FormattedExample, Example, Format or JustType.
type Row interface {
	isRow()
}

// ValueDescription is an enum variant row
type ValueDescription struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// FormattedExample describes a typed string with both a format and an example
type FormattedExample struct {
	Type    string `json:"type"`
	Format  string `json:"format"`
	Example string `json:"example"`
}

// Example describes a typed string with an example value
type Example struct {
	Type    string `json:"type"`
	Example string `json:"example"`
}

// Format describes a typed string with a format description
type Format struct {
	Type   string `json:"type"`
	Format string `json:"format"`
}

// JustType describes a plain wrapper of another type
type JustType struct {
	Type string `json:"type"`
}

func (ValueDescription) isRow() {}
func (FormattedExample) isRow() {}
func (Example) isRow()          {}
func (Format) isRow()           {}
func (JustType) isRow()         {}

// RowType returns the wrapped type name of a single-value row, or "" for enum rows.
func RowType(r Row) string {
	switch row := r.(type) {
	case FormattedExample:
		return row.Type
	case Example:
		return row.Type
	case Format:
		return row.Type
	case JustType:
		return row.Type
	default:
		return ""
	}
}

// Value is the body of a Definition: Table, *Struct or Empty.
type Value interface {
	isValue()
}

// Table holds the rows of an enum or typed-string definition
type Table struct {
	Rows []Row `json:"rows"`
}

// Empty marks a definition without a body of its own, usually one that is
// implemented by other definitions.
type Empty struct {
	ImplementedBy []string `json:"implemented_by,omitempty"`
}

func (Table) isValue()   {}
func (*Struct) isValue() {}
func (Empty) isValue()   {}

// IsEnum reports whether every row of the table is a value/description pair.
func (t Table) IsEnum() bool {
	if len(t.Rows) == 0 {
		return false
	}
	for _, r := range t.Rows {
		if _, ok := r.(ValueDescription); !ok {
			return false
		}
	}
	return true
}

// Definition represents one documented type scraped from the API reference
type Definition struct {
	Name      string `json:"name"`
	DocString string `json:"doc_string,omitempty"`
	Value     Value  `json:"value"`
}

// Stream represents a streaming endpoint and the messages it can emit
type Stream struct {
	Name      string   `json:"name"`
	DocString string   `json:"doc_string,omitempty"`
	Messages  []string `json:"messages"`
}

// Schema represents one scraped documentation page
type Schema struct {
	Name        string       `json:"name"`
	Source      string       `json:"source,omitempty"`
	Definitions []Definition `json:"definitions"`
	Streams     []Stream     `json:"streams,omitempty"`
}

// Lookup returns the definition with the given name.
func (s *Schema) Lookup(name string) (Definition, bool) {
	for _, d := range s.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
