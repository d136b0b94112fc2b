package parse

// Selectors are the CSS selectors used to locate documentation sections
type Selectors struct {
	Title         string `yaml:"title"`
	Definition    string `yaml:"definition"`
	Header        string `yaml:"header"`
	Doc           string `yaml:"doc"`
	Body          string `yaml:"body"`
	Table         string `yaml:"table"`
	ImplementedBy string `yaml:"implemented_by"`
	Stream        string `yaml:"stream"`
	StreamMessage string `yaml:"stream_message"`
}

// TableShapes configures how documentation tables are recognised. The
// reference changes table layouts without notice, so none of this is
// hard-coded.
type TableShapes struct {
	// EnumHeaders is the header row of a value/description (enum) table.
	EnumHeaders []string `yaml:"enum_headers"`
	// RotatedKeys are first-cell values that mark a table whose keys run down
	// the first column instead of across the header row, e.g. | Type | string |.
	RotatedKeys []string `yaml:"rotated_keys"`
	// TypeKey, FormatKey and ExampleKey name the keys of a typed-string table.
	TypeKey    string `yaml:"type_key"`
	FormatKey  string `yaml:"format_key"`
	ExampleKey string `yaml:"example_key"`
}

// Options configures a Parser
type Options struct {
	Selectors Selectors   `yaml:"selectors"`
	Shapes    TableShapes `yaml:"table_shapes"`
	// Strict makes a single malformed definition fail the whole page.
	Strict bool `yaml:"strict"`
}

// DefaultSelectors returns the selectors matching the v20 reference pages
func DefaultSelectors() Selectors {
	return Selectors{
		Title:         "h1",
		Definition:    "div.definition_container",
		Header:        ".definition_header",
		Doc:           "p",
		Body:          "pre",
		Table:         "table",
		ImplementedBy: "p.implemented_by",
		Stream:        "div.stream_container",
		StreamMessage: "li code",
	}
}

// DefaultTableShapes returns the table shapes used by the v20 reference
func DefaultTableShapes() TableShapes {
	return TableShapes{
		EnumHeaders: []string{"Value", "Description"},
		RotatedKeys: []string{"Type"},
		TypeKey:     "Type",
		FormatKey:   "Format",
		ExampleKey:  "Example",
	}
}

// DefaultOptions returns lenient options with the default selectors and shapes
func DefaultOptions() Options {
	return Options{
		Selectors: DefaultSelectors(),
		Shapes:    DefaultTableShapes(),
	}
}

// withDefaults fills every empty selector and shape from the defaults.
func (o Options) withDefaults() Options {
	ds := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&o.Selectors.Title, ds.Title)
	fill(&o.Selectors.Definition, ds.Definition)
	fill(&o.Selectors.Header, ds.Header)
	fill(&o.Selectors.Doc, ds.Doc)
	fill(&o.Selectors.Body, ds.Body)
	fill(&o.Selectors.Table, ds.Table)
	fill(&o.Selectors.ImplementedBy, ds.ImplementedBy)
	fill(&o.Selectors.Stream, ds.Stream)
	fill(&o.Selectors.StreamMessage, ds.StreamMessage)

	dt := DefaultTableShapes()
	if len(o.Shapes.EnumHeaders) == 0 {
		o.Shapes.EnumHeaders = dt.EnumHeaders
	}
	if len(o.Shapes.RotatedKeys) == 0 {
		o.Shapes.RotatedKeys = dt.RotatedKeys
	}
	fill(&o.Shapes.TypeKey, dt.TypeKey)
	fill(&o.Shapes.FormatKey, dt.FormatKey)
	fill(&o.Shapes.ExampleKey, dt.ExampleKey)

	return o
}
