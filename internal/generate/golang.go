package generate

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/xcono/oanda/internal/models"
)

// primitiveTypes maps the primitive names used by the reference to Go types
var primitiveTypes = map[string]string{
	"string":  "string",
	"integer": "int64",
	"boolean": "bool",
	"float":   "float64",
	"number":  "float64",
	"object":  "map[string]any",
}

func isPrimitive(name string) bool {
	_, ok := primitiveTypes[name]
	return ok
}

const commentWidth = 76

const goTemplate = `// Code generated by oanda-docgen from {{printf "%q" .Source}}. DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}
{{range $d := .Decls}}
{{range $d.Doc}}{{.}}
{{end}}{{if eq $d.Kind "struct"}}type {{$d.Name}} struct {
{{range $d.Fields}}{{range .Doc}}	{{.}}
{{end}}	{{.Name}} {{.Type}} {{.Tag}}
{{end}}}
{{else if eq $d.Kind "enum"}}type {{$d.Name}} string

const (
{{range $d.Consts}}{{range .Doc}}	{{.}}
{{end}}	{{.Name}} {{$d.Name}} = {{.Value}}
{{end}})
{{else if eq $d.Kind "alias"}}type {{$d.Name}} = {{$d.Underlying}}
{{else if eq $d.Kind "stream"}}type {{$d.Name}} interface {
	is{{$d.Name}}()
}
{{range $d.Members}}
func ({{.}}) is{{$d.Name}}() {}
{{end}}{{else}}type {{$d.Name}} {{$d.Underlying}}
{{end}}{{end}}`

var goFileTemplate = template.Must(template.New("golang").Parse(goTemplate))

type goFile struct {
	Package string
	Source  string
	Imports []string
	Decls   []goDecl
}

type goDecl struct {
	Doc        []string
	Kind       string
	Name       string
	Underlying string
	Fields     []goField
	Consts     []goConst
	Members    []string
}

type goField struct {
	Doc  []string
	Name string
	Type string
	Tag  string
}

type goConst struct {
	Doc   []string
	Name  string
	Value string
}

// GoGenerator emits Go data-transfer types for scraped definitions
type GoGenerator struct {
	pkg string
}

// NewGoGenerator creates a generator emitting into the given package
func NewGoGenerator(pkg string) *GoGenerator {
	if pkg == "" {
		pkg = "v20"
	}
	return &GoGenerator{pkg: pkg}
}

// Generate renders one gofmt'ed Go file for a schema. Cross-page references
// are resolved through reg; a nil registry only knows the schema itself.
func (g *GoGenerator) Generate(schema *models.Schema, reg *Registry) ([]byte, error) {
	if schema == nil {
		return nil, fmt.Errorf("invalid schema: nil")
	}
	if reg == nil {
		reg = NewRegistry()
		if err := reg.Register(schema); err != nil {
			return nil, fmt.Errorf("failed to register schema: %w", err)
		}
	}

	source := schema.Source
	if source == "" {
		source = schema.Name
	}
	file := goFile{
		Package: g.pkg,
		Source:  source,
	}

	for _, d := range schema.Definitions {
		decl, err := g.declaration(d, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", d.Name, err)
		}
		if decl.Underlying == "json.RawMessage" {
			file.Imports = []string{"encoding/json"}
		}
		file.Decls = append(file.Decls, decl)
	}

	for _, s := range schema.Streams {
		file.Decls = append(file.Decls, g.stream(s, reg))
	}

	var buf bytes.Buffer
	if err := goFileTemplate.Execute(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code: %w\nsource:\n%s", err, buf.Bytes())
	}
	return formatted, nil
}

func (g *GoGenerator) declaration(d models.Definition, reg *Registry) (goDecl, error) {
	name := ExportedName(d.Name)
	if name == "" {
		return goDecl{}, fmt.Errorf("definition name %q is not a valid identifier", d.Name)
	}

	switch v := d.Value.(type) {
	case *models.Struct:
		decl := goDecl{Kind: "struct", Name: name, Doc: typeDoc(name, d.DocString)}
		for _, f := range v.Fields {
			decl.Fields = append(decl.Fields, g.field(f, reg))
		}
		return decl, nil
	case models.Table:
		if v.IsEnum() {
			return g.enum(name, d.DocString, v)
		}
		if len(v.Rows) != 1 {
			return goDecl{}, fmt.Errorf("expected one row in typed table, got %d", len(v.Rows))
		}
		return g.newtype(name, d.DocString, v.Rows[0]), nil
	case models.Empty:
		doc := typeDoc(name, d.DocString)
		if len(v.ImplementedBy) > 0 {
			if len(doc) > 0 {
				doc = append(doc, "//")
			}
			doc = append(doc, comment("Implemented by: "+strings.Join(v.ImplementedBy, ", ")+".")...)
		}
		return goDecl{Kind: "alias", Name: name, Underlying: "json.RawMessage", Doc: doc}, nil
	default:
		return goDecl{}, fmt.Errorf("unsupported definition value %T", d.Value)
	}
}

// field picks the wrapper shape: T when required or defaulted, *T when
// optional, and []T for arrays (omitted when empty unless required).
func (g *GoGenerator) field(f models.Field, reg *Registry) goField {
	base := goType(f.TypeName)
	typ := base
	optional := f.Optional()

	switch {
	case f.IsArray:
		typ = "[]" + base
	case optional && !nilable(f.TypeName, reg):
		typ = "*" + base
	}

	tag := f.Name
	if optional {
		tag += ",omitempty"
	}
	tags := []string{"json:" + strconv.Quote(tag)}
	if f.HasDefault() {
		tags = append(tags, "default:"+strconv.Quote(*f.Default))
	}

	return goField{
		Doc:  comment(f.DocString),
		Name: ExportedName(f.Name),
		Type: typ,
		Tag:  tagLiteral(strings.Join(tags, " ")),
	}
}

// enum fails when two distinct values map to the same constant name, e.g.
// "A-B" and "A_B"; a repeated value is emitted once.
func (g *GoGenerator) enum(name, doc string, table models.Table) (goDecl, error) {
	decl := goDecl{Kind: "enum", Name: name, Doc: typeDoc(name, doc)}
	seen := make(map[string]string)
	for _, row := range table.Rows {
		vd := row.(models.ValueDescription)
		constant := constName(name, vd.Value)
		if prev, ok := seen[constant]; ok {
			if prev == vd.Value {
				continue
			}
			return goDecl{}, fmt.Errorf("enum values %q and %q both map to constant %s", prev, vd.Value, constant)
		}
		seen[constant] = vd.Value
		decl.Consts = append(decl.Consts, goConst{
			Doc:   comment(vd.Description),
			Name:  constant,
			Value: strconv.Quote(vd.Value),
		})
	}
	return decl, nil
}

func (g *GoGenerator) newtype(name, doc string, row models.Row) goDecl {
	lines := typeDoc(name, doc)
	var extra []string
	switch r := row.(type) {
	case models.FormattedExample:
		extra = append(extra, comment("Format: "+r.Format)...)
		extra = append(extra, comment("Example: "+r.Example)...)
	case models.Format:
		extra = append(extra, comment("Format: "+r.Format)...)
	case models.Example:
		extra = append(extra, comment("Example: "+r.Example)...)
	}
	if len(extra) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "//")
		}
		lines = append(lines, extra...)
	}

	return goDecl{Kind: "newtype", Name: name, Underlying: goType(models.RowType(row)), Doc: lines}
}

// stream declares a sealed interface over the message types a stream emits.
// Only struct messages get the marker method: aliases cannot carry methods.
func (g *GoGenerator) stream(s models.Stream, reg *Registry) goDecl {
	name := ExportedName(s.Name) + "Message"
	members := lo.FilterMap(s.Messages, func(m string, _ int) (string, bool) {
		e, ok := reg.Lookup(m)
		if !ok {
			return "", false
		}
		_, isStruct := e.Definition.Value.(*models.Struct)
		return ExportedName(m), isStruct
	})

	doc := comment(fmt.Sprintf("%s is a message emitted by %s: one of %s.", name, s.Name, strings.Join(s.Messages, ", ")))
	if s.DocString != "" {
		doc = append(doc, "//")
		doc = append(doc, comment(s.DocString)...)
	}

	return goDecl{Kind: "stream", Name: name, Doc: doc, Members: lo.Uniq(members)}
}

func goType(name string) string {
	if t, ok := primitiveTypes[name]; ok {
		return t
	}
	return ExportedName(name)
}

// nilable reports whether the Go type of name already has a nil value, so
// an optional field needs no extra pointer.
func nilable(name string, reg *Registry) bool {
	if name == "object" {
		return true
	}
	e, ok := reg.Lookup(name)
	if !ok {
		return false
	}
	_, empty := e.Definition.Value.(models.Empty)
	return empty
}

func tagLiteral(tag string) string {
	if strings.Contains(tag, "`") {
		return strconv.Quote(tag)
	}
	return "`" + tag + "`"
}

// typeDoc starts a type's doc comment with its name.
func typeDoc(name, doc string) []string {
	if doc == "" {
		return nil
	}
	for _, article := range []string{"The ", "A ", "An "} {
		if strings.HasPrefix(doc, article) {
			return comment(name + " is " + lowerFirst(doc))
		}
	}
	return comment(name + ": " + doc)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// comment wraps text into // lines.
func comment(text string) []string {
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > commentWidth {
			lines = append(lines, "// "+line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, "// "+line.String())
	}
	return lines
}
