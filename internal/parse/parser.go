package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/xcono/oanda/internal/models"
	"github.com/xcono/oanda/internal/pseudojson"
)

// ErrNoDefinitions is returned for pages without any definition or stream
// section, such as index pages.
var ErrNoDefinitions = errors.New("no definitions found")

// Kind classifies a documentation section by the body it carries
type Kind int

const (
	KindEmpty Kind = iota
	KindTable
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindStruct:
		return "struct"
	default:
		return "empty"
	}
}

// DefinitionError is a failure confined to one definition of a page
type DefinitionError struct {
	Name string
	Err  error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition %s: %v", e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Parser handles HTML parsing and definition extraction
type Parser struct {
	options Options
	body    *pseudojson.Parser
}

// NewParser creates a new parser instance with the default options
func NewParser() *Parser {
	return NewParserWithOptions(DefaultOptions())
}

// NewParserWithOptions creates a parser using the given selectors and table shapes
func NewParserWithOptions(options Options) *Parser {
	return &Parser{
		options: options.withDefaults(),
		body:    pseudojson.NewParser(),
	}
}

// LoadDocument parses an HTML page into a document for the Extract methods
func LoadDocument(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseHTML parses a documentation page into a schema.
//
// Failures confined to a single definition do not fail the page in lenient
// mode: the definition is left out and the returned error, alongside a
// non-nil schema, combines one *DefinitionError per skipped definition. In
// strict mode the first such failure fails the page.
func (p *Parser) ParseHTML(htmlContent string) (*models.Schema, error) {
	doc, err := LoadDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	schema := &models.Schema{
		Name: p.ExtractTitle(doc),
	}

	definitions, skipped := p.ExtractDefinitions(doc)
	if p.options.Strict && len(skipped) > 0 {
		return nil, fmt.Errorf("failed to extract definitions: %w", skipped[0])
	}
	schema.Definitions = definitions
	schema.Streams = p.ExtractStreams(doc)

	if len(schema.Definitions) == 0 && len(schema.Streams) == 0 && len(skipped) == 0 {
		return nil, ErrNoDefinitions
	}

	var combined error
	for _, s := range skipped {
		combined = multierr.Append(combined, s)
	}
	return schema, combined
}

// ExtractTitle extracts the page title
func (p *Parser) ExtractTitle(doc *goquery.Document) string {
	title := doc.Find(p.options.Selectors.Title).First()
	if title.Length() == 0 {
		return ""
	}
	return cleanText(title.Text())
}

// ExtractDefinitionBodies returns the raw pseudo-JSON text of every struct
// definition on the page, in document order.
func (p *Parser) ExtractDefinitionBodies(doc *goquery.Document) []string {
	var bodies []string
	p.containers(doc).Each(func(_ int, s *goquery.Selection) {
		if p.Classify(s) != KindStruct {
			return
		}
		bodies = append(bodies, p.structBody(s))
	})
	return bodies
}

// ExtractDefinitions extracts every definition on the page in document order.
// Definitions that fail to parse are reported separately and left out.
func (p *Parser) ExtractDefinitions(doc *goquery.Document) ([]models.Definition, []*DefinitionError) {
	var (
		definitions []models.Definition
		skipped     []*DefinitionError
	)

	p.containers(doc).Each(func(i int, s *goquery.Selection) {
		name := p.definitionName(s)
		if name == "" {
			skipped = append(skipped, &DefinitionError{
				Name: fmt.Sprintf("#%d", i),
				Err:  errors.New("definition header not found"),
			})
			return
		}

		definition := models.Definition{
			Name:      name,
			DocString: p.docString(s),
		}

		switch p.Classify(s) {
		case KindTable:
			table, err := p.parseTable(s.Find(p.options.Selectors.Table).First())
			if err != nil {
				skipped = append(skipped, &DefinitionError{Name: name, Err: err})
				return
			}
			definition.Value = table
		case KindStruct:
			st, err := p.body.Parse(p.structBody(s))
			if err != nil {
				skipped = append(skipped, &DefinitionError{Name: name, Err: err})
				return
			}
			definition.Value = &st
		default:
			definition.Value = models.Empty{ImplementedBy: p.implementedBy(s)}
		}

		definitions = append(definitions, definition)
	})

	return definitions, skipped
}

// ExtractStreams extracts streaming endpoint sections
func (p *Parser) ExtractStreams(doc *goquery.Document) []models.Stream {
	var streams []models.Stream

	doc.Find(p.options.Selectors.Stream).Each(func(_ int, s *goquery.Selection) {
		name := cleanText(s.Find(p.options.Selectors.Header).First().Text())
		if name == "" {
			return
		}

		var messages []string
		s.Find(p.options.Selectors.StreamMessage).Each(func(_ int, m *goquery.Selection) {
			if text := cleanText(m.Text()); text != "" {
				messages = append(messages, text)
			}
		})

		streams = append(streams, models.Stream{
			Name:      name,
			DocString: p.docString(s),
			Messages:  lo.Uniq(messages),
		})
	})

	return streams
}

// Classify decides what kind of body a definition section carries
func (p *Parser) Classify(s *goquery.Selection) Kind {
	switch {
	case s.Find(p.options.Selectors.Table).Length() > 0:
		return KindTable
	case s.Find(p.options.Selectors.Body).Length() > 0:
		return KindStruct
	default:
		return KindEmpty
	}
}

func (p *Parser) containers(doc *goquery.Document) *goquery.Selection {
	return doc.Find(p.options.Selectors.Definition)
}

func (p *Parser) definitionName(s *goquery.Selection) string {
	header := s.Find(p.options.Selectors.Header).First()
	if header.Length() > 0 {
		if name := cleanText(header.Text()); name != "" {
			return name
		}
	}
	id, _ := s.Attr("id")
	return strings.TrimSpace(id)
}

func (p *Parser) docString(s *goquery.Selection) string {
	var parts []string
	s.Find(p.options.Selectors.Doc).Each(func(_ int, d *goquery.Selection) {
		if d.Is(p.options.Selectors.ImplementedBy) {
			return
		}
		if text := cleanText(d.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func (p *Parser) structBody(s *goquery.Selection) string {
	pre := s.Find(p.options.Selectors.Body).First()
	// keep line breaks: doc comments end at the newline
	return strings.TrimSpace(pre.Text())
}

func (p *Parser) implementedBy(s *goquery.Selection) []string {
	var names []string
	s.Find(p.options.Selectors.ImplementedBy).Find("a, code").Each(func(_ int, a *goquery.Selection) {
		if name := cleanText(a.Text()); name != "" {
			names = append(names, name)
		}
	})
	return lo.Uniq(names)
}

// cleanText removes unwanted whitespace and newlines from text content
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
