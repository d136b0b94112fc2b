package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/xcono/oanda/internal/models"
)

// ErrUnknownTableShape is returned for tables matching none of the configured shapes
var ErrUnknownTableShape = errors.New("unknown table shape")

// parseTable converts a documentation table into rows.
//
// Three shapes are recognised: value/description enum tables, rotated tables
// with keys down the first column, and column tables with keys in the header.
func (p *Parser) parseTable(table *goquery.Selection) (models.Table, error) {
	rows := tableCells(table)
	if len(rows) == 0 {
		return models.Table{}, fmt.Errorf("failed to parse table: %w", ErrUnknownTableShape)
	}

	header := rows[0]
	shapes := p.options.Shapes

	switch {
	case matchHeader(header, shapes.EnumHeaders):
		return enumTable(rows[1:]), nil
	case p.isRotated(header):
		kv := make(map[string]string, len(rows))
		for _, row := range rows {
			if len(row) < 2 {
				continue
			}
			kv[strings.ToLower(row[0])] = row[1]
		}
		return p.typedTable(kv)
	case len(rows) > 1 && lo.ContainsBy(header, func(h string) bool {
		return strings.EqualFold(h, shapes.TypeKey)
	}):
		kv := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(rows[1]) {
				kv[strings.ToLower(key)] = rows[1][i]
			}
		}
		return p.typedTable(kv)
	}

	return models.Table{}, fmt.Errorf("failed to parse table with header %q: %w", header, ErrUnknownTableShape)
}

// isRotated reports whether the first row is a key/value pair whose key is one
// of the configured rotated keys, e.g. | Type | string |. A two-column header
// such as | Type | Format | is a column table, not a rotated one.
func (p *Parser) isRotated(header []string) bool {
	if len(header) != 2 || p.isKey(header[1]) {
		return false
	}
	return lo.ContainsBy(p.options.Shapes.RotatedKeys, func(k string) bool {
		return strings.EqualFold(k, header[0])
	})
}

func (p *Parser) isKey(s string) bool {
	shapes := p.options.Shapes
	return lo.ContainsBy([]string{shapes.TypeKey, shapes.FormatKey, shapes.ExampleKey}, func(k string) bool {
		return strings.EqualFold(k, s)
	})
}

// typedTable folds the keys of a typed-string table into its single row.
func (p *Parser) typedTable(kv map[string]string) (models.Table, error) {
	shapes := p.options.Shapes

	typ := kv[strings.ToLower(shapes.TypeKey)]
	if typ == "" {
		return models.Table{}, fmt.Errorf("failed to parse table: %w: missing %s", ErrUnknownTableShape, shapes.TypeKey)
	}
	format := kv[strings.ToLower(shapes.FormatKey)]
	example := kv[strings.ToLower(shapes.ExampleKey)]

	var row models.Row
	switch {
	case format != "" && example != "":
		row = models.FormattedExample{Type: typ, Format: format, Example: example}
	case example != "":
		row = models.Example{Type: typ, Example: example}
	case format != "":
		row = models.Format{Type: typ, Format: format}
	default:
		row = models.JustType{Type: typ}
	}

	return models.Table{Rows: []models.Row{row}}, nil
}

func enumTable(rows [][]string) models.Table {
	table := models.Table{Rows: []models.Row{}}
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		vd := models.ValueDescription{Value: row[0]}
		if len(row) > 1 {
			vd.Description = row[1]
		}
		table.Rows = append(table.Rows, vd)
	}
	return table
}

// tableCells returns the cleaned text of every th/td cell, row by row.
func tableCells(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cleanText(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func matchHeader(header, want []string) bool {
	if len(header) != len(want) {
		return false
	}
	for i := range header {
		if !strings.EqualFold(header[i], want[i]) {
			return false
		}
	}
	return true
}
