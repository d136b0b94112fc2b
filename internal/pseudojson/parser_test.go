package pseudojson

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcono/oanda/internal/models"
)

func strPtr(s string) *string {
	return &s
}

const orderBookBody = `{
    #
    # The lowest price (inclusive) covered by the bucket. The bucket covers the
    # price range from the price to price + the order book’s bucketWidth.
    #
    price : (PriceValue),

    #
    # The partitioned order book, divided into buckets using a default bucket
    # width. These buckets are only provided for price ranges which actually
    # contain order or position data.
    #
    buckets : (Array[OrderBookBucket]),

    #
    # The number of units available (deprecated).
    #
    unitsAvailable : (UnitsAvailable, deprecated)

    #
    # The string "PRICE". Used to identify the a Price object when found in a
    # stream.
    #
    type : (string, default=PRICE)
}`

func TestParse_OrderBookBody(t *testing.T) {
	got, err := Parse(orderBookBody)
	require.NoError(t, err)

	want := models.Struct{Fields: []models.Field{
		{
			Name:      "price",
			TypeName:  "PriceValue",
			DocString: "The lowest price (inclusive) covered by the bucket. The bucket covers the price range from the price to price + the order book’s bucketWidth.",
		},
		{
			Name:      "buckets",
			TypeName:  "OrderBookBucket",
			IsArray:   true,
			DocString: "The partitioned order book, divided into buckets using a default bucket width. These buckets are only provided for price ranges which actually contain order or position data.",
		},
		{
			Name:      "type",
			TypeName:  "string",
			Default:   strPtr("PRICE"),
			DocString: `The string "PRICE". Used to identify the a Price object when found in a stream.`,
		},
	}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []models.Field
	}{
		{
			name: "single field with doc",
			input: `{
				# The price
				# of the thing
				price : (PriceValue)
			}`,
			want: []models.Field{
				{Name: "price", TypeName: "PriceValue", DocString: "The price of the thing"},
			},
		},
		{
			name:  "array field",
			input: `{ buckets : (Array[OrderBookBucket]) }`,
			want: []models.Field{
				{Name: "buckets", TypeName: "OrderBookBucket", IsArray: true},
			},
		},
		{
			name: "deprecated field dropped",
			input: `{
				id : (TradeID),
				unitsAvailable : (UnitsAvailable, deprecated),
				instrument : (InstrumentName)
			}`,
			want: []models.Field{
				{Name: "id", TypeName: "TradeID"},
				{Name: "instrument", TypeName: "InstrumentName"},
			},
		},
		{
			name:  "default captured verbatim",
			input: `{ type : (string, default=PRICE) }`,
			want: []models.Field{
				{Name: "type", TypeName: "string", Default: strPtr("PRICE")},
			},
		},
		{
			name:  "default before type",
			input: `{ timeInForce : (default=FOK, TimeInForce) }`,
			want: []models.Field{
				{Name: "timeInForce", TypeName: "TimeInForce", Default: strPtr("FOK")},
			},
		},
		{
			name:  "first default wins",
			input: `{ positionFill : (OrderPositionFill, default=DEFAULT, default=REDUCE_ONLY) }`,
			want: []models.Field{
				{Name: "positionFill", TypeName: "OrderPositionFill", Default: strPtr("DEFAULT")},
			},
		},
		{
			name:  "array with default",
			input: `{ tags : (Array[string], default=none) }`,
			want: []models.Field{
				{Name: "tags", TypeName: "string", IsArray: true, Default: strPtr("none")},
			},
		},
		{
			name:  "required marker",
			input: `{ instrument : (InstrumentName, required) }`,
			want: []models.Field{
				{Name: "instrument", TypeName: "InstrumentName", Required: true},
			},
		},
		{
			name:  "empty body",
			input: `{}`,
			want:  []models.Field{},
		},
		{
			name:  "deprecated without type is still skipped",
			input: `{ old : (deprecated) }`,
			want:  []models.Field{},
		},
		{
			name: "trailing comma",
			input: `{
				a : (string),
				b : (integer),
			}`,
			want: []models.Field{
				{Name: "a", TypeName: "string"},
				{Name: "b", TypeName: "integer"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   error
		rule   string
		field  string
		line   int
		column int
	}{
		{
			name:   "missing type",
			input:  "{\n  price : ()\n}",
			kind:   ErrMissingType,
			rule:   "type_clause",
			field:  "price",
			line:   2,
			column: 3,
		},
		{
			name:   "missing type with default only",
			input:  "{\n  price : (default=1.0)\n}",
			kind:   ErrMissingType,
			rule:   "type_clause",
			field:  "price",
			line:   2,
			column: 3,
		},
		{
			name:   "normal and array type",
			input:  "{\n  price : (PriceValue, Array[PriceValue])\n}",
			kind:   ErrConflictingType,
			rule:   "type_clause",
			field:  "price",
			line:   2,
			column: 24,
		},
		{
			name:   "two normal types",
			input:  "{ price : (PriceValue, DecimalNumber) }",
			kind:   ErrConflictingType,
			rule:   "type_clause",
			field:  "price",
			line:   1,
			column: 24,
		},
		{
			name:   "doc without name",
			input:  "{\n  # dangling comment\n  : (string)\n}",
			kind:   ErrMissingFieldName,
			rule:   "field_name",
			line:   3,
			column: 3,
		},
		{
			name:   "unexpected top level token",
			input:  "{\n  ) \n}",
			kind:   ErrUnexpectedToken,
			rule:   "field",
			line:   2,
			column: 3,
		},
		{
			name:   "trailing input",
			input:  "{ a : (string) } extra",
			kind:   ErrUnexpectedToken,
			rule:   "EOI",
			line:   1,
			column: 18,
		},
		{
			name:   "missing opening brace",
			input:  "a : (string)",
			kind:   ErrGrammar,
			rule:   "body",
			line:   1,
			column: 1,
		},
		{
			name:   "unterminated body",
			input:  "{ a : (string)",
			kind:   ErrGrammar,
			rule:   "body",
			line:   1,
			column: 15,
		},
		{
			name:   "missing colon",
			input:  "{ a (string) }",
			kind:   ErrGrammar,
			rule:   "field",
			line:   1,
			column: 5,
		},
		{
			name:   "unrecognized char",
			input:  "{ a : (string) ; }",
			kind:   ErrGrammar,
			rule:   "field",
			line:   1,
			column: 16,
		},
		{
			name:   "unclosed array",
			input:  "{ a : (Array[string) }",
			kind:   ErrGrammar,
			rule:   "type_name_array",
			line:   1,
			column: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.Error(t, err)
			assert.Empty(t, got.Fields)
			assert.True(t, errors.Is(err, tt.kind), "expected %v, got %v", tt.kind, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.rule, perr.Rule)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, tt.line, perr.Pos.Line, "line")
			assert.Equal(t, tt.column, perr.Pos.Column, "column")
			assert.Equal(t, tt.input, perr.Input)
			assert.Contains(t, err.Error(), tt.input)
		})
	}
}

func TestParse_MissingTypeIsAllOrNothing(t *testing.T) {
	input := `{
		a : (string),
		b : (),
		c : (string)
	}`
	got, err := Parse(input)
	require.ErrorIs(t, err, ErrMissingType)
	assert.Nil(t, got.Fields)
	assert.Contains(t, err.Error(), `field "b"`)
}

func TestParse_Idempotent(t *testing.T) {
	first, err := Parse(orderBookBody)
	require.NoError(t, err)
	second, err := Parse(orderBookBody)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParse_OrderPreserved(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{\n")
	names := []string{"zeta", "alpha", "mid", "beta", "omega"}
	for i, name := range names {
		marker := ""
		if i%2 == 1 {
			marker = ", deprecated"
		}
		sb.WriteString("  " + name + " : (string" + marker + "),\n")
	}
	sb.WriteString("}")

	got, err := Parse(sb.String())
	require.NoError(t, err)

	var gotNames []string
	for _, f := range got.Fields {
		gotNames = append(gotNames, f.Name)
	}
	assert.Equal(t, []string{"zeta", "mid", "omega"}, gotNames)
}

func TestParse_ConcurrentUse(t *testing.T) {
	p := NewParser()
	want, err := p.Parse(orderBookBody)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Parse(orderBookBody)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestTokenizer_UnicodeColumns(t *testing.T) {
	lexer := NewTokenizer("# “quoted” doc\n  naïve : (string)")

	tok, err := lexer.NextToken()
	require.NoError(t, err)
	assert.Equal(t, DocLine, tok.Kind)
	assert.Equal(t, "“quoted” doc", tok.Content)

	tok, err = lexer.NextToken()
	require.NoError(t, err)
	assert.Equal(t, Identifier, tok.Kind)
	assert.Equal(t, "naïve", tok.Content)
	assert.Equal(t, Position{Line: 2, Column: 3}, tok.Pos)

	tok, err = lexer.NextToken()
	require.NoError(t, err)
	assert.Equal(t, Colon, tok.Kind)
	assert.Equal(t, Position{Line: 2, Column: 9}, tok.Pos)
}
