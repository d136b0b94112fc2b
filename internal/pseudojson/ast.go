package pseudojson

// node is one element of the parse tree. The set of implementations is closed;
// the builder dispatches on them with a type switch.
type node interface {
	position() Position
}

type docLine struct {
	pos  Position
	text string
}

type fieldName struct {
	pos  Position
	name string
}

type typeNormal struct {
	pos  Position
	name string
}

type typeArray struct {
	pos  Position
	elem string
}

type defaultValue struct {
	pos   Position
	value string
}

type deprecatedMarker struct {
	pos Position
}

type requiredMarker struct {
	pos Position
}

// fieldNode is a whole field production: its doc lines, name and clause items
// in source order, plus the span from the name to the closing parenthesis.
type fieldNode struct {
	start Position
	end   Position
	nodes []node
}

type eoi struct {
	pos Position
}

func (n docLine) position() Position          { return n.pos }
func (n fieldName) position() Position        { return n.pos }
func (n typeNormal) position() Position       { return n.pos }
func (n typeArray) position() Position        { return n.pos }
func (n defaultValue) position() Position     { return n.pos }
func (n deprecatedMarker) position() Position { return n.pos }
func (n requiredMarker) position() Position   { return n.pos }
func (n fieldNode) position() Position        { return n.start }
func (n eoi) position() Position              { return n.pos }
