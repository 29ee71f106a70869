package layout

import "strings"

// Orientation controls how a layout node arranges its children.
type Orientation int

const (
	// LeftToRight places children in a row.
	LeftToRight Orientation = iota
	// TopToBottom stacks children in a column.
	TopToBottom
)

// DefaultOrientation is used when a caller does not supply one.
const DefaultOrientation = LeftToRight

// String returns the orientation identifier used in previews and documents.
func (o Orientation) String() string {
	switch o {
	case TopToBottom:
		return "top-to-bottom"
	default:
		return "left-to-right"
	}
}

// ParseOrientation accepts the identifiers produced by String plus the
// shorter "horizontal"/"vertical" aliases used in form documents. Unknown
// values report false.
func ParseOrientation(raw string) (Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left-to-right", "horizontal", "row", "hbox":
		return LeftToRight, true
	case "top-to-bottom", "vertical", "column", "vbox":
		return TopToBottom, true
	default:
		return DefaultOrientation, false
	}
}

// Kind tags the variant held by a Node or Flat value.
type Kind int

const (
	// KindLeaf marks a node carrying a widget handle.
	KindLeaf Kind = iota
	// KindLayout marks a node grouping children along an orientation.
	KindLayout
)

// Node is the visual tree produced by rendering a form. A leaf carries the
// widget handle materialised during rebuild; a layout carries an orientation
// and its children. Nil children are legal and treated as empty subtrees.
type Node struct {
	Kind        Kind
	Widget      any
	Orientation Orientation
	Children    []*Node
}

// Leaf wraps a widget handle.
func Leaf(widget any) *Node {
	return &Node{Kind: KindLeaf, Widget: widget}
}

// Group creates a layout node with the supplied children.
func Group(orientation Orientation, children ...*Node) *Node {
	return &Node{
		Kind:        KindLayout,
		Orientation: orientation,
		Children:    children,
	}
}

// HBox is shorthand for Group(LeftToRight, ...).
func HBox(children ...*Node) *Node {
	return Group(LeftToRight, children...)
}

// VBox is shorthand for Group(TopToBottom, ...).
func VBox(children ...*Node) *Node {
	return Group(TopToBottom, children...)
}
