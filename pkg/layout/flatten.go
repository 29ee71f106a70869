package layout

// Flat is the flattened form of a Node tree. Layouts never directly contain
// a child layout sharing their orientation.
type Flat struct {
	Kind        Kind
	Widget      any
	Orientation Orientation
	Children    []Flat
}

// IsLeaf reports whether the value carries a widget handle.
func (f Flat) IsLeaf() bool {
	return f.Kind == KindLeaf
}

// Leaves returns the widget handles in visual order.
func (f Flat) Leaves() []any {
	var out []any
	f.walk(func(widget any) {
		out = append(out, widget)
	})
	return out
}

func (f Flat) walk(visit func(widget any)) {
	if f.Kind == KindLeaf {
		visit(f.Widget)
		return
	}
	for _, child := range f.Children {
		child.walk(visit)
	}
}

// Flatten converts a visual tree into a Flat tree suitable for linear layout.
// Child layouts that share their parent's orientation are spliced into the
// parent so long chains of same-orientation composition collapse into one
// container. The result is always a layout: a nil root yields an empty layout
// of defaultOrientation and a leaf root is wrapped in one.
func Flatten(defaultOrientation Orientation, root *Node) Flat {
	if root == nil {
		return Flat{Kind: KindLayout, Orientation: defaultOrientation, Children: []Flat{}}
	}
	if root.Kind == KindLeaf {
		return Flat{
			Kind:        KindLayout,
			Orientation: defaultOrientation,
			Children:    []Flat{{Kind: KindLeaf, Widget: root.Widget}},
		}
	}
	return Flat{
		Kind:        KindLayout,
		Orientation: root.Orientation,
		Children:    flattenChildren(root.Orientation, root.Children, make([]Flat, 0, len(root.Children))),
	}
}

func flattenChildren(orientation Orientation, children []*Node, dst []Flat) []Flat {
	for _, child := range children {
		if child == nil {
			continue
		}
		switch {
		case child.Kind == KindLeaf:
			dst = append(dst, Flat{Kind: KindLeaf, Widget: child.Widget})
		case child.Orientation == orientation:
			dst = flattenChildren(orientation, child.Children, dst)
		default:
			dst = append(dst, Flat{
				Kind:        KindLayout,
				Orientation: child.Orientation,
				Children:    flattenChildren(child.Orientation, child.Children, make([]Flat, 0, len(child.Children))),
			})
		}
	}
	return dst
}
