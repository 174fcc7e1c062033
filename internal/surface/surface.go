// Package surface defines the rendering surface regions draw on and a
// retained in-memory scene graph implementing it.
package surface

// Kind identifies the primitive an element draws.
type Kind int

const (
	KindGroup Kind = iota
	KindCircle
	KindRect
	KindTitle
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindCircle:
		return "circle"
	case KindRect:
		return "rect"
	case KindTitle:
		return "title"
	default:
		return "unknown"
	}
}

// Attrs holds numeric geometry attributes: cx, cy, r for circles and
// x, y, width, height for rects.
type Attrs map[string]float64

// Element is one node of the surface's scene graph.
type Element interface {
	Kind() Kind

	// Add appends child, detaching it from its current parent first.
	Add(child Element)
	// Remove detaches the element from its parent.
	Remove()
	Parent() Element
	Children() []Element

	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
	Classes() []string

	SetAttr(attrs Attrs)
	Attr(name string) float64

	SetText(text string)
	Text() string

	SetHovered(hovered bool)
	IsHovered() bool
}

// Surface creates primitives. New elements are attached to the surface
// root until added elsewhere.
type Surface interface {
	Group() Element
	Circle(cx, cy, r float64) Element
	Rect(x, y, width, height float64) Element
	Title(text string) Element
}

// Walk visits root and its descendants depth first, in child order. fn
// receives each element with its ancestor path (root first, element last).
// Returning false skips the element's children. fn must not retain path.
func Walk(root Element, fn func(e Element, path []Element) bool) {
	walk(root, nil, fn)
}

func walk(e Element, path []Element, fn func(Element, []Element) bool) {
	path = append(path, e)
	if !fn(e, path) {
		return
	}
	for _, c := range e.Children() {
		walk(c, path, fn)
	}
}

// FindTitle returns the first title child of e.
func FindTitle(e Element) (Element, bool) {
	for _, c := range e.Children() {
		if c.Kind() == KindTitle {
			return c, true
		}
	}
	return nil, false
}
