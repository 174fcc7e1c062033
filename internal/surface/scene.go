package surface

import (
	"sort"
)

// Scene is a retained scene graph. It is not safe for concurrent use;
// all access happens on the UI goroutine.
type Scene struct {
	root *Node
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{root: &Node{kind: KindGroup}}
}

// Root returns the scene's root group.
func (s *Scene) Root() Element {
	return s.root
}

func (s *Scene) attach(n *Node) *Node {
	s.root.Add(n)
	return n
}

// Group creates an empty group.
func (s *Scene) Group() Element {
	return s.attach(&Node{kind: KindGroup})
}

// Circle creates a circle.
func (s *Scene) Circle(cx, cy, r float64) Element {
	return s.attach(&Node{kind: KindCircle, attrs: Attrs{"cx": cx, "cy": cy, "r": r}})
}

// Rect creates a rectangle.
func (s *Scene) Rect(x, y, width, height float64) Element {
	return s.attach(&Node{kind: KindRect, attrs: Attrs{"x": x, "y": y, "width": width, "height": height}})
}

// Title creates a title fragment holding tooltip text.
func (s *Scene) Title(text string) Element {
	return s.attach(&Node{kind: KindTitle, text: text})
}

// Node is the Scene implementation of Element.
type Node struct {
	kind     Kind
	parent   *Node
	children []*Node
	classes  map[string]struct{}
	attrs    Attrs
	text     string
	hovered  bool
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) Add(child Element) {
	c := child.(*Node)
	c.Remove()
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *Node) Parent() Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []Element {
	out := make([]Element, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *Node) AddClass(name string) {
	if n.classes == nil {
		n.classes = make(map[string]struct{})
	}
	n.classes[name] = struct{}{}
}

func (n *Node) RemoveClass(name string) {
	delete(n.classes, name)
}

func (n *Node) HasClass(name string) bool {
	_, ok := n.classes[name]
	return ok
}

// Classes returns the class names in sorted order.
func (n *Node) Classes() []string {
	out := make([]string, 0, len(n.classes))
	for c := range n.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (n *Node) SetAttr(attrs Attrs) {
	if n.attrs == nil {
		n.attrs = make(Attrs, len(attrs))
	}
	for k, v := range attrs {
		n.attrs[k] = v
	}
}

func (n *Node) Attr(name string) float64 {
	return n.attrs[name]
}

func (n *Node) SetText(text string) { n.text = text }
func (n *Node) Text() string        { return n.text }

func (n *Node) SetHovered(hovered bool) { n.hovered = hovered }
func (n *Node) IsHovered() bool         { return n.hovered }
