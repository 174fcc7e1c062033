package style

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is returned for selectors or declarations the table does not understand.
var ErrSyntax = errors.New("style syntax error")

// Element is the view of a scene node used for selector matching.
type Element interface {
	HasClass(name string) bool
	IsHovered() bool
}

// compound is one whitespace-separated part of a selector, e.g. ".a.b:hover".
type compound struct {
	classes []string
	hover   bool
}

func (c compound) matches(e Element) bool {
	if c.hover && !e.IsHovered() {
		return false
	}
	for _, cls := range c.classes {
		if !e.HasClass(cls) {
			return false
		}
	}
	return true
}

// Selector is a parsed chain of compound selectors joined by descendant
// combinators. Only class selectors and the :hover pseudo-class are supported.
type Selector struct {
	parts []compound
}

// ParseSelector parses a selector such as ".regionStyle.selected.r1 .primaryTagPointStyle".
func ParseSelector(s string) (Selector, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Selector{}, fmt.Errorf("%w: empty selector", ErrSyntax)
	}
	sel := Selector{parts: make([]compound, 0, len(fields))}
	for _, f := range fields {
		c, err := parseCompound(f)
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %q", err, s)
		}
		sel.parts = append(sel.parts, c)
	}
	return sel, nil
}

func parseCompound(f string) (compound, error) {
	var c compound
	for len(f) > 0 {
		prefix := f[0]
		f = f[1:]
		end := strings.IndexAny(f, ".:")
		if end < 0 {
			end = len(f)
		}
		name := f[:end]
		f = f[end:]
		if name == "" {
			return compound{}, ErrSyntax
		}
		switch prefix {
		case '.':
			c.classes = append(c.classes, name)
		case ':':
			if name != "hover" {
				return compound{}, fmt.Errorf("%w: unsupported pseudo-class %q", ErrSyntax, name)
			}
			c.hover = true
		default:
			return compound{}, fmt.Errorf("%w: unexpected %q", ErrSyntax, string(prefix))
		}
	}
	if len(c.classes) == 0 && !c.hover {
		return compound{}, ErrSyntax
	}
	return c, nil
}

// Specificity counts the class and pseudo-class selectors.
func (s Selector) Specificity() int {
	n := 0
	for _, p := range s.parts {
		n += len(p.classes)
		if p.hover {
			n++
		}
	}
	return n
}

// Classes returns every class name the selector mentions.
func (s Selector) Classes() []string {
	var out []string
	for _, p := range s.parts {
		out = append(out, p.classes...)
	}
	return out
}

// Matches reports whether the selector matches the last element of path,
// where path lists the element's ancestors from the root down.
func (s Selector) Matches(path []Element) bool {
	if len(s.parts) == 0 || len(path) == 0 {
		return false
	}
	last := len(s.parts) - 1
	if !s.parts[last].matches(path[len(path)-1]) {
		return false
	}
	// Descendant combinators: match remaining parts against ancestors,
	// nearest first.
	anc := len(path) - 2
	for i := last - 1; i >= 0; i-- {
		for anc >= 0 && !s.parts[i].matches(path[anc]) {
			anc--
		}
		if anc < 0 {
			return false
		}
		anc--
	}
	return true
}

// Property is one "name: value" pair of a declaration block.
type Property struct {
	Name  string
	Value string
}

// ParseDeclaration parses a declaration block body such as "fill: #f00; stroke: #fff;".
func ParseDeclaration(s string) ([]Property, error) {
	var props []Property
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, part)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			return nil, fmt.Errorf("%w: %q", ErrSyntax, part)
		}
		props = append(props, Property{Name: strings.ToLower(name), Value: value})
	}
	return props, nil
}
