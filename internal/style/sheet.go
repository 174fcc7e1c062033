// Package style provides scoped style-rule tables for region rendering.
//
// A Registry plays the role of the document: it owns one Sheet per scope.
// Each region creates its own scope, fills its sheet from its tag colors,
// and removes the sheet when the region is discarded.
package style

import (
	"errors"
	"fmt"
)

// ErrIndex is returned when a rule is inserted outside the table bounds.
var ErrIndex = errors.New("rule index out of range")

// Rule is a selector with its declaration block body.
type Rule struct {
	Selector    string
	Declaration string
}

// String returns the rule in "selector{declaration}" form.
func (r Rule) String() string {
	return r.Selector + "{" + r.Declaration + "}"
}

type parsedRule struct {
	Rule
	sel   Selector
	props []Property
}

// Sheet is an ordered rule table bound to one scope.
type Sheet struct {
	scope string
	rules []parsedRule
}

// Scope returns the scope id the sheet was created for.
func (s *Sheet) Scope() string {
	return s.scope
}

// Insert parses rule and inserts it at index. Index 0 prepends, which
// gives the rule precedence over existing rules of equal specificity.
func (s *Sheet) Insert(rule Rule, index int) error {
	if index < 0 || index > len(s.rules) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	sel, err := ParseSelector(rule.Selector)
	if err != nil {
		return err
	}
	props, err := ParseDeclaration(rule.Declaration)
	if err != nil {
		return err
	}
	pr := parsedRule{Rule: rule, sel: sel, props: props}
	s.rules = append(s.rules, parsedRule{})
	copy(s.rules[index+1:], s.rules[index:])
	s.rules[index] = pr
	return nil
}

// Clear removes every rule.
func (s *Sheet) Clear() {
	s.rules = s.rules[:0]
}

// Len returns the number of rules.
func (s *Sheet) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the rules in table order.
func (s *Sheet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Rule
	}
	return out
}

// Registry is the document-level collection of sheets.
type Registry struct {
	sheets []*Sheet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewSheet creates and attaches a sheet for scope. Scopes are unique.
func (r *Registry) NewSheet(scope string) (*Sheet, error) {
	if scope == "" {
		return nil, errors.New("empty style scope")
	}
	if _, ok := r.Sheet(scope); ok {
		return nil, fmt.Errorf("style scope %q already exists", scope)
	}
	s := &Sheet{scope: scope}
	r.sheets = append(r.sheets, s)
	return s, nil
}

// Sheet returns the sheet attached for scope.
func (r *Registry) Sheet(scope string) (*Sheet, bool) {
	for _, s := range r.sheets {
		if s.scope == scope {
			return s, true
		}
	}
	return nil, false
}

// Remove detaches the sheet for scope. Removing a scope that is not
// attached is a usage error and panics.
func (r *Registry) Remove(scope string) {
	for i, s := range r.sheets {
		if s.scope == scope {
			r.sheets = append(r.sheets[:i], r.sheets[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("style: remove of unknown scope %q", scope))
}

// Len returns the number of attached sheets.
func (r *Registry) Len() int {
	return len(r.sheets)
}

// Style is a computed set of property values.
type Style map[string]string

// Get returns the value of prop.
func (s Style) Get(prop string) (string, bool) {
	v, ok := s[prop]
	return v, ok
}

type candidate struct {
	value       string
	specificity int
	sheet       int
	index       int
}

// wins reports whether c takes precedence over o: higher specificity first,
// then later sheet, then lower position within the sheet.
func (c candidate) wins(o candidate) bool {
	if c.specificity != o.specificity {
		return c.specificity > o.specificity
	}
	if c.sheet != o.sheet {
		return c.sheet > o.sheet
	}
	return c.index < o.index
}

// Resolve computes the style of the last element of path. path lists the
// element's ancestors from the root down.
func (r *Registry) Resolve(path []Element) Style {
	best := make(map[string]candidate)
	for si, s := range r.sheets {
		for ri, rule := range s.rules {
			if !rule.sel.Matches(path) {
				continue
			}
			spec := rule.sel.Specificity()
			for _, p := range rule.props {
				c := candidate{value: p.Value, specificity: spec, sheet: si, index: ri}
				if cur, ok := best[p.Name]; !ok || c.wins(cur) {
					best[p.Name] = c
				}
			}
		}
	}
	out := make(Style, len(best))
	for name, c := range best {
		out[name] = c.value
	}
	return out
}

