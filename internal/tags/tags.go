// Package tags provides the tag data attached to annotation regions.
package tags

import (
	"strconv"
	"strings"
)

// Record describes one visual tag. Color fields are opaque style tokens
// (usually hex strings) passed through to style declarations.
type Record struct {
	Name           string `yaml:"name" json:"name"`
	ColorAccent    string `yaml:"accent" json:"colorAccent"`
	ColorHighlight string `yaml:"highlight" json:"colorHighlight"`
	ColorNoColor   string `yaml:"noColor" json:"colorNoColor"`
}

// Descriptor holds the primary and secondary tags assigned to a region.
// A nil *Descriptor means no tags are assigned. Secondary order is
// significant: it drives marker layout.
type Descriptor struct {
	Primary   *Record
	Secondary []Record
}

// NewDescriptor creates a descriptor. primary may be nil.
func NewDescriptor(primary *Record, secondary ...Record) *Descriptor {
	return &Descriptor{Primary: primary, Secondary: secondary}
}

// HasPrimary reports whether a primary tag is set.
func (d *Descriptor) HasPrimary() bool {
	return d != nil && d.Primary != nil
}

// SecondaryTags returns the secondary tags, or nil when d is nil.
func (d *Descriptor) SecondaryTags() []Record {
	if d == nil {
		return nil
	}
	return d.Secondary
}

// String returns the tooltip summary: the primary name followed by the
// secondary names, comma separated. A nil descriptor yields "".
func (d *Descriptor) String() string {
	if d == nil {
		return ""
	}
	names := make([]string, 0, len(d.Secondary)+1)
	if d.Primary != nil {
		names = append(names, d.Primary.Name)
	}
	for _, s := range d.Secondary {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

// UpdateOptions controls how tag colors are mapped onto a region.
type UpdateOptions struct {
	// ShowRegionBackground selects the full color scheme. When false the
	// region uses the light scheme and its secondary markers are dimmed.
	ShowRegionBackground bool `json:"showRegionBackground"`
}

// DefaultUpdateOptions returns the options used when none are given.
func DefaultUpdateOptions() UpdateOptions {
	return UpdateOptions{ShowRegionBackground: true}
}

// Resolve returns *o, or the defaults when o is nil.
func (o *UpdateOptions) Resolve() UpdateOptions {
	if o == nil {
		return DefaultUpdateOptions()
	}
	return *o
}

// ClassName returns the marker class for a secondary tag name. Letters,
// digits and '-' are kept; any other rune, '_' included, is written as its
// hex code point between underscores, so distinct names never share a class.
func ClassName(name string) string {
	var b strings.Builder
	b.WriteString("secondaryTag-")
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteByte('_')
		}
	}
	return b.String()
}
