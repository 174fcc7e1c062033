package region

import (
	"log"
	"strings"

	"region-annotator/internal/frame"
	"region-annotator/internal/style"
	"region-annotator/internal/surface"
	"region-annotator/internal/tags"
	"region-annotator/pkg/geometry"
)

const (
	// PrimaryTagRadius is the radius of the primary tag indicator.
	PrimaryTagRadius = 3
	// MarkerSize is the side length of a secondary tag marker.
	MarkerSize = 6
	// markerGap is the vertical distance between markers and the anchor.
	markerGap = 5
)

// Class names shared by the region scene graph and its style rules.
const (
	ClassRegion            = "regionStyle"
	ClassSelected          = "selected"
	ClassFrozen            = "old"
	ClassPrimaryTagPoint   = "primaryTagPointStyle"
	ClassSecondaryTag      = "secondaryTagStyle"
	classTagsLayer         = "tagsLayer"
	classSecondaryLayer    = "secondaryTagsLayer"
	secondaryMarkerOpacity = "0.25"
)

// TagLabels draws a region's primary tag indicator and its row of
// secondary tag markers, and keeps the region's style sheet in line with
// the current tags.
type TagLabels struct {
	base

	surface surface.Surface
	node    surface.Element
	primary surface.Element
	group   surface.Element
	markers []surface.Element

	tags    *tags.Descriptor
	styleID string
	sheet   *style.Sheet
}

func newTagLabels(s surface.Surface, sched *frame.Scheduler, paper *geometry.Rect, x, y float64, bound geometry.Size,
	d *tags.Descriptor, styleID string, sheet *style.Sheet, opts *tags.UpdateOptions) *TagLabels {
	l := &TagLabels{
		base:    newBase(sched, paper, x, y),
		surface: s,
		styleID: styleID,
		sheet:   sheet,
	}
	l.bound = bound

	l.node = s.Group()
	l.node.AddClass(classTagsLayer)
	l.primary = s.Circle(0, 0, PrimaryTagRadius)
	l.primary.AddClass(ClassPrimaryTagPoint)
	l.group = s.Group()
	l.group.AddClass(classSecondaryLayer)
	l.node.Add(l.primary)
	l.node.Add(l.group)

	l.UpdateTags(d, opts)
	return l
}

// Node returns the overlay's group element.
func (l *TagLabels) Node() surface.Element {
	return l.node
}

// Tags returns the current descriptor.
func (l *TagLabels) Tags() *tags.Descriptor {
	return l.tags
}

// PrimaryVisible reports whether the primary indicator is part of the scene.
func (l *TagLabels) PrimaryVisible() bool {
	return l.primary.Parent() != nil
}

// Markers returns the secondary marker elements in tag order.
func (l *TagLabels) Markers() []surface.Element {
	out := make([]surface.Element, len(l.markers))
	copy(out, l.markers)
	return out
}

// markerOrigin returns the top-left corner of marker i of n. Markers are
// centred horizontally on the anchor and sit above it.
func (l *TagLabels) markerOrigin(i, n int) geometry.Point2D {
	s := float64(MarkerSize)
	x := l.x + l.bound.Width/2 + float64(2*i-n+1)*s - s/2
	y := l.y - s - markerGap
	return geometry.NewPoint2D(x, y)
}

// UpdateTags replaces the descriptor, rebuilds the markers and the style
// rules. A nil opts selects the defaults.
func (l *TagLabels) UpdateTags(d *tags.Descriptor, opts *tags.UpdateOptions) {
	l.tags = d
	l.redrawLabels()
	l.sheet.Clear()

	showBackground := opts.Resolve().ShowRegionBackground
	l.sched.Request(func() {
		// Rebuilt from the current descriptor so that several updates in
		// one turn leave exactly one rule set behind.
		l.sheet.Clear()
		for _, r := range Rules(l.styleID, l.tags, showBackground) {
			if err := l.sheet.Insert(r, 0); err != nil {
				log.Printf("Dropping style rule for %s: %v", l.styleID, err)
			}
		}
	})
}

func (l *TagLabels) redrawLabels() {
	for _, m := range l.markers {
		m.Remove()
	}
	l.markers = nil

	if l.tags.HasPrimary() {
		if !l.PrimaryVisible() {
			l.group.Remove()
			l.node.Add(l.primary)
			l.node.Add(l.group)
		}
	} else {
		l.primary.Remove()
	}

	secondary := l.tags.SecondaryTags()
	for i, stag := range secondary {
		p := l.markerOrigin(i, len(secondary))
		marker := l.surface.Rect(p.X, p.Y, MarkerSize, MarkerSize)
		class := tags.ClassName(stag.Name)
		l.sched.Request(func() {
			marker.AddClass(ClassSecondaryTag)
			marker.AddClass(class)
		})
		l.group.Add(marker)
		l.markers = append(l.markers, marker)
	}
}

// validToken reports whether a color token can stand as a declaration value.
func validToken(v string) bool {
	return strings.TrimSpace(v) != "" && !strings.ContainsAny(v, ";{}")
}

// Rules returns the style rules for a region scope and descriptor, in
// definition order. Rules are inserted at index 0 one after another, so the
// last rule returned ends up first in the table. Properties whose color
// token is blank or contains a declaration separator are left out, and a
// rule left with no properties is dropped.
func Rules(styleID string, d *tags.Descriptor, showBackground bool) []style.Rule {
	var rules []style.Rule
	add := func(selector string, props ...string) {
		var b strings.Builder
		for i := 0; i+1 < len(props); i += 2 {
			if !validToken(props[i+1]) {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(props[i] + ": " + props[i+1] + ";")
		}
		if b.Len() > 0 {
			rules = append(rules, style.Rule{Selector: selector, Declaration: b.String()})
		}
	}

	scope := "." + styleID
	region := "." + ClassRegion
	primary := " ." + ClassPrimaryTagPoint

	if d.HasPrimary() {
		p := d.Primary
		if showBackground {
			add(scope+primary, "fill", p.ColorAccent)
			add(region+scope+":hover"+primary, "fill", p.ColorHighlight, "stroke", "#fff")
			add(region+"."+ClassSelected+scope+primary, "fill", p.ColorAccent, "stroke", p.ColorHighlight)
		} else {
			add(scope+primary, "fill", p.ColorNoColor, "stroke", p.ColorAccent)
			add(region+scope+":hover"+primary, "fill", p.ColorHighlight, "stroke", "#fff")
			add(region+"."+ClassSelected+scope+primary, "fill", p.ColorHighlight, "stroke", p.ColorAccent)
			add(region+scope+" ."+ClassSecondaryTag, "opacity", secondaryMarkerOpacity)
		}
	}

	for _, t := range d.SecondaryTags() {
		add(scope+" ."+ClassSecondaryTag+"."+tags.ClassName(t.Name), "fill", t.ColorAccent)
	}
	return rules
}

// Move repositions the overlay; the indicator and markers follow on the next flush.
func (l *TagLabels) Move(x, y float64) {
	l.setPosition(x, y)
	l.sched.Request(func() {
		l.primary.SetAttr(surface.Attrs{"cx": l.x, "cy": l.y})
		for i, m := range l.markers {
			p := l.markerOrigin(i, len(l.markers))
			m.SetAttr(surface.Attrs{"x": p.X, "y": p.Y})
		}
	})
}

// Resize does nothing for this overlay.
func (l *TagLabels) Resize(width, height float64) {}
