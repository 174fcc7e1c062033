package region

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"region-annotator/internal/frame"
	"region-annotator/internal/style"
	"region-annotator/internal/surface"
	"region-annotator/internal/tags"
	"region-annotator/pkg/geometry"
)

// Options holds the optional arguments of New.
type Options struct {
	OnManipulationBegin ManipulationFunc
	OnManipulationEnd   ManipulationFunc
	// TagOptions applies to the initial tags; nil selects the defaults.
	TagOptions *tags.UpdateOptions
}

// Region is a point-anchored annotation region made of a drag handle and a
// tag label overlay. It is the only component that reports changes to the
// host; its children report to it.
type Region struct {
	base

	// ID is the host-assigned identifier.
	ID string
	// Area is the region's area for ordering purposes; a point region has unit area.
	Area float64

	regionID string
	styleID  string
	registry *style.Registry
	sheet    *style.Sheet

	node   surface.Element
	title  surface.Element
	handle *Handle
	labels *TagLabels
	ui     []Component

	tags     *tags.Descriptor
	points   []geometry.Point2D
	selected bool
}

// New creates a region anchored at points[0] and draws it on s. Its style
// rules live in a new sheet of reg, which the host must release with
// RemoveStyles. paper, if non-nil, bounds dragging.
func New(s surface.Surface, reg *style.Registry, sched *frame.Scheduler, paper *geometry.Rect,
	points []geometry.Point2D, id string, d *tags.Descriptor, opts Options) (*Region, error) {
	if len(points) == 0 {
		return nil, errors.New("region needs at least one point")
	}

	r := &Region{
		base:     newBase(sched, paper, points[0].X, points[0].Y),
		ID:       id,
		Area:     1.0,
		registry: reg,
		tags:     d,
		points:   append([]geometry.Point2D(nil), points...),
	}

	if opts.OnManipulationBegin != nil {
		r.onManipulationBegin = func() { opts.OnManipulationBegin(r) }
	}
	if opts.OnManipulationEnd != nil {
		r.onManipulationEnd = func() { opts.OnManipulationEnd(r) }
	}

	if err := r.allocateStyles(); err != nil {
		return nil, err
	}

	r.node = s.Group()
	r.node.AddClass(ClassRegion)
	r.node.AddClass(r.styleID)

	r.handle = NewHandle(s, sched, paper, r.x, r.y, HandleCallbacks{
		OnChange:            r.onInternalChange,
		OnManipulationBegin: r.onManipulationBegin,
		OnManipulationEnd:   r.onManipulationEnd,
	})
	r.labels = newTagLabels(s, sched, paper, r.x, r.y, r.bound, d, r.styleID, r.sheet, opts.TagOptions)

	r.title = s.Title(d.String())
	r.node.Add(r.title)
	r.node.Add(r.handle.Node())
	r.node.Add(r.labels.Node())

	r.ui = []Component{r.labels, r.handle}

	r.Move(r.x, r.y)
	return r, nil
}

// allocateStyles picks a random identity and attaches a style sheet for it.
func (r *Region) allocateStyles() error {
	const attempts = 4
	var lastErr error
	for i := 0; i < attempts; i++ {
		id, err := newRegionID()
		if err != nil {
			return fmt.Errorf("failed to generate region id: %w", err)
		}
		styleID := "region_" + id + "_style"
		sheet, err := r.registry.NewSheet(styleID)
		if err != nil {
			lastErr = err
			continue
		}
		r.regionID = id
		r.styleID = styleID
		r.sheet = sheet
		return nil
	}
	return fmt.Errorf("failed to allocate region styles: %w", lastErr)
}

// newRegionID returns 8 random hex digits.
func newRegionID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// onInternalChange is the mediator between the children and the host.
func (r *Region) onInternalChange(source Component, x, y, width, height float64, points []geometry.Point2D, event ChangeEventType, multiSelection bool) {
	if r.x != x || r.y != y {
		r.Move(x, y)
	}
	if r.bound.Width != width || r.bound.Height != height {
		r.Resize(width, height)
	}
	r.onChange(r, x, y, width, height, points, event, multiSelection)
}

// OnChange sets the callback for change events. source is always the region.
func (r *Region) OnChange(callback ChangeFunc) {
	if callback == nil {
		callback = func(Component, float64, float64, float64, float64, []geometry.Point2D, ChangeEventType, bool) {}
	}
	r.onChange = callback
}

// Node returns the region's group element.
func (r *Region) Node() surface.Element {
	return r.node
}

// Handle returns the region's drag handle.
func (r *Region) Handle() *Handle {
	return r.handle
}

// Labels returns the region's tag overlay.
func (r *Region) Labels() *TagLabels {
	return r.labels
}

// RegionID returns the random identity token.
func (r *Region) RegionID() string {
	return r.regionID
}

// StyleID returns the style scope, which is also a class on the region node.
func (r *Region) StyleID() string {
	return r.styleID
}

// Rules returns the region's current style rules in table order.
func (r *Region) Rules() []style.Rule {
	return r.sheet.Rules()
}

// Tags returns the current descriptor; nil when no tags are assigned.
func (r *Region) Tags() *tags.Descriptor {
	return r.tags
}

// Tooltip returns the tooltip text presented for the current tags.
func (r *Region) Tooltip() string {
	return r.title.Text()
}

// Points returns the region's points. The first point is the anchor.
func (r *Region) Points() []geometry.Point2D {
	return append([]geometry.Point2D(nil), r.points...)
}

// Move moves the anchor to (x, y), translating the remaining points with
// it, and moves every child to the same position.
func (r *Region) Move(x, y float64) {
	dx := x - r.x
	dy := y - r.y
	r.setPosition(x, y)
	for i := range r.points {
		r.points[i] = r.points[i].Add(geometry.NewPoint2D(dx, dy))
	}
	for _, c := range r.ui {
		c.Move(x, y)
	}
}

// MoveTo is Move for a point.
func (r *Region) MoveTo(p geometry.Point2D) {
	r.Move(p.X, p.Y)
}

// Resize does nothing: point regions have no size.
func (r *Region) Resize(width, height float64) {}

// UpdateTags replaces the region's tags. nil clears them.
func (r *Region) UpdateTags(d *tags.Descriptor, opts *tags.UpdateOptions) {
	r.tags = d
	r.labels.UpdateTags(d, opts)
	r.title.SetText(d.String())
}

// Select marks the region selected. Hosts are responsible for any
// selection notifications.
func (r *Region) Select() {
	r.selected = true
	r.node.AddClass(ClassSelected)
}

// Unselect clears the selected mark.
func (r *Region) Unselect() {
	r.selected = false
	r.node.RemoveClass(ClassSelected)
}

// IsSelected reports whether the region is selected.
func (r *Region) IsSelected() bool {
	return r.selected
}

// Freeze marks the region stale and stops any gesture on its handle.
func (r *Region) Freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	r.node.AddClass(ClassFrozen)
	r.handle.Freeze()
}

// Unfreeze reverses Freeze.
func (r *Region) Unfreeze() {
	if !r.frozen {
		return
	}
	r.frozen = false
	r.node.RemoveClass(ClassFrozen)
	r.handle.Unfreeze()
}

// RemoveStyles releases the region's style sheet. It must be called exactly
// once, when the host discards the region; a second call panics.
func (r *Region) RemoveStyles() {
	r.registry.Remove(r.styleID)
}
