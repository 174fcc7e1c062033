// Package region implements the composite annotation region: a drag handle
// and a tag label overlay coordinated by a parent that owns the region's
// identity, style scope, and outward change events.
package region

import (
	"region-annotator/internal/frame"
	"region-annotator/internal/surface"
	"region-annotator/pkg/geometry"
)

// ChangeEventType identifies the gesture outcome reported by a change event.
type ChangeEventType int

const (
	MoveBegin ChangeEventType = iota
	Moving
	MoveEnd
	SelectionToggle
)

func (t ChangeEventType) String() string {
	switch t {
	case MoveBegin:
		return "MOVEBEGIN"
	case Moving:
		return "MOVING"
	case MoveEnd:
		return "MOVEEND"
	case SelectionToggle:
		return "SELECTIONTOGGLE"
	default:
		return "UNKNOWN"
	}
}

// ChangeFunc receives geometry-change events.
type ChangeFunc func(source Component, x, y, width, height float64, points []geometry.Point2D, event ChangeEventType, multiSelection bool)

// ManipulationFunc is notified when a user starts or stops manipulating a region.
type ManipulationFunc func(r *Region)

// Component is a movable, resizable screen component.
type Component interface {
	Position() geometry.Point2D
	Bounds() geometry.Size
	Move(x, y float64)
	Resize(width, height float64)
	Freeze()
	Unfreeze()
	IsFrozen() bool
	Node() surface.Element
}

// base carries the state shared by every component: position, bound size,
// the optional paper rectangle, the frozen flag, and callback slots.
type base struct {
	x, y   float64
	bound  geometry.Size
	paper  *geometry.Rect
	frozen bool

	sched *frame.Scheduler

	onChange            ChangeFunc
	onManipulationBegin func()
	onManipulationEnd   func()
}

func newBase(sched *frame.Scheduler, paper *geometry.Rect, x, y float64) base {
	return base{
		x:                   x,
		y:                   y,
		paper:               paper,
		sched:               sched,
		onChange:            func(Component, float64, float64, float64, float64, []geometry.Point2D, ChangeEventType, bool) {},
		onManipulationBegin: func() {},
		onManipulationEnd:   func() {},
	}
}

// Position returns the component's anchor point.
func (b *base) Position() geometry.Point2D {
	return geometry.NewPoint2D(b.x, b.y)
}

// Bounds returns the component's bounding size.
func (b *base) Bounds() geometry.Size {
	return b.bound
}

// IsFrozen reports whether the component rejects manipulation.
func (b *base) IsFrozen() bool {
	return b.frozen
}

func (b *base) setPosition(x, y float64) {
	b.x = x
	b.y = y
}

func (b *base) Freeze()   { b.frozen = true }
func (b *base) Unfreeze() { b.frozen = false }

func (b *base) emit(source Component, event ChangeEventType, p geometry.Point2D, multiSelection bool) {
	b.onChange(source, p.X, p.Y, b.bound.Width, b.bound.Height, []geometry.Point2D{p}, event, multiSelection)
}
