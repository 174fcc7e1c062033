package region

import (
	"region-annotator/internal/frame"
	"region-annotator/internal/surface"
	"region-annotator/pkg/geometry"
)

// HandleRadius is the radius of the drag point.
const HandleRadius = 7

// HandleState is the gesture state of a Handle.
type HandleState int

const (
	// HandleIdle: no gesture handlers registered.
	HandleIdle HandleState = iota
	// HandleArmed: pointer is over the handle and gesture handlers are registered.
	HandleArmed
	// HandleDragging: the gesture has delivered at least one movement.
	HandleDragging
)

func (s HandleState) String() string {
	switch s {
	case HandleIdle:
		return "idle"
	case HandleArmed:
		return "armed"
	case HandleDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// PointerEvent carries the pointer details a handle needs.
type PointerEvent struct {
	PointerID int
	// Shift is the multi-selection modifier.
	Shift bool
}

// HandleCallbacks are the notification slots of a Handle. Nil entries are no-ops.
type HandleCallbacks struct {
	OnChange            ChangeFunc
	OnManipulationBegin func()
	OnManipulationEnd   func()
}

// Handle is the draggable marker of a region. It turns pointer input into
// MoveBegin, Moving, MoveEnd and SelectionToggle events.
//
// Pointer methods (PointerEnter, PointerMove, PointerLeave, PointerDown,
// PointerUp) model events delivered to the handle element. Drag methods
// (DragBegin, DragMove, DragEnd) model the gesture handlers, which only
// respond while the handle is armed.
type Handle struct {
	base

	node  surface.Element
	point surface.Element

	state      HandleState
	dragOrigin *geometry.Point2D

	captured  bool
	pointerID int
}

// NewHandle creates a handle at (x, y). paper, if non-nil, bounds drag movement.
func NewHandle(s surface.Surface, sched *frame.Scheduler, paper *geometry.Rect, x, y float64, cb HandleCallbacks) *Handle {
	h := &Handle{base: newBase(sched, paper, x, y)}
	if cb.OnChange != nil {
		h.onChange = cb.OnChange
	}
	if cb.OnManipulationBegin != nil {
		h.onManipulationBegin = cb.OnManipulationBegin
	}
	if cb.OnManipulationEnd != nil {
		h.onManipulationEnd = cb.OnManipulationEnd
	}

	h.node = s.Group()
	h.node.AddClass("dragLayer")
	h.point = s.Circle(0, 0, HandleRadius)
	h.point.AddClass("dragPointStyle")
	h.node.Add(h.point)
	return h
}

// Node returns the handle's group element.
func (h *Handle) Node() surface.Element {
	return h.node
}

// State returns the current gesture state.
func (h *Handle) State() HandleState {
	return h.state
}

// Captured returns the pointer currently captured by the handle.
func (h *Handle) Captured() (pointerID int, ok bool) {
	return h.pointerID, h.captured
}

// HitTest reports whether p lies on the drag point.
func (h *Handle) HitTest(p geometry.Point2D) bool {
	return p.Distance(h.Position()) <= HandleRadius
}

// arm registers the gesture handlers once per hover.
func (h *Handle) arm() {
	if h.frozen || h.state != HandleIdle {
		return
	}
	h.state = HandleArmed
	h.onManipulationBegin()
}

func (h *Handle) disarm() {
	h.state = HandleIdle
	h.dragOrigin = nil
}

// PointerEnter arms the handle unless it is frozen.
func (h *Handle) PointerEnter() {
	h.arm()
}

// PointerMove arms the handle if the enter event was missed, e.g. when the
// handle appeared under a stationary pointer.
func (h *Handle) PointerMove() {
	h.arm()
}

// PointerLeave deregisters the gesture handlers and ends the manipulation,
// even when frozen.
func (h *Handle) PointerLeave() {
	h.disarm()
	h.onManipulationEnd()
}

// PointerDown captures the pointer and emits MoveBegin. A press implies
// the pointer is over the handle, so an idle handle is armed first; this
// covers a handle unfrozen under a stationary pointer.
func (h *Handle) PointerDown(e PointerEvent) {
	if h.frozen {
		return
	}
	h.arm()
	h.captured = true
	h.pointerID = e.PointerID
	h.emit(h, MoveBegin, h.Position(), e.Shift)
}

// PointerUp releases the pointer and emits SelectionToggle.
func (h *Handle) PointerUp(e PointerEvent) {
	if h.frozen {
		return
	}
	if h.captured && h.pointerID == e.PointerID {
		h.captured = false
	}
	h.emit(h, SelectionToggle, h.Position(), e.Shift)
}

// DragBegin snapshots the drag origin.
func (h *Handle) DragBegin() {
	if h.state == HandleIdle || h.dragOrigin != nil {
		return
	}
	origin := h.Position()
	h.dragOrigin = &origin
}

// DragMove reports the origin displaced by the cumulative gesture delta
// (dx, dy), clamped to the paper rectangle, as a Moving event. The handle
// itself does not move; its owner moves it in response.
func (h *Handle) DragMove(dx, dy float64) {
	if h.dragOrigin == nil {
		return
	}
	if dx == 0 && dy == 0 {
		return
	}
	h.state = HandleDragging

	p := geometry.NewPoint2D(h.dragOrigin.X+dx, h.dragOrigin.Y+dy)
	if h.paper != nil {
		p = p.BoundToRect(*h.paper)
	}
	h.emit(h, Moving, p, false)
}

// DragEnd clears the drag origin and emits MoveEnd at the handle's position.
func (h *Handle) DragEnd() {
	if h.dragOrigin == nil {
		return
	}
	h.dragOrigin = nil
	if h.state == HandleDragging {
		h.state = HandleArmed
	}
	h.emit(h, MoveEnd, h.Position(), false)
}

// Move repositions the handle; the drag point follows on the next flush.
func (h *Handle) Move(x, y float64) {
	h.setPosition(x, y)
	h.sched.Request(func() {
		h.point.SetAttr(surface.Attrs{"cx": h.x, "cy": h.y})
	})
}

// Resize does nothing: a handle has no intrinsic size.
func (h *Handle) Resize(width, height float64) {}

// Freeze cancels any active gesture and ends the manipulation, exactly as
// a natural pointer leave would.
func (h *Handle) Freeze() {
	h.base.Freeze()
	h.disarm()
	h.captured = false
	h.onManipulationEnd()
}
