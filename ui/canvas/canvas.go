// Package canvas provides an image canvas hosting annotation regions.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"

	"region-annotator/internal/frame"
	bgimage "region-annotator/internal/image"
	"region-annotator/internal/region"
	"region-annotator/internal/style"
	"region-annotator/internal/surface"
	"region-annotator/internal/tags"
	"region-annotator/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	// mousePointerID identifies the mouse in handle pointer events.
	mousePointerID = 1
)

// RegionChangeFunc receives the change events of regions on the canvas.
type RegionChangeFunc func(r *region.Region, event region.ChangeEventType, multiSelection bool)

// ImageCanvas displays a background image with annotation regions on top
// and routes pointer input to the region handles.
type ImageCanvas struct {
	widget.BaseWidget

	// mu guards the region scene. Input handlers, the raster draw and Do
	// hold it; callbacks run with it held.
	mu sync.Mutex

	layer *bgimage.Layer

	// Region scene
	scene   *surface.Scene
	styles  *style.Registry
	frames  *frame.Scheduler
	regions []*region.Region

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Pointer routing. captured holds the region whose handle owns the
	// pointer between press and release.
	hovered      *region.Region
	captured     *region.Region
	captureShift bool
	dragDX       float64
	dragDY       float64
	lastPointer  geometry.Point2D

	// Container
	scroll  *zoomScroll
	content *regionContent
	imgSize fyne.Size

	// Last rendered output for sampling
	lastOutput *image.RGBA

	// Callbacks
	onZoomChange   func(zoom float64)
	onRegionChange RegionChangeFunc
	onManipulation func(r *region.Region, active bool)
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *ImageCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *ImageCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Use wheel for zoom, not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// regionContent wraps the raster to receive pointer events.
type regionContent struct {
	widget.BaseWidget
	canvas *ImageCanvas
	raster *fynecanvas.Raster
}

var (
	_ desktop.Hoverable = (*regionContent)(nil)
	_ desktop.Mouseable = (*regionContent)(nil)
	_ fyne.Draggable    = (*regionContent)(nil)
	_ fyne.Scrollable   = (*regionContent)(nil)
)

func newRegionContent(ic *ImageCanvas, raster *fynecanvas.Raster) *regionContent {
	rc := &regionContent{
		canvas: ic,
		raster: raster,
	}
	rc.ExtendBaseWidget(rc)
	return rc
}

func (rc *regionContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(rc.raster)
}

func (rc *regionContent) MinSize() fyne.Size {
	return rc.raster.MinSize()
}

// toImage converts a widget position to image coordinates.
func (rc *regionContent) toImage(pos fyne.Position) geometry.Point2D {
	// ev.Position is relative to viewport, add scroll offset for content position
	scrollOffset := rc.canvas.scroll.Offset()
	x, y := rc.canvas.CanvasToImage(float64(pos.X+scrollOffset.X), float64(pos.Y+scrollOffset.Y))
	return geometry.NewPoint2D(x, y)
}

func (rc *regionContent) MouseIn(ev *desktop.MouseEvent) {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	rc.canvas.pointerMoved(rc.toImage(ev.Position))
}

func (rc *regionContent) MouseMoved(ev *desktop.MouseEvent) {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	rc.canvas.pointerMoved(rc.toImage(ev.Position))
}

func (rc *regionContent) MouseOut() {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	rc.canvas.pointerExited()
}

func (rc *regionContent) MouseDown(ev *desktop.MouseEvent) {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	rc.canvas.pointerPressed(ev.Modifier&fyne.KeyModifierShift != 0)
}

func (rc *regionContent) MouseUp(ev *desktop.MouseEvent) {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	rc.canvas.pointerReleased(ev.Modifier&fyne.KeyModifierShift != 0)
}

func (rc *regionContent) Dragged(ev *fyne.DragEvent) {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	rc.canvas.pointerDragged(float64(ev.Dragged.DX)/rc.canvas.zoom, float64(ev.Dragged.DY)/rc.canvas.zoom)
}

// DragEnd releases the handle when the driver reports the end of a drag
// without a matching MouseUp.
func (rc *regionContent) DragEnd() {
	rc.canvas.mu.Lock()
	defer rc.canvas.mu.Unlock()
	rc.canvas.pointerReleased(rc.canvas.captureShift)
}

func (rc *regionContent) Scrolled(ev *fyne.ScrollEvent) {
	// Use mouse wheel for zooming
	if ev.Scrolled.DY > 0 {
		rc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		rc.canvas.ZoomOut()
	}
}

// NewImageCanvas creates a new image canvas.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		zoom:    1.0,
		imgSize: fyne.NewSize(400, 300),
		scene:   surface.NewScene(),
		styles:  style.NewRegistry(),
	}
	if err := installBaseStyles(ic.styles); err != nil {
		// The base rules are constants; failing here is a programming error.
		panic(err)
	}

	// Create the raster for drawing
	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.raster.SetMinSize(ic.imgSize)

	// Any visual write arms one repaint; the draw pass flushes the batch.
	ic.frames = frame.NewScheduler(ic.raster.Refresh)

	ic.content = newRegionContent(ic, ic.raster)
	ic.scroll = newZoomScroll(ic.content, ic)

	ic.ExtendBaseWidget(ic)
	return ic
}

// Container returns the canvas container for embedding in layouts.
func (ic *ImageCanvas) Container() fyne.CanvasObject {
	return ic.scroll
}

// SetLayer sets the background layer. Regions added afterwards are bounded
// by the layer's image.
func (ic *ImageCanvas) SetLayer(layer *bgimage.Layer) {
	ic.layer = layer
	ic.updateContentSize()
}

// Layer returns the background layer.
func (ic *ImageCanvas) Layer() *bgimage.Layer {
	return ic.layer
}

// paperRect returns the drag bounds for new regions.
func (ic *ImageCanvas) paperRect() *geometry.Rect {
	if ic.layer == nil || ic.layer.Image == nil {
		return nil
	}
	r := ic.layer.Bounds()
	return &r
}

// AddRegion creates a region anchored at points[0] and shows it.
func (ic *ImageCanvas) AddRegion(points []geometry.Point2D, id string, d *tags.Descriptor, opts *tags.UpdateOptions) (*region.Region, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	r, err := region.New(ic.scene, ic.styles, ic.frames, ic.paperRect(), points, id, d, region.Options{
		OnManipulationBegin: func(r *region.Region) { ic.manipulation(r, true) },
		OnManipulationEnd:   func(r *region.Region) { ic.manipulation(r, false) },
		TagOptions:          opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add region %q: %w", id, err)
	}
	r.OnChange(func(_ region.Component, x, y, _, _ float64, _ []geometry.Point2D, event region.ChangeEventType, multi bool) {
		ic.regionChanged(r, x, y, event, multi)
	})
	ic.regions = append(ic.regions, r)
	return r, nil
}

// RemoveRegion detaches r from the scene and releases its styles.
func (ic *ImageCanvas) RemoveRegion(r *region.Region) {
	defer ic.Refresh()
	ic.mu.Lock()
	defer ic.mu.Unlock()
	for i, cur := range ic.regions {
		if cur != r {
			continue
		}
		ic.regions = append(ic.regions[:i], ic.regions[i+1:]...)
		if ic.hovered == r {
			ic.hovered = nil
		}
		if ic.captured == r {
			ic.captured = nil
		}
		r.Node().Remove()
		r.RemoveStyles()
		return
	}
}

// Regions returns the regions in drawing order.
func (ic *ImageCanvas) Regions() []*region.Region {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return append([]*region.Region(nil), ic.regions...)
}

// Hovered returns the region under the pointer, if any.
func (ic *ImageCanvas) Hovered() *region.Region {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.hovered
}

// Do runs fn with the region scene locked, for updates made outside the
// canvas's own event handlers. fn must not call the canvas's region methods.
func (ic *ImageCanvas) Do(fn func(regions []*region.Region)) {
	ic.mu.Lock()
	fn(ic.regions)
	ic.mu.Unlock()
	ic.Refresh()
}

// regionAt returns the topmost region whose handle contains p.
func (ic *ImageCanvas) regionAt(p geometry.Point2D) *region.Region {
	for i := len(ic.regions) - 1; i >= 0; i-- {
		if ic.regions[i].Handle().HitTest(p) {
			return ic.regions[i]
		}
	}
	return nil
}

func (ic *ImageCanvas) setHovered(r *region.Region) {
	if ic.hovered == r {
		return
	}
	if ic.hovered != nil {
		ic.hovered.Node().SetHovered(false)
		ic.hovered.Handle().PointerLeave()
	}
	ic.hovered = r
	if r != nil {
		r.Node().SetHovered(true)
		r.Handle().PointerEnter()
	}
}

// pointerMoved updates hover state. While a handle holds the pointer,
// boundary events wait for the release.
func (ic *ImageCanvas) pointerMoved(p geometry.Point2D) {
	ic.lastPointer = p
	if ic.captured != nil {
		return
	}
	hit := ic.regionAt(p)
	if hit != nil && hit == ic.hovered {
		hit.Handle().PointerMove()
	} else {
		ic.setHovered(hit)
	}
	ic.Refresh()
}

func (ic *ImageCanvas) pointerExited() {
	if ic.captured != nil {
		return
	}
	ic.setHovered(nil)
	ic.Refresh()
}

func (ic *ImageCanvas) pointerPressed(shift bool) {
	r := ic.hovered
	if r == nil {
		return
	}
	h := r.Handle()
	h.PointerMove()
	h.PointerDown(region.PointerEvent{PointerID: mousePointerID, Shift: shift})
	if _, ok := h.Captured(); !ok {
		// Frozen handles do not take the pointer.
		return
	}
	h.DragBegin()
	ic.captured = r
	ic.captureShift = shift
	ic.dragDX = 0
	ic.dragDY = 0
}

// pointerDragged receives incremental movement in image units.
func (ic *ImageCanvas) pointerDragged(dx, dy float64) {
	ic.lastPointer = ic.lastPointer.Add(geometry.NewPoint2D(dx, dy))
	if ic.captured == nil {
		return
	}
	ic.dragDX += dx
	ic.dragDY += dy
	ic.captured.Handle().DragMove(ic.dragDX, ic.dragDY)
}

func (ic *ImageCanvas) pointerReleased(shift bool) {
	r := ic.captured
	if r == nil {
		return
	}
	ic.captured = nil
	h := r.Handle()
	h.PointerUp(region.PointerEvent{PointerID: mousePointerID, Shift: shift})
	h.DragEnd()
	// Deliver the boundary events held during the capture.
	ic.pointerMoved(ic.lastPointer)
}

func (ic *ImageCanvas) regionChanged(r *region.Region, x, y float64, event region.ChangeEventType, multi bool) {
	if event != region.Moving {
		log.Printf("regions: %s %s at (%.1f, %.1f) multi=%v", r.ID, event, x, y, multi)
	}
	if ic.onRegionChange != nil {
		ic.onRegionChange(r, event, multi)
	}
	ic.Refresh()
}

func (ic *ImageCanvas) manipulation(r *region.Region, active bool) {
	if ic.onManipulation != nil {
		ic.onManipulation(r, active)
	}
}

// SetZoom sets the zoom level.
func (ic *ImageCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	ic.zoom = zoom
	ic.updateContentSize()

	if ic.onZoomChange != nil {
		ic.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (ic *ImageCanvas) GetZoom() float64 {
	return ic.zoom
}

// ZoomIn increases the zoom level.
func (ic *ImageCanvas) ZoomIn() {
	ic.SetZoom(ic.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (ic *ImageCanvas) ZoomOut() {
	ic.SetZoom(ic.zoom / zoomStep)
}

// OnZoomChange sets a callback for zoom changes.
func (ic *ImageCanvas) OnZoomChange(callback func(zoom float64)) {
	ic.onZoomChange = callback
}

// OnRegionChange sets a callback for region change events.
func (ic *ImageCanvas) OnRegionChange(callback RegionChangeFunc) {
	ic.onRegionChange = callback
}

// OnManipulation sets a callback invoked when a region manipulation begins
// (active true) or ends.
func (ic *ImageCanvas) OnManipulation(callback func(r *region.Region, active bool)) {
	ic.onManipulation = callback
}

// GetRenderedOutput returns the last rendered canvas output for sampling.
func (ic *ImageCanvas) GetRenderedOutput() *image.RGBA {
	return ic.lastOutput
}

// Refresh refreshes the canvas display.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

// CanvasToImage converts canvas coordinates to image coordinates.
func (ic *ImageCanvas) CanvasToImage(canvasX, canvasY float64) (imgX, imgY float64) {
	imgX = canvasX / ic.zoom
	imgY = canvasY / ic.zoom
	return
}

// updateContentSize updates the content size based on image and zoom.
func (ic *ImageCanvas) updateContentSize() {
	if ic.layer == nil || ic.layer.Width() == 0 || ic.layer.Height() == 0 {
		ic.imgSize = fyne.NewSize(400, 300)
	} else {
		width := float32(float64(ic.layer.Width()) * ic.zoom)
		height := float32(float64(ic.layer.Height()) * ic.zoom)
		ic.imgSize = fyne.NewSize(width, height)
	}

	ic.raster.SetMinSize(ic.imgSize)
	ic.raster.Resize(ic.imgSize)
	if ic.content != nil {
		ic.content.Resize(ic.imgSize)
		ic.content.Refresh()
	}
	ic.raster.Refresh()
	if ic.scroll != nil {
		ic.scroll.Refresh()
	}
}

// draw is the raster drawing function. Pending visual writes are
// committed before anything is painted.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.frames.Flush()

	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Fill with black background (set alpha channel)
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	if ic.layer != nil && ic.layer.Image != nil && ic.layer.Visible {
		ic.compositeLayer(output, ic.layer, w, h)
	}

	// Store for sampling
	ic.lastOutput = output

	ic.drawScene(output)

	if r := ic.hovered; r != nil && ic.captured == nil && r.Tooltip() != "" {
		p := r.Position()
		drawTooltip(output, r.Tooltip(), int(p.X*ic.zoom)+region.HandleRadius+4, int(p.Y*ic.zoom)+region.HandleRadius)
	}

	return output
}

// compositeLayer draws the background layer onto the output with opacity.
func (ic *ImageCanvas) compositeLayer(output *image.RGBA, layer *bgimage.Layer, w, h int) {
	opacity := layer.Opacity
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Convert canvas coords to image coords (accounting for zoom)
			srcX := int(float64(x) / ic.zoom)
			srcY := int(float64(y) / ic.zoom)
			if srcX >= layer.Width() || srcY >= layer.Height() {
				continue
			}

			sr, sg, sb, sa := layer.PixelAt(srcX, srcY).RGBA()
			effectiveAlpha := float64(sa) / 0xffff * opacity
			if effectiveAlpha <= 0.001 {
				// Near transparent: keep background (black)
				continue
			}
			blend(output, x, y, color.NRGBA{
				R: uint8(sr >> 8),
				G: uint8(sg >> 8),
				B: uint8(sb >> 8),
				A: uint8(effectiveAlpha * 255),
			})
		}
	}
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *imageCanvasRenderer) Destroy() {}
