package canvas

import (
	"image"
	"image/color"
	"strconv"

	"region-annotator/internal/style"
	"region-annotator/internal/surface"
	"region-annotator/pkg/colorutil"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// paint is the resolved appearance of one scene element.
type paint struct {
	fill      color.NRGBA
	stroke    color.NRGBA
	hasFill   bool
	hasStroke bool
}

// resolvePaint looks up fill, stroke and opacity for the last element of path.
// Unparseable color tokens are treated as absent.
func (ic *ImageCanvas) resolvePaint(path []surface.Element) paint {
	elems := make([]style.Element, len(path))
	for i, e := range path {
		elems[i] = e
	}
	st := ic.styles.Resolve(elems)

	opacity := 1.0
	if v, ok := st.Get("opacity"); ok {
		if o, err := strconv.ParseFloat(v, 64); err == nil {
			opacity = o
		}
	}

	var p paint
	if v, ok := st.Get("fill"); ok {
		if c, err := colorutil.Parse(v); err == nil {
			p.fill = colorutil.WithOpacity(c, opacity)
			p.hasFill = true
		}
	}
	if v, ok := st.Get("stroke"); ok {
		if c, err := colorutil.Parse(v); err == nil {
			p.stroke = colorutil.WithOpacity(c, opacity)
			p.hasStroke = true
		}
	}
	return p
}

// drawScene draws every circle and rect of the scene in tree order.
func (ic *ImageCanvas) drawScene(output *image.RGBA) {
	surface.Walk(ic.scene.Root(), func(e surface.Element, path []surface.Element) bool {
		switch e.Kind() {
		case surface.KindCircle:
			ic.drawCircle(output, e.Attr("cx"), e.Attr("cy"), e.Attr("r"), ic.resolvePaint(path))
		case surface.KindRect:
			ic.drawRect(output, e.Attr("x"), e.Attr("y"), e.Attr("width"), e.Attr("height"), ic.resolvePaint(path))
		}
		return true
	})
}

// blend composites c over the pixel at (x, y).
func blend(output *image.RGBA, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}.In(output.Bounds())) || c.A == 0 {
		return
	}
	if c.A == 255 {
		output.Set(x, y, c)
		return
	}
	a := float64(c.A) / 255
	inv := 1 - a
	dst := output.RGBAAt(x, y)
	output.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(c.R)*a + float64(dst.R)*inv),
		G: uint8(float64(c.G)*a + float64(dst.G)*inv),
		B: uint8(float64(c.B)*a + float64(dst.B)*inv),
		A: 255,
	})
}

// drawCircle draws a circle given in image coordinates, filled and then
// outlined with a one pixel ring.
func (ic *ImageCanvas) drawCircle(output *image.RGBA, x, y, radius float64, p paint) {
	cx := x * ic.zoom
	cy := y * ic.zoom
	r := radius * ic.zoom

	minX := int(cx - r - 1)
	maxX := int(cx + r + 1)
	minY := int(cy - r - 1)
	maxY := int(cy + r + 1)

	r2 := r * r
	innerR2 := (r - 1) * (r - 1)

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			// Distance from center squared
			dx := float64(px) - cx
			dy := float64(py) - cy
			dist2 := dx*dx + dy*dy
			if dist2 > r2 {
				continue
			}
			if p.hasStroke && dist2 >= innerR2 {
				blend(output, px, py, p.stroke)
			} else if p.hasFill {
				blend(output, px, py, p.fill)
			}
		}
	}
}

// drawRect draws a rectangle given in image coordinates.
func (ic *ImageCanvas) drawRect(output *image.RGBA, x, y, width, height float64, p paint) {
	x1 := int(x * ic.zoom)
	y1 := int(y * ic.zoom)
	x2 := int((x+width)*ic.zoom) - 1
	y2 := int((y+height)*ic.zoom) - 1

	for py := y1; py <= y2; py++ {
		for px := x1; px <= x2; px++ {
			edge := px == x1 || px == x2 || py == y1 || py == y2
			if p.hasStroke && edge {
				blend(output, px, py, p.stroke)
			} else if p.hasFill {
				blend(output, px, py, p.fill)
			}
		}
	}
}

// drawTooltip draws text on a dark box with its top-left corner at (x, y)
// in canvas pixels.
func drawTooltip(output *image.RGBA, text string, x, y int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	bg := color.NRGBA{A: 0xb0}
	for py := y - 2; py < y+height+2; py++ {
		for px := x - 3; px < x+width+3; px++ {
			blend(output, px, py, bg)
		}
	}

	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(colorutil.White),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
