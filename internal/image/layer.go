// Package image provides background image loading for the annotation canvas.
package image

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"region-annotator/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Layer is a background image shown beneath the regions.
type Layer struct {
	Path    string      // Original file path
	Image   image.Image // Loaded image data
	Visible bool        // Layer visibility
	Opacity float64     // Layer opacity (0.0 - 1.0)
}

// NewLayer creates a new Layer with default settings.
func NewLayer() *Layer {
	return &Layer{
		Visible: true,
		Opacity: 1.0,
	}
}

// Load loads a PNG, JPEG or TIFF image from the specified path and returns a Layer.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	layer := NewLayer()
	layer.Path = path
	layer.Image = img
	return layer, nil
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Bounds returns the image area in image coordinates, origin at 0,0.
// Regions on this layer are clamped to it while dragging.
func (l *Layer) Bounds() geometry.Rect {
	return geometry.NewRect(0, 0, float64(l.Width()), float64(l.Height()))
}

// PixelAt returns the color at the specified pixel coordinates.
func (l *Layer) PixelAt(x, y int) color.Color {
	if l.Image == nil {
		return color.Black
	}
	bounds := l.Image.Bounds()
	x += bounds.Min.X
	y += bounds.Min.Y
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return color.Black
	}
	return l.Image.At(x, y)
}
