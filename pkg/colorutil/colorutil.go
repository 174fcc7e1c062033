// Package colorutil provides shared color utilities for region rendering.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.NRGBA{}
)

// ErrInvalidColor is returned when a color token cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Parse converts a color token as used in tag records and style
// declarations (#rgb, #rgba, #rrggbb, #rrggbbaa or a few names) to NRGBA.
func Parse(token string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(token))
	switch s {
	case "none", "transparent":
		return Transparent, nil
	case "white":
		return White, nil
	case "black":
		return Black, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, token)
	}
	hex := s[1:]

	// Expand short forms: #rgb -> #rrggbb, #rgba -> #rrggbbaa
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, ch := range hex {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, token)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, token)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// WithOpacity returns c with its alpha scaled by opacity (0.0 - 1.0).
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}
