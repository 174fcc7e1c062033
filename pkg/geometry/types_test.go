package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundToRect(t *testing.T) {
	r := NewRect(0, 0, 100, 50)

	tests := []struct {
		name string
		in   Point2D
		want Point2D
	}{
		{"inside", NewPoint2D(10, 20), NewPoint2D(10, 20)},
		{"left", NewPoint2D(-5, 20), NewPoint2D(0, 20)},
		{"right", NewPoint2D(150, 20), NewPoint2D(100, 20)},
		{"above", NewPoint2D(10, -1), NewPoint2D(10, 0)},
		{"below", NewPoint2D(10, 75), NewPoint2D(10, 50)},
		{"corner", NewPoint2D(-10, 999), NewPoint2D(0, 50)},
		{"on edge", NewPoint2D(100, 50), NewPoint2D(100, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.BoundToRect(r))
		})
	}
}

func TestBoundToRectWithOrigin(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	got := NewPoint2D(0, 100).BoundToRect(r)
	assert.Equal(t, NewPoint2D(10, 60), got)
	assert.True(t, r.Contains(got))
}

func TestNewSizeClampsNegative(t *testing.T) {
	assert.Equal(t, Size{Width: 0, Height: 3}, NewSize(-2, 3))
}

func TestRectCenter(t *testing.T) {
	assert.Equal(t, NewPoint2D(25, 40), NewRect(10, 20, 30, 40).Center())
}
