package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneAttachesToRoot(t *testing.T) {
	s := NewScene()
	c := s.Circle(1, 2, 3)
	require.Len(t, s.Root().Children(), 1)
	assert.Equal(t, s.Root(), c.Parent())
	assert.Equal(t, KindCircle, c.Kind())
	assert.Equal(t, 3.0, c.Attr("r"))
}

func TestAddReparents(t *testing.T) {
	s := NewScene()
	g := s.Group()
	r := s.Rect(0, 0, 6, 6)
	g.Add(r)

	assert.Equal(t, g, r.Parent())
	assert.Len(t, s.Root().Children(), 1)
	assert.Equal(t, []Element{r}, g.Children())

	r.Remove()
	assert.Nil(t, r.Parent())
	assert.Empty(t, g.Children())
	r.Remove()
}

func TestClassesAndAttrs(t *testing.T) {
	s := NewScene()
	g := s.Group()
	g.AddClass("regionStyle")
	g.AddClass("selected")
	g.AddClass("selected")
	assert.Equal(t, []string{"regionStyle", "selected"}, g.Classes())
	g.RemoveClass("selected")
	assert.False(t, g.HasClass("selected"))
	g.RemoveClass("missing")

	r := s.Rect(1, 2, 3, 4)
	r.SetAttr(Attrs{"x": 10})
	assert.Equal(t, 10.0, r.Attr("x"))
	assert.Equal(t, 2.0, r.Attr("y"))
	assert.Equal(t, 0.0, g.Attr("x"))

	title := s.Title("car")
	assert.Equal(t, "car", title.Text())
	title.SetText("")
	assert.Equal(t, "", title.Text())

	g.SetHovered(true)
	assert.True(t, g.IsHovered())
}

func TestWalkAndFindTitle(t *testing.T) {
	s := NewScene()
	g := s.Group()
	title := s.Title("x")
	c := s.Circle(0, 0, 1)
	g.Add(title)
	g.Add(c)

	var kinds []Kind
	var depth []int
	Walk(s.Root(), func(e Element, path []Element) bool {
		kinds = append(kinds, e.Kind())
		depth = append(depth, len(path))
		return true
	})
	assert.Equal(t, []Kind{KindGroup, KindGroup, KindTitle, KindCircle}, kinds)
	assert.Equal(t, []int{1, 2, 3, 3}, depth)

	got, ok := FindTitle(g)
	require.True(t, ok)
	assert.Equal(t, title, got)

	_, ok = FindTitle(s.Root())
	assert.False(t, ok)

	visited := 0
	Walk(s.Root(), func(e Element, path []Element) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}
