package app

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"region-annotator/internal/tags"
	"region-annotator/pkg/geometry"
)

const catalogueYAML = `
tags:
  - name: car
    accent: "#f00"
    highlight: "#0f0"
    noColor: "#fff"
  - name: red
    accent: "#c00"
    highlight: "#f88"
    noColor: "#fff"
`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoadTagsEmitsEvent(t *testing.T) {
	s := NewState()
	var got *tags.Catalogue
	s.On(EventTagsLoaded, func(data interface{}) { got = data.(*tags.Catalogue) })

	path := writeFile(t, t.TempDir(), "tags.yaml", []byte(catalogueYAML))
	require.NoError(t, s.LoadTags(path))

	require.NotNil(t, got)
	assert.Same(t, got, s.Catalogue)
	assert.Equal(t, path, s.TagsPath)
}

func TestLoadTagsKeepsCatalogueOnError(t *testing.T) {
	s := NewState()
	dir := t.TempDir()
	require.NoError(t, s.LoadTags(writeFile(t, dir, "tags.yaml", []byte(catalogueYAML))))
	before := s.Catalogue

	err := s.LoadTags(writeFile(t, dir, "bad.yaml", []byte("tags: [{name: a}, {name: a}]")))
	assert.Error(t, err)
	assert.Same(t, before, s.Catalogue)
}

func TestDescriptor(t *testing.T) {
	s := NewState()
	require.NoError(t, s.LoadTags(writeFile(t, t.TempDir(), "tags.yaml", []byte(catalogueYAML))))

	d, err := s.Descriptor(&Annotation{ID: "a", Primary: "car", Secondary: []string{"red"}})
	require.NoError(t, err)
	assert.Equal(t, "car, red", d.String())

	d, err = s.Descriptor(&Annotation{ID: "b"})
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = s.Descriptor(&Annotation{ID: "c", Primary: "bus"})
	assert.ErrorIs(t, err, tags.ErrUnknownTag)
}

func TestAnnotationLifecycle(t *testing.T) {
	s := NewState()
	var changes int
	s.On(EventAnnotationsChanged, func(interface{}) { changes++ })

	s.AddAnnotation(&Annotation{ID: "a", Points: []geometry.Point2D{{X: 1, Y: 2}}})
	s.AddAnnotation(&Annotation{ID: "b", Points: []geometry.Point2D{{X: 3, Y: 4}}})
	assert.True(t, s.Modified)

	require.NoError(t, s.MoveAnnotation("a", []geometry.Point2D{{X: 5, Y: 6}}))
	a, ok := s.Annotation("a")
	require.True(t, ok)
	assert.Equal(t, []geometry.Point2D{{X: 5, Y: 6}}, a.Points)

	assert.Error(t, s.MoveAnnotation("zz", nil))

	assert.True(t, s.RemoveAnnotation("b"))
	assert.False(t, s.RemoveAnnotation("b"))
	assert.Len(t, s.Annotations(), 1)
	assert.Equal(t, 4, changes)
}

func TestAddAnnotationReplacesSameID(t *testing.T) {
	s := NewState()
	s.AddAnnotation(&Annotation{ID: "a", Primary: "car", Points: []geometry.Point2D{{X: 1, Y: 1}}})
	s.AddAnnotation(&Annotation{ID: "a", Primary: "red", Points: []geometry.Point2D{{X: 1, Y: 1}}})

	all := s.Annotations()
	require.Len(t, all, 1)
	assert.Equal(t, "red", all[0].Primary)
}

func TestProjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewState()
	require.NoError(t, s.LoadTags(writeFile(t, dir, "tags.yaml", []byte(catalogueYAML))))
	require.NoError(t, s.LoadImage(writePNG(t, dir, "scan.png")))
	s.AddAnnotation(&Annotation{ID: "a", Primary: "car", Points: []geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 2}}})

	path := filepath.Join(dir, "project.json")
	require.NoError(t, s.SaveProject(path))
	assert.False(t, s.Modified)

	loaded := NewState()
	var loadedPath string
	loaded.On(EventProjectLoaded, func(data interface{}) { loadedPath = data.(string) })
	require.NoError(t, loaded.LoadProject(path))

	assert.Equal(t, path, loadedPath)
	require.NotNil(t, loaded.Image)
	assert.Equal(t, 4, loaded.Image.Width())
	_, ok := loaded.Catalogue.Lookup("car")
	assert.True(t, ok)

	all := loaded.Annotations()
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, []geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 2}}, all[0].Points)
}

func TestLoadProjectSkipsEmptyAnnotations(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.json", []byte(`{"version":1,"annotations":[{"id":"a","points":[]},{"id":"b","points":[{"x":1,"y":1}]}]}`))
	s := NewState()
	require.NoError(t, s.LoadProject(path))

	all := s.Annotations()
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)
}

func TestLoadProjectRejectsNewerVersion(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.json", []byte(`{"version":99,"annotations":[]}`))
	assert.Error(t, NewState().LoadProject(path))
}
