package mainwindow

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"region-annotator/internal/app"
	"region-annotator/internal/region"
	"region-annotator/pkg/geometry"
	"region-annotator/ui/prefs"
)

func newTestWindow(t *testing.T) *MainWindow {
	t.Helper()
	a := test.NewApp()
	p, err := prefs.LoadFile(filepath.Join(t.TempDir(), "preferences.json"))
	require.NoError(t, err)
	mw := New(a, app.NewState(), p)
	t.Cleanup(mw.Close)
	return mw
}

func TestAddRegionCreatesAnnotation(t *testing.T) {
	mw := newTestWindow(t)

	mw.onAddRegion()
	mw.onAddRegion()

	all := mw.state.Annotations()
	require.Len(t, all, 2)
	assert.Equal(t, "r1", all[0].ID)
	assert.Equal(t, "r2", all[1].ID)
	assert.Equal(t, mw.state.Catalogue.Tags[0].Name, all[0].Primary)
	assert.Equal(t, []geometry.Point2D{{X: defaultRegionXY, Y: defaultRegionXY}}, all[0].Points)

	require.Len(t, mw.regions, 2)
	assert.Len(t, mw.canvas.Regions(), 2)
	assert.Equal(t, mw.state.Catalogue.Tags[0].Name, mw.regions[0].Tooltip())
	assert.True(t, mw.state.Modified)
}

func TestDeleteSelected(t *testing.T) {
	mw := newTestWindow(t)
	mw.onAddRegion()
	mw.onAddRegion()

	mw.regions[0].Select()
	mw.onDeleteSelected()

	all := mw.state.Annotations()
	require.Len(t, all, 1)
	assert.Equal(t, "r2", all[0].ID)
	require.Len(t, mw.canvas.Regions(), 1)
	assert.Equal(t, "r2", mw.canvas.Regions()[0].ID)
}

func TestSelectionToggleIsExclusive(t *testing.T) {
	mw := newTestWindow(t)
	mw.onAddRegion()
	mw.onAddRegion()
	first, second := mw.regions[0], mw.regions[1]

	mw.onRegionChange(first, region.SelectionToggle, false)
	mw.onRegionChange(second, region.SelectionToggle, false)
	assert.False(t, first.IsSelected())
	assert.True(t, second.IsSelected())

	mw.onRegionChange(first, region.SelectionToggle, true)
	assert.True(t, first.IsSelected())
	assert.True(t, second.IsSelected())
}

func TestMoveEndRecordsPoints(t *testing.T) {
	mw := newTestWindow(t)
	mw.onAddRegion()
	r := mw.regions[0]

	r.Move(70, 80)
	mw.onRegionChange(r, region.MoveEnd, false)

	a, ok := mw.state.Annotation(r.ID)
	require.True(t, ok)
	assert.Equal(t, []geometry.Point2D{{X: 70, Y: 80}}, a.Points)
}

func TestFreezeAll(t *testing.T) {
	mw := newTestWindow(t)
	mw.onAddRegion()

	mw.setFrozen(true)
	assert.True(t, mw.regions[0].IsFrozen())
	mw.setFrozen(false)
	assert.False(t, mw.regions[0].IsFrozen())
}

func TestToggleBackground(t *testing.T) {
	mw := newTestWindow(t)
	mw.onAddRegion()
	assert.True(t, mw.backgroundItem.Checked)

	mw.onToggleBackground()
	assert.False(t, mw.prefs.ShowBackground())
	assert.False(t, mw.backgroundItem.Checked)
	assert.Equal(t, mw.state.Catalogue.Tags[0].Name, mw.regions[0].Tooltip())

	mw.onToggleBackground()
	assert.True(t, mw.prefs.ShowBackground())
}

func TestOpenProjectRebuildsRegions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "annotations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": 1,
  "annotations": [
    {"id": "a", "points": [{"x": 10, "y": 12}], "primary": "car"},
    {"id": "b", "points": [{"x": 30, "y": 40}], "secondary": ["occluded"]}
  ]
}`), 0o644))

	mw := newTestWindow(t)
	mw.onAddRegion()
	require.NoError(t, mw.Open(path))

	require.Len(t, mw.regions, 2)
	assert.Equal(t, "a", mw.regions[0].ID)
	assert.Equal(t, geometry.NewPoint2D(30, 40), mw.regions[1].Position())
	assert.Equal(t, "occluded", mw.regions[1].Tooltip())
	assert.Len(t, mw.canvas.Regions(), 2)
	assert.Contains(t, mw.Title(), "annotations.json")
}

func TestAnnotationLabel(t *testing.T) {
	assert.Equal(t, "r1", annotationLabel(&app.Annotation{ID: "r1"}))
	assert.Equal(t, "r1: car, red (3, 4)", annotationLabel(&app.Annotation{
		ID:        "r1",
		Primary:   "car",
		Secondary: []string{"red"},
		Points:    []geometry.Point2D{{X: 3, Y: 4}},
	}))
}
