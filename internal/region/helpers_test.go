package region

import (
	"testing"

	"github.com/stretchr/testify/require"

	"region-annotator/internal/frame"
	"region-annotator/internal/style"
	"region-annotator/internal/surface"
	"region-annotator/internal/tags"
	"region-annotator/pkg/geometry"
)

type event struct {
	Type  ChangeEventType
	X, Y  float64
	Multi bool
}

type recorder struct {
	events []event
	begins int
	ends   int
}

func (rec *recorder) onChange(_ Component, x, y, _, _ float64, _ []geometry.Point2D, ev ChangeEventType, multi bool) {
	rec.events = append(rec.events, event{Type: ev, X: x, Y: y, Multi: multi})
}

func (rec *recorder) types() []ChangeEventType {
	out := make([]ChangeEventType, len(rec.events))
	for i, e := range rec.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	scene    *surface.Scene
	registry *style.Registry
	sched    *frame.Scheduler
	rec      *recorder
}

func newFixture() *fixture {
	return &fixture{
		scene:    surface.NewScene(),
		registry: style.NewRegistry(),
		sched:    frame.NewScheduler(nil),
		rec:      &recorder{},
	}
}

func (f *fixture) region(t *testing.T, paper *geometry.Rect, at geometry.Point2D, d *tags.Descriptor, tagOpts *tags.UpdateOptions) *Region {
	t.Helper()
	r, err := New(f.scene, f.registry, f.sched, paper, []geometry.Point2D{at}, "r", d, Options{
		OnManipulationBegin: func(*Region) { f.rec.begins++ },
		OnManipulationEnd:   func(*Region) { f.rec.ends++ },
		TagOptions:          tagOpts,
	})
	require.NoError(t, err)
	r.OnChange(f.rec.onChange)
	f.sched.Flush()
	return r
}

func carTags(secondary ...string) *tags.Descriptor {
	car := tags.Record{Name: "car", ColorAccent: "#f00", ColorHighlight: "#0f0", ColorNoColor: "#fff"}
	d := tags.NewDescriptor(&car)
	for i, name := range secondary {
		d.Secondary = append(d.Secondary, tags.Record{
			Name:           name,
			ColorAccent:    []string{"#00f", "#0ff", "#ff0", "#f0f"}[i%4],
			ColorHighlight: "#888",
			ColorNoColor:   "#fff",
		})
	}
	return d
}
