package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct{ selected bool }

func (i *item) Select()          { i.selected = true }
func (i *item) Unselect()        { i.selected = false }
func (i *item) IsSelected() bool { return i.selected }

func TestToggleSelection(t *testing.T) {
	tests := []struct {
		name     string
		initial  []bool
		target   int
		multi    bool
		expected []bool
	}{
		{"single selects target only", []bool{true, false, true}, 1, false, []bool{false, true, false}},
		{"single keeps selected target", []bool{true, false}, 0, false, []bool{true, false}},
		{"multi adds target", []bool{true, false}, 1, true, []bool{true, true}},
		{"multi removes target", []bool{true, true}, 0, true, []bool{false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := make([]*item, len(tt.initial))
			for i, sel := range tt.initial {
				all[i] = &item{selected: sel}
			}

			got := ToggleSelection(all, all[tt.target], tt.multi)
			assert.Equal(t, tt.expected[tt.target], got)
			for i, want := range tt.expected {
				assert.Equal(t, want, all[i].selected, "item %d", i)
			}
		})
	}
}

func TestSelected(t *testing.T) {
	a, b, c := &item{}, &item{selected: true}, &item{selected: true}
	assert.Equal(t, []*item{b, c}, Selected([]*item{a, b, c}))
	assert.Empty(t, Selected([]*item{a}))
}
