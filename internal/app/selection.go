package app

// Selectable is anything the selection policy can mark.
type Selectable interface {
	Select()
	Unselect()
	IsSelected() bool
}

// ToggleSelection applies a selection toggle on target. With multi, only
// target flips. Otherwise target becomes the sole selected item. It returns
// whether target ends up selected.
func ToggleSelection[T Selectable](all []T, target T, multi bool) bool {
	if multi {
		if target.IsSelected() {
			target.Unselect()
			return false
		}
		target.Select()
		return true
	}

	for _, s := range all {
		if Selectable(s) != Selectable(target) && s.IsSelected() {
			s.Unselect()
		}
	}
	target.Select()
	return true
}

// Selected returns the selected items of all, in order.
func Selected[T Selectable](all []T) []T {
	var out []T
	for _, s := range all {
		if s.IsSelected() {
			out = append(out, s)
		}
	}
	return out
}
