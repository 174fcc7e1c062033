package canvas

import (
	"fmt"

	"region-annotator/internal/region"
	"region-annotator/internal/style"
)

// baseScope is the style scope holding the canvas-wide region appearance.
// Per-region sheets are attached after it and override it on ties.
const baseScope = "canvas_base_style"

// baseRules give every region element an appearance before any tag colors
// are applied.
var baseRules = []style.Rule{
	{Selector: "." + region.ClassRegion + " .dragPointStyle", Declaration: "fill: #ffffff40; stroke: #000000c0;"},
	{Selector: "." + region.ClassRegion + ":hover .dragPointStyle", Declaration: "fill: #ffffffa0; stroke: #000;"},
	{Selector: "." + region.ClassRegion + "." + region.ClassSelected + " .dragPointStyle", Declaration: "stroke: #ffd500;"},
	{Selector: "." + region.ClassRegion + "." + region.ClassFrozen + " .dragPointStyle", Declaration: "opacity: 0.4;"},
	{Selector: "." + region.ClassPrimaryTagPoint, Declaration: "fill: #fff; stroke: #000;"},
	{Selector: "." + region.ClassSecondaryTag, Declaration: "fill: #ccc;"},
}

// installBaseStyles attaches the base sheet to reg.
func installBaseStyles(reg *style.Registry) error {
	sheet, err := reg.NewSheet(baseScope)
	if err != nil {
		return err
	}
	for i, r := range baseRules {
		if err := sheet.Insert(r, i); err != nil {
			return fmt.Errorf("base style %q: %w", r.String(), err)
		}
	}
	return nil
}
