// Package render draws trail snapshots onto a Surface.
//
// Coordinates are the replay viewer's drawing coordinates: origin at the
// top-left, y growing downwards. Surfaces that use a different convention
// convert internally.
package render

import (
	"image/color"

	"github.com/banshee-data/movement.trails/internal/trails"
)

// Stroke describes a line. Color carries the opacity in its alpha channel.
type Stroke struct {
	Color color.NRGBA
	Width float64
}

// Fill describes a solid fill. Title is an optional hover caption; surfaces
// without hover support ignore it.
type Fill struct {
	Color color.NRGBA
	Title string
}

// Text describes a label. Text is always drawn centred on its anchor,
// horizontally and vertically. A zero OutlineWidth draws no outline.
type Text struct {
	Color        color.NRGBA
	Size         float64
	Bold         bool
	Outline      color.NRGBA
	OutlineWidth float64
}

// Surface is the drawing target supplied by the host for each frame.
type Surface interface {
	// Clear erases everything drawn so far.
	Clear()
	StrokePolyline(pts []trails.Point, s Stroke)
	FillCircle(center trails.Point, radius float64, f Fill)
	FillPolygon(pts []trails.Point, f Fill)
	DrawText(at trails.Point, s string, t Text)
}
