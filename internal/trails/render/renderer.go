package render

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
)

// Renderer turns trail snapshots into drawing calls. It never mutates the
// snapshots it is given.
type Renderer struct {
	style Style
}

// NewRenderer creates a Renderer using style.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style {
	return r.style
}

// Render clears the surface and draws one trail.
func (r *Renderer) Render(s Surface, snap trails.Snapshot) {
	s.Clear()
	r.Draw(s, snap)
}

// Draw draws one trail on top of whatever the surface already holds.
// Hidden trails draw nothing. Layers, bottom to top: path outline, path,
// position markers, start label, dwell markers.
func (r *Renderer) Draw(s Surface, snap trails.Snapshot) {
	if !snap.Drawable() {
		return
	}
	st := r.style
	base := r.trailColor(snap)

	if len(snap.Samples) >= 2 {
		if pts := polyline(snap.Samples); len(pts) >= 2 {
			s.StrokePolyline(pts, Stroke{Color: WithOpacity(st.OutlineColor, st.OutlineOpacity), Width: st.OutlineWidth})
			s.StrokePolyline(pts, Stroke{Color: WithOpacity(base, st.MainLineOpacity), Width: st.MainLineWidth})
		}
	}

	marker := Fill{Color: WithOpacity(base, st.PositionMarkerOpacity)}
	for _, smp := range snap.Samples {
		marker.Title = MarkerTitle(smp)
		s.FillCircle(smp.Point(), st.PositionMarkerSize, marker)
	}

	if len(snap.Samples) >= 2 {
		r.drawStartLabel(s, snap)
	}

	outline := Fill{Color: WithOpacity(st.OutlineColor, st.StationaryMarkerOpacity)}
	inner := Fill{Color: WithOpacity(base, st.StationaryMarkerOpacity)}
	for _, d := range snap.Dwells {
		size := DwellMarkerSize(d.DurationMs, st)
		s.FillCircle(d.Point(), size+2, outline)
		s.FillCircle(d.Point(), size, inner)
		if size > 12 {
			s.DrawText(d.Point(), fmt.Sprintf("%.1fs", float64(d.DurationMs)/1000), Text{Color: labelColor, Size: 10})
		}
	}
}

// MarkerTitle is the hover caption of a position marker.
func MarkerTitle(smp trails.Sample) string {
	return "Time: " + timeutil.FormatReplayTime(float64(smp.ReplayMs)/1000)
}

func (r *Renderer) drawStartLabel(s Surface, snap trails.Snapshot) {
	start := snap.Samples[0]
	label := r.style.StartLabel
	if r.style.LabelWithSubject {
		label = snap.DisplayName()
	}

	s.DrawText(trails.Point{X: start.X, Y: start.Y - 15}, label, Text{
		Color:        labelColor,
		Size:         12,
		Bold:         true,
		Outline:      labelOutline,
		OutlineWidth: 3,
	})
	s.FillPolygon([]trails.Point{
		{X: start.X, Y: start.Y - 10},
		{X: start.X - 5, Y: start.Y - 5},
		{X: start.X + 5, Y: start.Y - 5},
	}, Fill{Color: labelColor})
}

func (r *Renderer) trailColor(snap trails.Snapshot) color.NRGBA {
	c, err := ParseColor(snap.Color)
	if err != nil {
		trails.Diagf("trail %q has unusable colour %q, using fallback", snap.Subject, snap.Color)
		return r.style.FallbackColor
	}
	return c
}

// polyline converts samples to path vertices, dropping consecutive
// duplicates so a dwell does not produce zero-length segments.
func polyline(samples []trails.Sample) []trails.Point {
	pts := make([]trails.Point, 0, len(samples))
	for _, smp := range samples {
		p := smp.Point()
		if n := len(pts); n > 0 && pts[n-1] == p {
			continue
		}
		pts = append(pts, p)
	}
	return pts
}
