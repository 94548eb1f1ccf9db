package render

import (
	"fmt"

	"github.com/banshee-data/movement.trails/internal/trails"
)

// OpKind names a recorded drawing operation.
type OpKind string

const (
	OpPolyline OpKind = "polyline"
	OpCircle   OpKind = "circle"
	OpPolygon  OpKind = "polygon"
	OpText     OpKind = "text"
)

// Op is one recorded drawing call. Colours are canvas style strings so the
// browser can replay ops directly onto a 2D context.
type Op struct {
	Kind         OpKind         `json:"op"`
	Points       []trails.Point `json:"points,omitempty"`
	At           *trails.Point  `json:"at,omitempty"`
	Radius       float64        `json:"radius,omitempty"`
	Text         string         `json:"text,omitempty"`
	Title        string         `json:"title,omitempty"`
	Font         string         `json:"font,omitempty"`
	Color        string         `json:"color"`
	Width        float64        `json:"width,omitempty"`
	Outline      string         `json:"outline,omitempty"`
	OutlineWidth float64        `json:"outline_width,omitempty"`
}

// Frame is the JSON form of a Scene.
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Clears int     `json:"clears"`
	Ops    []Op    `json:"ops"`
}

// Scene is a Surface that records drawing calls instead of rasterising
// them. Clear discards the recorded ops and is counted separately.
type Scene struct {
	width, height float64
	clears        int
	ops           []Op
}

// NewScene creates an empty Scene of the given size.
func NewScene(width, height float64) *Scene {
	return &Scene{width: width, height: height}
}

// Clear implements Surface.
func (s *Scene) Clear() {
	s.clears++
	s.ops = s.ops[:0]
}

// StrokePolyline implements Surface.
func (s *Scene) StrokePolyline(pts []trails.Point, st Stroke) {
	s.ops = append(s.ops, Op{
		Kind:   OpPolyline,
		Points: append([]trails.Point(nil), pts...),
		Color:  CSS(st.Color),
		Width:  st.Width,
	})
}

// FillCircle implements Surface.
func (s *Scene) FillCircle(center trails.Point, radius float64, f Fill) {
	s.ops = append(s.ops, Op{Kind: OpCircle, At: &center, Radius: radius, Color: CSS(f.Color), Title: f.Title})
}

// FillPolygon implements Surface.
func (s *Scene) FillPolygon(pts []trails.Point, f Fill) {
	s.ops = append(s.ops, Op{
		Kind:   OpPolygon,
		Points: append([]trails.Point(nil), pts...),
		Color:  CSS(f.Color),
	})
}

// DrawText implements Surface.
func (s *Scene) DrawText(at trails.Point, str string, t Text) {
	op := Op{Kind: OpText, At: &at, Text: str, Font: cssFont(t), Color: CSS(t.Color)}
	if t.OutlineWidth > 0 {
		op.Outline = CSS(t.Outline)
		op.OutlineWidth = t.OutlineWidth
	}
	s.ops = append(s.ops, op)
}

// Ops returns the operations recorded since the last Clear.
func (s *Scene) Ops() []Op {
	out := make([]Op, len(s.ops))
	copy(out, s.ops)
	return out
}

// Clears returns how many times Clear was called.
func (s *Scene) Clears() int {
	return s.clears
}

// Frame returns the scene in its serialisable form.
func (s *Scene) Frame() Frame {
	return Frame{Width: s.width, Height: s.height, Clears: s.clears, Ops: s.Ops()}
}

func cssFont(t Text) string {
	if t.Bold {
		return fmt.Sprintf("bold %gpx sans-serif", t.Size)
	}
	return fmt.Sprintf("%gpx sans-serif", t.Size)
}
