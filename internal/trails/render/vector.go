package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	xfont "golang.org/x/image/font"
	_ "gonum.org/v1/plot" // registers the Liberation fonts with font.DefaultCache
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/banshee-data/movement.trails/internal/trails"
)

// VectorSurface adapts a gonum/plot vg.Canvas to Surface. vg puts the origin
// bottom-left, so y is flipped against the canvas height. One drawing unit
// maps to one vg point.
type VectorSurface struct {
	c          vg.Canvas
	w, h       float64
	background color.Color
}

// NewVectorSurface wraps c, which must be width x height points. Clear
// paints background over the whole canvas; a nil background makes Clear a
// no-op, which suits freshly created canvases.
func NewVectorSurface(c vg.Canvas, width, height float64, background color.Color) *VectorSurface {
	return &VectorSurface{c: c, w: width, h: height, background: background}
}

func (v *VectorSurface) pt(p trails.Point) vg.Point {
	return vg.Point{X: vg.Length(p.X), Y: vg.Length(v.h - p.Y)}
}

// Clear implements Surface.
func (v *VectorSurface) Clear() {
	if v.background == nil {
		return
	}
	var p vg.Path
	p.Move(vg.Point{})
	p.Line(vg.Point{X: vg.Length(v.w)})
	p.Line(vg.Point{X: vg.Length(v.w), Y: vg.Length(v.h)})
	p.Line(vg.Point{Y: vg.Length(v.h)})
	p.Close()
	v.c.SetColor(v.background)
	v.c.Fill(p)
}

// StrokePolyline implements Surface.
func (v *VectorSurface) StrokePolyline(pts []trails.Point, s Stroke) {
	if len(pts) < 2 {
		return
	}
	var p vg.Path
	p.Move(v.pt(pts[0]))
	for _, q := range pts[1:] {
		p.Line(v.pt(q))
	}
	v.c.SetLineWidth(vg.Length(s.Width))
	v.c.SetColor(s.Color)
	v.c.Stroke(p)
}

// FillCircle implements Surface.
func (v *VectorSurface) FillCircle(center trails.Point, radius float64, f Fill) {
	c := v.pt(center)
	r := vg.Length(radius)
	var p vg.Path
	p.Move(vg.Point{X: c.X + r, Y: c.Y})
	p.Arc(c, r, 0, 2*math.Pi)
	p.Close()
	v.c.SetColor(f.Color)
	v.c.Fill(p)
}

// FillPolygon implements Surface.
func (v *VectorSurface) FillPolygon(pts []trails.Point, f Fill) {
	if len(pts) < 3 {
		return
	}
	var p vg.Path
	p.Move(v.pt(pts[0]))
	for _, q := range pts[1:] {
		p.Line(v.pt(q))
	}
	p.Close()
	v.c.SetColor(f.Color)
	v.c.Fill(p)
}

// DrawText implements Surface. The outline is approximated by drawing the
// text in the outline colour at offsets around the anchor.
func (v *VectorSurface) DrawText(at trails.Point, s string, t Text) {
	weight := xfont.WeightNormal
	if t.Bold {
		weight = xfont.WeightBold
	}
	face := font.DefaultCache.Lookup(font.Font{Typeface: "Liberation", Variant: "Sans", Weight: weight}, vg.Length(t.Size))
	ext := face.Extents()

	c := v.pt(at)
	origin := vg.Point{
		X: c.X - face.Width(s)/2,
		Y: c.Y - (ext.Ascent-ext.Descent)/2,
	}

	if t.OutlineWidth > 0 {
		v.c.SetColor(t.Outline)
		d := vg.Length(t.OutlineWidth / 2)
		for _, off := range outlineOffsets {
			v.c.FillString(face, vg.Point{X: origin.X + off[0]*d, Y: origin.Y + off[1]*d}, s)
		}
	}
	v.c.SetColor(t.Color)
	v.c.FillString(face, origin, s)
}

var outlineOffsets = [][2]vg.Length{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// WriteSVG runs draw against a fresh SVG canvas and writes the document.
func WriteSVG(w io.Writer, width, height float64, draw func(Surface)) error {
	c := vgsvg.New(vg.Length(width), vg.Length(height))
	draw(NewVectorSurface(c, width, height, nil))
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// WritePNG runs draw against a fresh image canvas at one pixel per point and
// writes it as PNG. A nil background leaves the image transparent.
func WritePNG(w io.Writer, width, height float64, background color.Color, draw func(Surface)) error {
	if background == nil {
		background = color.Transparent
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(width), vg.Length(height)),
		vgimg.UseDPI(72),
		vgimg.UseBackgroundColor(background),
	)
	draw(NewVectorSurface(c, width, height, nil))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
