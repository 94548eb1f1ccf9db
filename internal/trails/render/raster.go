package render

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/banshee-data/movement.trails/internal/trails"
)

type fontSources struct {
	regular, bold *text.FontSource
}

var loadFonts = sync.OnceValues(func() (fontSources, error) {
	regular, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return fontSources{}, fmt.Errorf("load Go Regular: %w", err)
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return fontSources{}, fmt.Errorf("load Go Bold: %w", err)
	}
	return fontSources{regular: regular, bold: bold}, nil
})

// RasterSurface adapts an anti-aliased gogpu/gg context to Surface. Drawing
// errors do not interrupt a frame; the first one is kept and reported by Err.
type RasterSurface struct {
	dc         *gg.Context
	background color.Color
	err        error
}

// NewRasterSurface wraps dc. Clear fills it with background, or with
// transparency when background is nil.
func NewRasterSurface(dc *gg.Context, background color.Color) *RasterSurface {
	return &RasterSurface{dc: dc, background: background}
}

// Err returns the first drawing error, if any.
func (r *RasterSurface) Err() error {
	return r.err
}

func (r *RasterSurface) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

// Clear implements Surface.
func (r *RasterSurface) Clear() {
	if r.background == nil {
		r.dc.ClearWithColor(gg.Transparent)
		return
	}
	r.dc.ClearWithColor(gg.FromColor(r.background))
}

// StrokePolyline implements Surface.
func (r *RasterSurface) StrokePolyline(pts []trails.Point, s Stroke) {
	if len(pts) < 2 {
		return
	}
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(s.Width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	r.keep(r.dc.Stroke())
}

// FillCircle implements Surface.
func (r *RasterSurface) FillCircle(center trails.Point, radius float64, f Fill) {
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.dc.SetColor(f.Color)
	r.keep(r.dc.Fill())
}

// FillPolygon implements Surface.
func (r *RasterSurface) FillPolygon(pts []trails.Point, f Fill) {
	if len(pts) < 3 {
		return
	}
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()
	r.dc.SetColor(f.Color)
	r.keep(r.dc.Fill())
}

// DrawText implements Surface.
func (r *RasterSurface) DrawText(at trails.Point, s string, t Text) {
	fonts, err := loadFonts()
	if err != nil {
		r.keep(err)
		return
	}
	src := fonts.regular
	if t.Bold {
		src = fonts.bold
	}
	r.dc.SetFont(src.Face(t.Size))

	if t.OutlineWidth > 0 {
		r.dc.SetColor(t.Outline)
		d := t.OutlineWidth / 2
		for _, off := range outlineOffsets {
			r.dc.DrawStringAnchored(s, at.X+float64(off[0])*d, at.Y+float64(off[1])*d, 0.5, 0.5)
		}
	}
	r.dc.SetColor(t.Color)
	r.dc.DrawStringAnchored(s, at.X, at.Y, 0.5, 0.5)
}

// WriteRasterPNG runs draw against a fresh width x height pixel context and
// writes the result as PNG.
func WriteRasterPNG(w io.Writer, width, height int, background color.Color, draw func(Surface)) error {
	dc := gg.NewContext(width, height)
	defer dc.Close()

	s := NewRasterSurface(dc, background)
	s.Clear()
	draw(s)
	if err := s.Err(); err != nil {
		return fmt.Errorf("rasterise trails: %w", err)
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
