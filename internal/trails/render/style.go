package render

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/movement.trails/internal/config"
)

// Style holds every visual constant used by the Renderer.
type Style struct {
	FallbackColor color.NRGBA // used when a trail's colour does not parse
	OutlineColor  color.NRGBA

	MainLineWidth   float64
	MainLineOpacity float64
	OutlineWidth    float64
	OutlineOpacity  float64

	PositionMarkerSize    float64
	PositionMarkerOpacity float64

	StationaryMarkerMinSize float64
	StationaryMarkerMaxSize float64
	StationaryMarkerOpacity float64
	StationaryThresholdMs   int64
	MaxStationaryTimeMs     int64

	StartLabel       string
	LabelWithSubject bool // use the trail label (or subject) instead of StartLabel
}

var (
	labelColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelOutline = color.NRGBA{A: 204}
)

// DefaultStyle returns the built-in style.
func DefaultStyle() Style {
	s, err := StyleFromTrailConfig(config.EmptyTrailConfig())
	if err != nil {
		panic(fmt.Sprintf("default style: %v", err))
	}
	return s
}

// StyleFromTrailConfig builds a Style from a loaded configuration.
func StyleFromTrailConfig(cfg *config.TrailConfig) (Style, error) {
	fallback, err := ParseColor(cfg.GetTrailColor())
	if err != nil {
		return Style{}, fmt.Errorf("trail_color: %w", err)
	}
	outline, err := ParseColor(cfg.GetOutlineColor())
	if err != nil {
		return Style{}, fmt.Errorf("outline_color: %w", err)
	}
	return Style{
		FallbackColor:           fallback,
		OutlineColor:            outline,
		MainLineWidth:           cfg.GetMainLineWidth(),
		MainLineOpacity:         cfg.GetMainLineOpacity(),
		OutlineWidth:            cfg.GetOutlineWidth(),
		OutlineOpacity:          cfg.GetOutlineOpacity(),
		PositionMarkerSize:      cfg.GetPositionMarkerSize(),
		PositionMarkerOpacity:   cfg.GetPositionMarkerOpacity(),
		StationaryMarkerMinSize: cfg.GetStationaryMarkerMinSize(),
		StationaryMarkerMaxSize: cfg.GetStationaryMarkerMaxSize(),
		StationaryMarkerOpacity: cfg.GetStationaryMarkerOpacity(),
		StationaryThresholdMs:   cfg.GetStationaryThresholdMs(),
		MaxStationaryTimeMs:     cfg.GetMaxStationaryTimeMs(),
		StartLabel:              cfg.GetStartLabel(),
		LabelWithSubject:        cfg.GetLabelWithSubject(),
	}, nil
}

// DwellMarkerSize maps a dwell duration onto the marker radius range.
// Durations are clamped to [StationaryThresholdMs, MaxStationaryTimeMs], so
// the size is monotonic in duration and saturates at the maximum.
func DwellMarkerSize(durationMs int64, s Style) float64 {
	lo, hi := s.StationaryThresholdMs, s.MaxStationaryTimeMs
	if hi <= lo {
		return s.StationaryMarkerMinSize
	}
	d := min(max(durationMs, lo), hi)
	ratio := float64(d-lo) / float64(hi-lo)
	return s.StationaryMarkerMinSize + ratio*(s.StationaryMarkerMaxSize-s.StationaryMarkerMinSize)
}
