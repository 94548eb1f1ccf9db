package trails

import "github.com/banshee-data/movement.trails/internal/config"

// Config holds the sample acceptance and dwell classification parameters.
type Config struct {
	StationaryThresholdMs int64   // Minimum gap between two nearby samples to count as a dwell
	MaxStationaryTimeMs   int64   // Dwell duration at which marker size saturates
	SpatialTolerance      float64 // Maximum movement (drawing units) still counted as standing still
	CoalesceDistance      float64 // Reads closer than this to the last sample...
	CoalesceIntervalMs    int64   // ...and no older than this are dropped as duplicates
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return ConfigFromTrailConfig(config.EmptyTrailConfig())
}

// ConfigFromTrailConfig builds a Config from a loaded TrailConfig.
func ConfigFromTrailConfig(cfg *config.TrailConfig) Config {
	return Config{
		StationaryThresholdMs: cfg.GetStationaryThresholdMs(),
		MaxStationaryTimeMs:   cfg.GetMaxStationaryTimeMs(),
		SpatialTolerance:      cfg.GetSpatialTolerance(),
		CoalesceDistance:      cfg.GetCoalesceDistance(),
		CoalesceIntervalMs:    cfg.GetCoalesceIntervalMs(),
	}
}

// Accepts reports whether next may follow last in a trail. Samples that go
// back in time are rejected, as are near-identical reads (closer than
// CoalesceDistance) that arrive within CoalesceIntervalMs of last; the
// replay viewer re-reports the same coordinates on every redraw.
func (c Config) Accepts(last, next Sample) bool {
	dt := next.CapturedAtMs - last.CapturedAtMs
	if dt < 0 {
		return false
	}
	if Distance(last, next) < c.CoalesceDistance && dt <= c.CoalesceIntervalMs {
		return false
	}
	return true
}
