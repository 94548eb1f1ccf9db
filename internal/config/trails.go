package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultConfigPath is the path to the canonical trail defaults file.
const DefaultConfigPath = "config/trails.defaults.json"

// TrailConfig is the root configuration for sampling, dwell detection and
// trail styling.
type TrailConfig struct {
	// Sampling
	PollInterval       *string  `json:"poll_interval,omitempty"` // duration string like "500ms"
	CoalesceDistance   *float64 `json:"coalesce_distance,omitempty"`
	CoalesceIntervalMs *int64   `json:"coalesce_interval_ms,omitempty"`
	FeedStaleAfter     *string  `json:"feed_stale_after,omitempty"` // duration string like "2s"

	// Dwell detection
	StationaryThresholdMs *int64   `json:"stationary_threshold_ms,omitempty"`
	MaxStationaryTimeMs   *int64   `json:"max_stationary_time_ms,omitempty"`
	SpatialTolerance      *float64 `json:"spatial_tolerance,omitempty"`

	// Styling
	TrailColor              *string  `json:"trail_color,omitempty"`
	OutlineColor            *string  `json:"outline_color,omitempty"`
	MainLineWidth           *float64 `json:"main_line_width,omitempty"`
	MainLineOpacity         *float64 `json:"main_line_opacity,omitempty"`
	OutlineWidth            *float64 `json:"outline_width,omitempty"`
	OutlineOpacity          *float64 `json:"outline_opacity,omitempty"`
	PositionMarkerSize      *float64 `json:"position_marker_size,omitempty"`
	PositionMarkerOpacity   *float64 `json:"position_marker_opacity,omitempty"`
	StationaryMarkerMinSize *float64 `json:"stationary_marker_min_size,omitempty"`
	StationaryMarkerMaxSize *float64 `json:"stationary_marker_max_size,omitempty"`
	StationaryMarkerOpacity *float64 `json:"stationary_marker_opacity,omitempty"`
	StartLabel              *string  `json:"start_label,omitempty"`
	LabelWithSubject        *bool    `json:"label_with_subject,omitempty"`
}

// EmptyTrailConfig returns a TrailConfig with all fields set to nil. The
// Get* accessors then return the built-in defaults.
func EmptyTrailConfig() *TrailConfig {
	return &TrailConfig{}
}

// LoadTrailConfig loads a TrailConfig from a JSON file.
// Fields omitted from the file keep their defaults, so partial configs are
// safe.
func LoadTrailConfig(path string) (*TrailConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrailConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *TrailConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/trails/render/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTrailConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TrailConfig) Validate() error {
	if c.PollInterval != nil && *c.PollInterval != "" {
		d, err := time.ParseDuration(*c.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval '%s': %w", *c.PollInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("poll_interval must be positive, got %s", d)
		}
	}

	if c.FeedStaleAfter != nil && *c.FeedStaleAfter != "" {
		if _, err := time.ParseDuration(*c.FeedStaleAfter); err != nil {
			return fmt.Errorf("invalid feed_stale_after '%s': %w", *c.FeedStaleAfter, err)
		}
	}

	if c.StationaryThresholdMs != nil && *c.StationaryThresholdMs <= 0 {
		return fmt.Errorf("stationary_threshold_ms must be positive, got %d", *c.StationaryThresholdMs)
	}

	// A stationary subject is re-sampled once per poll, so a dwell needs the
	// gap between two polls to reach the threshold.
	if poll := c.GetPollInterval(); poll.Milliseconds() < c.GetStationaryThresholdMs() {
		return fmt.Errorf("poll_interval (%s) must not be shorter than stationary_threshold_ms (%d)",
			poll, c.GetStationaryThresholdMs())
	}

	// The marker size interpolation divides by (max - threshold).
	if c.GetMaxStationaryTimeMs() <= c.GetStationaryThresholdMs() {
		return fmt.Errorf("max_stationary_time_ms (%d) must exceed stationary_threshold_ms (%d)",
			c.GetMaxStationaryTimeMs(), c.GetStationaryThresholdMs())
	}

	if c.SpatialTolerance != nil && *c.SpatialTolerance <= 0 {
		return fmt.Errorf("spatial_tolerance must be positive, got %f", *c.SpatialTolerance)
	}
	if c.CoalesceDistance != nil && *c.CoalesceDistance < 0 {
		return fmt.Errorf("coalesce_distance must be non-negative, got %f", *c.CoalesceDistance)
	}
	if c.CoalesceIntervalMs != nil && *c.CoalesceIntervalMs < 0 {
		return fmt.Errorf("coalesce_interval_ms must be non-negative, got %d", *c.CoalesceIntervalMs)
	}

	if c.GetStationaryMarkerMaxSize() < c.GetStationaryMarkerMinSize() {
		return fmt.Errorf("stationary_marker_max_size (%f) must not be below stationary_marker_min_size (%f)",
			c.GetStationaryMarkerMaxSize(), c.GetStationaryMarkerMinSize())
	}

	for name, v := range map[string]*float64{
		"main_line_opacity":         c.MainLineOpacity,
		"outline_opacity":           c.OutlineOpacity,
		"position_marker_opacity":   c.PositionMarkerOpacity,
		"stationary_marker_opacity": c.StationaryMarkerOpacity,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}

	for name, v := range map[string]*string{
		"trail_color":   c.TrailColor,
		"outline_color": c.OutlineColor,
	} {
		if v != nil && !isHexColor(*v) {
			return fmt.Errorf("%s must be a #RRGGBB hex colour, got %q", name, *v)
		}
	}

	return nil
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// GetPollInterval parses and returns the PollInterval as a time.Duration.
func (c *TrailConfig) GetPollInterval() time.Duration {
	if c.PollInterval == nil || *c.PollInterval == "" {
		return 500 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.PollInterval)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond // default on parse error
	}
	return d
}

// GetFeedStaleAfter parses and returns the FeedStaleAfter as a time.Duration.
func (c *TrailConfig) GetFeedStaleAfter() time.Duration {
	if c.FeedStaleAfter == nil || *c.FeedStaleAfter == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(*c.FeedStaleAfter)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// GetCoalesceDistance returns the coalesce_distance value or the default.
func (c *TrailConfig) GetCoalesceDistance() float64 {
	if c.CoalesceDistance == nil {
		return 1.0
	}
	return *c.CoalesceDistance
}

// GetCoalesceIntervalMs returns the coalesce_interval_ms value or the default.
func (c *TrailConfig) GetCoalesceIntervalMs() int64 {
	if c.CoalesceIntervalMs == nil {
		return 100
	}
	return *c.CoalesceIntervalMs
}

// GetStationaryThresholdMs returns the stationary_threshold_ms value or the default.
func (c *TrailConfig) GetStationaryThresholdMs() int64 {
	if c.StationaryThresholdMs == nil {
		return 500
	}
	return *c.StationaryThresholdMs
}

// GetMaxStationaryTimeMs returns the max_stationary_time_ms value or the default.
func (c *TrailConfig) GetMaxStationaryTimeMs() int64 {
	if c.MaxStationaryTimeMs == nil {
		return 5000
	}
	return *c.MaxStationaryTimeMs
}

// GetSpatialTolerance returns the spatial_tolerance value or the default.
func (c *TrailConfig) GetSpatialTolerance() float64 {
	if c.SpatialTolerance == nil {
		return 5.0
	}
	return *c.SpatialTolerance
}

// GetTrailColor returns the trail_color value or the default.
func (c *TrailConfig) GetTrailColor() string {
	if c.TrailColor == nil {
		return "#7D2027"
	}
	return *c.TrailColor
}

// GetOutlineColor returns the outline_color value or the default.
func (c *TrailConfig) GetOutlineColor() string {
	if c.OutlineColor == nil {
		return "#2D2D2D"
	}
	return *c.OutlineColor
}

// GetMainLineWidth returns the main_line_width value or the default.
func (c *TrailConfig) GetMainLineWidth() float64 {
	if c.MainLineWidth == nil {
		return 4
	}
	return *c.MainLineWidth
}

// GetMainLineOpacity returns the main_line_opacity value or the default.
func (c *TrailConfig) GetMainLineOpacity() float64 {
	if c.MainLineOpacity == nil {
		return 0.8
	}
	return *c.MainLineOpacity
}

// GetOutlineWidth returns the outline_width value or the default.
func (c *TrailConfig) GetOutlineWidth() float64 {
	if c.OutlineWidth == nil {
		return 6
	}
	return *c.OutlineWidth
}

// GetOutlineOpacity returns the outline_opacity value or the default.
func (c *TrailConfig) GetOutlineOpacity() float64 {
	if c.OutlineOpacity == nil {
		return 0.7
	}
	return *c.OutlineOpacity
}

// GetPositionMarkerSize returns the position_marker_size value or the default.
func (c *TrailConfig) GetPositionMarkerSize() float64 {
	if c.PositionMarkerSize == nil {
		return 4
	}
	return *c.PositionMarkerSize
}

// GetPositionMarkerOpacity returns the position_marker_opacity value or the default.
func (c *TrailConfig) GetPositionMarkerOpacity() float64 {
	if c.PositionMarkerOpacity == nil {
		return 0.5
	}
	return *c.PositionMarkerOpacity
}

// GetStationaryMarkerMinSize returns the stationary_marker_min_size value or the default.
func (c *TrailConfig) GetStationaryMarkerMinSize() float64 {
	if c.StationaryMarkerMinSize == nil {
		return 8
	}
	return *c.StationaryMarkerMinSize
}

// GetStationaryMarkerMaxSize returns the stationary_marker_max_size value or the default.
func (c *TrailConfig) GetStationaryMarkerMaxSize() float64 {
	if c.StationaryMarkerMaxSize == nil {
		return 20
	}
	return *c.StationaryMarkerMaxSize
}

// GetStationaryMarkerOpacity returns the stationary_marker_opacity value or the default.
func (c *TrailConfig) GetStationaryMarkerOpacity() float64 {
	if c.StationaryMarkerOpacity == nil {
		return 0.7
	}
	return *c.StationaryMarkerOpacity
}

// GetStartLabel returns the start_label value or the default.
func (c *TrailConfig) GetStartLabel() string {
	if c.StartLabel == nil || *c.StartLabel == "" {
		return "Start"
	}
	return *c.StartLabel
}

// GetLabelWithSubject returns the label_with_subject value or the default.
func (c *TrailConfig) GetLabelWithSubject() bool {
	if c.LabelWithSubject == nil {
		return false
	}
	return *c.LabelWithSubject
}
