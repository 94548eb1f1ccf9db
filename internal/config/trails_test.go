package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmptyTrailConfigDefaults(t *testing.T) {
	cfg := EmptyTrailConfig()

	if got := cfg.GetPollInterval(); got != 500*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want 500ms", got)
	}
	if got := cfg.GetStationaryThresholdMs(); got != 500 {
		t.Errorf("GetStationaryThresholdMs() = %d, want 500", got)
	}
	if got := cfg.GetMaxStationaryTimeMs(); got != 5000 {
		t.Errorf("GetMaxStationaryTimeMs() = %d, want 5000", got)
	}
	if got := cfg.GetSpatialTolerance(); got != 5 {
		t.Errorf("GetSpatialTolerance() = %f, want 5", got)
	}
	if got := cfg.GetCoalesceDistance(); got != 1 {
		t.Errorf("GetCoalesceDistance() = %f, want 1", got)
	}
	if got := cfg.GetCoalesceIntervalMs(); got != 100 {
		t.Errorf("GetCoalesceIntervalMs() = %d, want 100", got)
	}
	if got := cfg.GetTrailColor(); got != "#7D2027" {
		t.Errorf("GetTrailColor() = %q, want #7D2027", got)
	}
	if got := cfg.GetStartLabel(); got != "Start" {
		t.Errorf("GetStartLabel() = %q, want Start", got)
	}
	if cfg.GetLabelWithSubject() {
		t.Error("GetLabelWithSubject() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on empty config: %v", err)
	}
}

func TestLoadTrailConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "trails.json")

	testJSON := `{
  "poll_interval": "1s",
  "stationary_threshold_ms": 750,
  "trail_color": "#00ff00",
  "label_with_subject": true
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTrailConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetPollInterval(); got != time.Second {
		t.Errorf("GetPollInterval() = %v, want 1s", got)
	}
	if got := cfg.GetStationaryThresholdMs(); got != 750 {
		t.Errorf("GetStationaryThresholdMs() = %d, want 750", got)
	}
	if got := cfg.GetTrailColor(); got != "#00ff00" {
		t.Errorf("GetTrailColor() = %q, want #00ff00", got)
	}
	if !cfg.GetLabelWithSubject() {
		t.Error("GetLabelWithSubject() = false, want true")
	}
	// Omitted fields keep their defaults.
	if got := cfg.GetMaxStationaryTimeMs(); got != 5000 {
		t.Errorf("GetMaxStationaryTimeMs() = %d, want 5000", got)
	}
}

func TestLoadTrailConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("trails.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "nope.json"), "failed to stat"},
		{"bad json", write("bad.json", "{"), "failed to parse"},
		{"bad poll interval", write("poll.json", `{"poll_interval":"soon"}`), "poll_interval"},
		{"threshold above max", write("thr.json", `{"poll_interval":"10s","stationary_threshold_ms":6000}`), "max_stationary_time_ms"},
		{"poll faster than dwell threshold", write("fast.json", `{"poll_interval":"250ms"}`), "stationary_threshold_ms"},
		{"bad opacity", write("op.json", `{"outline_opacity":1.5}`), "outline_opacity"},
		{"bad colour", write("col.json", `{"trail_color":"red"}`), "trail_color"},
		{"marker sizes inverted", write("size.json", `{"stationary_marker_min_size":30}`), "stationary_marker_max_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrailConfig(tt.path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if got := cfg.GetStationaryThresholdMs(); got != 500 {
		t.Errorf("GetStationaryThresholdMs() = %d, want 500", got)
	}
	if got := cfg.GetStationaryMarkerMaxSize(); got != 20 {
		t.Errorf("GetStationaryMarkerMaxSize() = %f, want 20", got)
	}
}
