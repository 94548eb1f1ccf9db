package trails

import "math"

// Point is a position in the replay viewer's drawing coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is one observed position of a subject. CapturedAtMs is the
// sampler's wall-clock time in Unix milliseconds. ReplayMs is the replay
// viewer's timeline position when the sample was taken; it is shown to the
// user but never used for classification.
type Sample struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	CapturedAtMs int64   `json:"captured_at_ms"`
	ReplayMs     int64   `json:"replay_ms"`
}

// Point returns the sample position.
func (s Sample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// DwellEvent records a period during which a subject stayed within the
// spatial tolerance. X and Y are the last stable position before movement
// resumed.
type DwellEvent struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	DurationMs  int64   `json:"duration_ms"`
	StartedAtMs int64   `json:"started_at_ms"`
}

// Point returns the dwell position.
func (d DwellEvent) Point() Point {
	return Point{X: d.X, Y: d.Y}
}

// Distance returns the euclidean distance between two samples.
func Distance(a, b Sample) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
