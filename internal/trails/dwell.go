package trails

// Classifier detects dwells across a transition between two consecutive
// accepted samples.
type Classifier struct {
	thresholdMs int64
	tolerance   float64
}

// NewClassifier returns a Classifier using the threshold and tolerance
// from cfg.
func NewClassifier(cfg Config) Classifier {
	return Classifier{
		thresholdMs: cfg.StationaryThresholdMs,
		tolerance:   cfg.SpatialTolerance,
	}
}

// Classify returns a DwellEvent anchored at prev when the subject moved
// less than the tolerance and at least the stationary threshold elapsed.
// It looks at the two samples only and never at earlier history.
func (c Classifier) Classify(prev, cur Sample) (DwellEvent, bool) {
	dt := cur.CapturedAtMs - prev.CapturedAtMs
	if dt < c.thresholdMs {
		return DwellEvent{}, false
	}
	if Distance(prev, cur) >= c.tolerance {
		return DwellEvent{}, false
	}
	return DwellEvent{
		X:           prev.X,
		Y:           prev.Y,
		DurationMs:  dt,
		StartedAtMs: prev.CapturedAtMs,
	}, true
}
