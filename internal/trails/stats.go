package trails

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates one trail for status displays and the dwell chart.
type Summary struct {
	Subject        string  `json:"subject"`
	Samples        int     `json:"samples"`
	Dwells         int     `json:"dwells"`
	PathLength     float64 `json:"path_length"`
	SpanMs         int64   `json:"span_ms"`
	TotalDwellMs   int64   `json:"total_dwell_ms"`
	MeanDwellMs    float64 `json:"mean_dwell_ms"`
	LongestDwellMs int64   `json:"longest_dwell_ms"`
}

// Summarize computes path and dwell statistics for a snapshot.
func Summarize(s Snapshot) Summary {
	sum := Summary{
		Subject: s.Subject,
		Samples: len(s.Samples),
		Dwells:  len(s.Dwells),
	}

	if n := len(s.Samples); n > 1 {
		segments := make([]float64, 0, n-1)
		for i := 1; i < n; i++ {
			segments = append(segments, Distance(s.Samples[i-1], s.Samples[i]))
		}
		sum.PathLength = floats.Sum(segments)
		sum.SpanMs = s.Samples[n-1].CapturedAtMs - s.Samples[0].CapturedAtMs
	}

	if len(s.Dwells) > 0 {
		durations := make([]float64, len(s.Dwells))
		for i, d := range s.Dwells {
			durations[i] = float64(d.DurationMs)
		}
		sum.TotalDwellMs = int64(floats.Sum(durations))
		sum.MeanDwellMs = stat.Mean(durations, nil)
		sum.LongestDwellMs = int64(floats.Max(durations))
	}

	return sum
}
