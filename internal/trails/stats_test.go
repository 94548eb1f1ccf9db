package trails

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	snap := Snapshot{
		Subject: "Thrall",
		Samples: []Sample{
			{X: 0, Y: 0, CapturedAtMs: 0},
			{X: 3, Y: 4, CapturedAtMs: 1000},
			{X: 3, Y: 10, CapturedAtMs: 1500},
		},
		Dwells: []DwellEvent{
			{DurationMs: 600},
			{DurationMs: 1400},
		},
	}

	got := Summarize(snap)
	assert.Equal(t, "Thrall", got.Subject)
	assert.Equal(t, 3, got.Samples)
	assert.Equal(t, 2, got.Dwells)
	assert.InDelta(t, 11.0, got.PathLength, 1e-9)
	assert.Equal(t, int64(1500), got.SpanMs)
	assert.Equal(t, int64(2000), got.TotalDwellMs)
	assert.InDelta(t, 1000.0, got.MeanDwellMs, 1e-9)
	assert.Equal(t, int64(1400), got.LongestDwellMs)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(Snapshot{Subject: "Jaina"})
	assert.Equal(t, Summary{Subject: "Jaina"}, got)
}
