package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// ReplayClock holds the replay viewer's notion of "now", pushed by the host
// page. It is used for display only; dwell classification never reads it.
type ReplayClock struct {
	mu sync.RWMutex
	ms int64
	ok bool
}

// NewReplayClock returns a ReplayClock that has not been set yet.
func NewReplayClock() *ReplayClock {
	return &ReplayClock{}
}

// Set records the current replay time in milliseconds.
func (c *ReplayClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms = ms
	c.ok = true
}

// CurrentReplayTimeMs returns the last replay time pushed by the page, or 0
// if none has been received.
func (c *ReplayClock) CurrentReplayTimeMs() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ms
}

// Known reports whether a replay time has been received.
func (c *ReplayClock) Known() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ok
}

// FormatReplayTime renders seconds as "m:ss". Fractional seconds are
// truncated; negative values are clamped to zero.
func FormatReplayTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// ParseReplayTime parses the replay viewer's timer text. Both "m:ss(.f)"
// and plain seconds are accepted.
func ParseReplayTime(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty replay time")
	}

	if parts := strings.Split(text, ":"); len(parts) == 2 {
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in %q: %w", text, err)
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds in %q: %w", text, err)
		}
		return float64(minutes)*60 + secs, nil
	}

	secs, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid replay time %q: %w", text, err)
	}
	return secs, nil
}
