// Package position provides PositionSource implementations fed by the
// replay page.
package position

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
)

// Update is one position report from the page. Exactly one of the position
// forms is used, in this order: Transform, Left/Top, X/Y.
type Update struct {
	Subject   string  `json:"subject"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Transform string  `json:"transform,omitempty"`
	Left      string  `json:"left,omitempty"`
	Top       string  `json:"top,omitempty"`
}

// Resolve returns the drawing position carried by u.
func (u Update) Resolve() (trails.Point, error) {
	switch {
	case u.Transform != "":
		return ParseTransform(u.Transform)
	case u.Left != "" || u.Top != "":
		return ParseOffset(u.Left, u.Top)
	default:
		return trails.Point{X: u.X, Y: u.Y}, nil
	}
}

// Entry is the latest known position of a subject.
type Entry struct {
	Subject   string       `json:"subject"`
	Point     trails.Point `json:"point"`
	UpdatedAt time.Time    `json:"updated_at"`
	Stale     bool         `json:"stale"`
}

type entry struct {
	p  trails.Point
	at time.Time
}

// Feed keeps the latest position reported for each subject. Positions older
// than the staleness window resolve to nothing, so a subject that vanished
// from the page stops producing samples.
type Feed struct {
	clock      timeutil.Clock
	staleAfter time.Duration

	mu     sync.RWMutex
	latest map[string]entry
}

// NewFeed creates an empty Feed. A non-positive staleAfter disables the
// staleness check.
func NewFeed(clock timeutil.Clock, staleAfter time.Duration) *Feed {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Feed{clock: clock, staleAfter: staleAfter, latest: make(map[string]entry)}
}

// Set records p as the current position of subject.
func (f *Feed) Set(subject string, p trails.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest[subject] = entry{p: p, at: f.clock.Now()}
}

// Apply resolves u and records it.
func (f *Feed) Apply(u Update) (trails.Point, error) {
	if strings.TrimSpace(u.Subject) == "" {
		return trails.Point{}, fmt.Errorf("position update without subject")
	}
	p, err := u.Resolve()
	if err != nil {
		return trails.Point{}, fmt.Errorf("position for %q: %w", u.Subject, err)
	}
	f.Set(u.Subject, p)
	return p, nil
}

// Forget drops any position held for subject.
func (f *Feed) Forget(subject string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.latest, subject)
}

// ResolvePosition implements sampler.PositionSource.
func (f *Feed) ResolvePosition(subject string) (trails.Point, bool) {
	f.mu.RLock()
	e, ok := f.latest[subject]
	f.mu.RUnlock()
	if !ok || f.stale(e) {
		return trails.Point{}, false
	}
	return e.p, true
}

// Entries returns every known position sorted by subject.
func (f *Feed) Entries() []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Entry, 0, len(f.latest))
	for s, e := range f.latest {
		out = append(out, Entry{Subject: s, Point: e.p, UpdatedAt: e.at, Stale: f.stale(e)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

func (f *Feed) stale(e entry) bool {
	return f.staleAfter > 0 && f.clock.Since(e.at) > f.staleAfter
}
