// Package sampler polls a PositionSource on a fixed interval and feeds the
// resulting samples into a trails.Registry.
package sampler

import (
	"context"
	"iter"
	"time"

	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
)

// PositionSource resolves the current drawing position of a subject. A
// false second return means the subject could not be located on this tick.
type PositionSource interface {
	ResolvePosition(subject string) (trails.Point, bool)
}

// PositionSourceFunc adapts a function to PositionSource.
type PositionSourceFunc func(subject string) (trails.Point, bool)

// ResolvePosition calls f(subject).
func (f PositionSourceFunc) ResolvePosition(subject string) (trails.Point, bool) {
	return f(subject)
}

// DefaultPollInterval is the polling cadence. It must not be shorter than
// the stationary threshold, otherwise a subject standing still is
// re-sampled before a dwell can qualify.
const DefaultPollInterval = 500 * time.Millisecond

// Config controls polling cadence and duplicate suppression.
type Config struct {
	PollInterval time.Duration
	Coalesce     trails.Config

	// ReplayTime returns the replay viewer's current timeline position in
	// milliseconds. It is stamped onto every sample. Nil stamps zero.
	ReplayTime func() int64
}

// Sampler produces timestamped samples for a subject.
type Sampler struct {
	source PositionSource
	clock  timeutil.Clock
	cfg    Config
}

// New creates a Sampler. A nil clock uses the real clock and a non-positive
// poll interval uses DefaultPollInterval.
func New(source PositionSource, clock timeutil.Clock, cfg Config) *Sampler {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Sampler{source: source, clock: clock, cfg: cfg}
}

// HasSource reports whether the sampler can resolve positions at all.
func (s *Sampler) HasSource() bool {
	return s.source != nil
}

func (s *Sampler) replayMs() int64 {
	if s.cfg.ReplayTime == nil {
		return 0
	}
	return s.cfg.ReplayTime()
}

// PollInterval returns the effective polling interval.
func (s *Sampler) PollInterval() time.Duration {
	return s.cfg.PollInterval
}

// Samples returns a lazy, infinite sequence of samples for subject. Each
// iteration starts its own ticker. Ticks where the subject cannot be found
// are skipped silently, and reads that Config.Coalesce rejects against the
// last yielded sample are dropped. The sequence ends when ctx is done or the
// consumer stops ranging.
func (s *Sampler) Samples(ctx context.Context, subject string) iter.Seq[trails.Sample] {
	return s.poll(ctx, subject, nil)
}

// poll is Samples with an extra liveness check run before every lookup.
// The sequence ends as soon as alive returns false.
func (s *Sampler) poll(ctx context.Context, subject string, alive func() bool) iter.Seq[trails.Sample] {
	return func(yield func(trails.Sample) bool) {
		if s.source == nil {
			return
		}
		ticker := s.clock.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()

		var last trails.Sample
		haveLast := false
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C():
				if alive != nil && !alive() {
					return
				}
				p, ok := s.source.ResolvePosition(subject)
				if !ok {
					if trails.TraceEnabled() {
						trails.Tracef("no position for %q at %s", subject, now.Format(time.TimeOnly))
					}
					continue
				}
				smp := trails.Sample{X: p.X, Y: p.Y, CapturedAtMs: now.UnixMilli(), ReplayMs: s.replayMs()}
				if haveLast && !s.cfg.Coalesce.Accepts(last, smp) {
					trails.Tracef("coalesced read (%.1f, %.1f) for %q", p.X, p.Y, subject)
					continue
				}
				last, haveLast = smp, true
				if !yield(smp) {
					return
				}
			}
		}
	}
}
