package sampler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/movement.trails/internal/timeutil"
	"github.com/banshee-data/movement.trails/internal/trails"
)

type step struct {
	p  trails.Point
	ok bool
}

// scriptedSource replays steps in order, repeating the last one, and
// signals calls on every lookup.
type scriptedSource struct {
	mu    sync.Mutex
	steps []step
	n     int
	calls chan string
}

func newScriptedSource(steps ...step) *scriptedSource {
	return &scriptedSource{steps: steps, calls: make(chan string, 256)}
}

func (s *scriptedSource) ResolvePosition(subject string) (trails.Point, bool) {
	s.mu.Lock()
	i := min(s.n, len(s.steps)-1)
	s.n++
	st := s.steps[i]
	s.mu.Unlock()
	s.calls <- subject
	return st.p, st.ok
}

func waitCall(t *testing.T, src *scriptedSource) {
	t.Helper()
	select {
	case <-src.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("position source was not called")
	}
}

func waitTickers(t *testing.T, clock *timeutil.MockClock, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return clock.ActiveTickers() == n },
		2*time.Second, time.Millisecond, "want %d active tickers", n)
}

var epoch = time.UnixMilli(1_700_000_000_000)

func TestSamplesCoalescesAndSkipsMisses(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	src := newScriptedSource(
		step{trails.Point{X: 0, Y: 0}, true},
		step{ok: false},
		step{trails.Point{X: 0.5, Y: 0}, true},
		step{trails.Point{X: 10, Y: 0}, true},
	)
	s := New(src, clock, Config{PollInterval: 50 * time.Millisecond, Coalesce: trails.DefaultConfig()})

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan trails.Sample, 16)
	go func() {
		defer close(out)
		for smp := range s.Samples(ctx, "p1") {
			out <- smp
		}
	}()

	waitTickers(t, clock, 1)
	for range 4 {
		clock.Advance(50 * time.Millisecond)
		waitCall(t, src)
	}
	cancel()

	var got []trails.Sample
	for smp := range out {
		got = append(got, smp)
	}

	base := epoch.UnixMilli()
	want := []trails.Sample{
		{X: 0, Y: 0, CapturedAtMs: base + 50},
		{X: 10, Y: 0, CapturedAtMs: base + 200},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	waitTickers(t, clock, 0)
}

func TestSamplesConsumerBreakStopsTicker(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	src := newScriptedSource(step{trails.Point{X: 1, Y: 2}, true})
	s := New(src, clock, Config{PollInterval: time.Second})

	got := make(chan trails.Sample, 1)
	go func() {
		for smp := range s.Samples(context.Background(), "p1") {
			got <- smp
			break
		}
	}()

	waitTickers(t, clock, 1)
	clock.Advance(time.Second)
	select {
	case smp := <-got:
		assert.Equal(t, trails.Point{X: 1, Y: 2}, smp.Point())
	case <-time.After(2 * time.Second):
		t.Fatal("no sample")
	}
	waitTickers(t, clock, 0)
}

func TestSamplesStampReplayTime(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	replay := timeutil.NewReplayClock()
	src := newScriptedSource(
		step{trails.Point{X: 0, Y: 0}, true},
		step{trails.Point{X: 20, Y: 0}, true},
	)
	s := New(src, clock, Config{Coalesce: trails.DefaultConfig(), ReplayTime: replay.CurrentReplayTimeMs})

	out := make(chan trails.Sample, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for smp := range s.Samples(ctx, "p1") {
			out <- smp
		}
	}()

	recv := func() trails.Sample {
		t.Helper()
		select {
		case smp := <-out:
			return smp
		case <-time.After(2 * time.Second):
			t.Fatal("no sample")
			return trails.Sample{}
		}
	}

	waitTickers(t, clock, 1)
	clock.Advance(DefaultPollInterval)
	first := recv()
	replay.Set(83_500)
	clock.Advance(DefaultPollInterval)
	second := recv()

	assert.Equal(t, int64(0), first.ReplayMs, "replay time unknown yet")
	assert.Equal(t, int64(83_500), second.ReplayMs)
	assert.Equal(t, epoch.UnixMilli()+2*DefaultPollInterval.Milliseconds(), second.CapturedAtMs,
		"classification time stays on the sampler clock")
}

func TestSamplesWithoutSourceIsEmpty(t *testing.T) {
	s := New(nil, timeutil.NewMockClock(epoch), Config{})
	assert.False(t, s.HasSource())
	assert.Equal(t, DefaultPollInterval, s.PollInterval())
	for range s.Samples(context.Background(), "p1") {
		t.Fatal("unexpected sample")
	}
}

func TestPositionSourceFunc(t *testing.T) {
	f := PositionSourceFunc(func(subject string) (trails.Point, bool) {
		return trails.Point{X: 3, Y: 4}, subject == "p1"
	})
	p, ok := f.ResolvePosition("p1")
	assert.True(t, ok)
	assert.Equal(t, trails.Point{X: 3, Y: 4}, p)
	_, ok = f.ResolvePosition("p2")
	assert.False(t, ok)
}
