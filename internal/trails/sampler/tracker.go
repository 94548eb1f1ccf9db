package sampler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/banshee-data/movement.trails/internal/trails"
)

// ErrNoPositionSource is returned by Tracker.Start when the sampler has no
// position source, i.e. the replay viewer is not available.
var ErrNoPositionSource = errors.New("no position source available")

// Reporter receives short human-readable status lines for the host UI.
type Reporter interface {
	Publish(msg string)
}

// Tracker runs one sampling goroutine per tracked subject and appends
// everything it samples to a Registry.
type Tracker struct {
	registry *trails.Registry
	sampler  *Sampler
	reporter Reporter

	mu      sync.Mutex
	handles map[string]*Handle

	noSource sync.Once
}

// NewTracker creates a Tracker. reporter may be nil.
func NewTracker(registry *trails.Registry, sampler *Sampler, reporter Reporter) *Tracker {
	return &Tracker{
		registry: registry,
		sampler:  sampler,
		reporter: reporter,
		handles:  make(map[string]*Handle),
	}
}

// Handle controls one subject's sampling goroutine.
type Handle struct {
	subject string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Subject returns the subject being sampled.
func (h *Handle) Subject() string {
	return h.subject
}

// Stop cancels sampling and waits for the goroutine to exit. No sample is
// appended after Stop returns. Stop is safe to call more than once.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the sampling goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Start begins (or resumes) tracking subject. The trail is created or
// reused in the registry, so earlier history is kept. If the subject is
// already being sampled its existing handle is returned.
func (t *Tracker) Start(ctx context.Context, subject, color string, onUpdate trails.UpdateFunc) (*Handle, error) {
	if t.sampler == nil || !t.sampler.HasSource() {
		t.noSource.Do(func() {
			t.publish("Trails unavailable: replay viewer not found")
		})
		trails.Opsf("cannot track %q: %v", subject, ErrNoPositionSource)
		return nil, ErrNoPositionSource
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.registry.StartTracking(subject, color, onUpdate)
	if h, ok := t.handles[subject]; ok && !h.exited() {
		return h, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{subject: subject, cancel: cancel, done: make(chan struct{})}
	t.handles[subject] = h
	go t.run(ctx, h)

	t.publish(fmt.Sprintf("Tracking %s", subject))
	return h, nil
}

func (t *Tracker) run(ctx context.Context, h *Handle) {
	defer close(h.done)
	defer t.forget(h)

	for s := range t.sampler.poll(ctx, h.subject, func() bool { return t.alive(h) }) {
		if ctx.Err() != nil {
			return
		}
		t.registry.AppendSample(h.subject, s)
	}

	if ctx.Err() == nil {
		trails.Diagf("sampling for %q ended: trail no longer exists", h.subject)
		t.publish(fmt.Sprintf("Stopped tracking %s", h.subject))
	}
}

// alive reports whether h's trail still exists. Once it does not, h is
// unregistered under t.mu so Start cannot return it.
func (t *Tracker) alive(h *Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.registry.Has(h.subject) {
		return true
	}
	if t.handles[h.subject] == h {
		delete(t.handles, h.subject)
	}
	return false
}

func (t *Tracker) forget(h *Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handles[h.subject] == h {
		delete(t.handles, h.subject)
	}
}

// Stop ends sampling for subject and waits for it to finish. The trail
// itself is left in the registry. It returns false if the subject was not
// being sampled.
func (t *Tracker) Stop(subject string) bool {
	t.mu.Lock()
	h, ok := t.handles[subject]
	delete(t.handles, subject)
	t.mu.Unlock()

	if !ok {
		return false
	}
	h.Stop()
	return true
}

// StopAll ends every sampling goroutine.
func (t *Tracker) StopAll() {
	t.mu.Lock()
	handles := slices.Collect(maps.Values(t.handles))
	t.handles = make(map[string]*Handle)
	t.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
}

// Active returns the subjects currently being sampled, sorted.
func (t *Tracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.handles))
}

func (t *Tracker) publish(msg string) {
	if t.reporter != nil {
		t.reporter.Publish(msg)
	}
}
