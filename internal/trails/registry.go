package trails

import (
	"sync"

	"github.com/google/uuid"
)

// UpdateFunc receives a trail snapshot after every completed mutation of
// that trail. It is called outside the registry lock.
type UpdateFunc func(Snapshot)

// Snapshot is an immutable view of one trail. Renderers only ever see
// snapshots, so drawing cannot mutate stored history.
type Snapshot struct {
	Subject       string       `json:"subject"`
	Label         string       `json:"label,omitempty"`
	Color         string       `json:"color"`
	Visible       bool         `json:"visible"`
	GlobalVisible bool         `json:"global_visible"`
	Samples       []Sample     `json:"samples"`
	Dwells        []DwellEvent `json:"dwells"`
}

// Drawable reports whether the trail should produce any drawing.
func (s Snapshot) Drawable() bool {
	return s.Visible && s.GlobalVisible
}

// DisplayName returns the label if set, otherwise the subject id.
func (s Snapshot) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Subject
}

// trail is the mutable per-subject record. Samples and dwells are only ever
// appended; clearing replaces the slices so earlier snapshots stay intact.
type trail struct {
	subject  string
	label    string
	color    string
	visible  bool
	samples  []Sample
	dwells   []DwellEvent
	onUpdate UpdateFunc
}

// ColorPicker returns the colour for the n-th trail created in a registry
// when the caller did not supply one.
type ColorPicker func(n int) string

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithColorPicker sets the colour assignment used for trails started
// without an explicit colour.
func WithColorPicker(p ColorPicker) RegistryOption {
	return func(r *Registry) {
		r.pickColor = p
	}
}

// DefaultTrailColor is used when no ColorPicker is configured.
const DefaultTrailColor = "#7D2027"

// Registry maps subject ids to trails for one replay session. All mutations
// are serialised; every operation on an unknown subject is a logged no-op.
type Registry struct {
	mu            sync.Mutex
	sessionID     string
	cfg           Config
	classifier    Classifier
	trails        map[string]*trail
	order         []string // insertion order, also the drawing order
	globalVisible bool
	pickColor     ColorPicker
	created       int
}

// NewRegistry creates an empty registry with a fresh session id.
func NewRegistry(cfg Config, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessionID:     uuid.NewString(),
		cfg:           cfg,
		classifier:    NewClassifier(cfg),
		trails:        make(map[string]*trail),
		globalVisible: true,
		pickColor:     func(int) string { return DefaultTrailColor },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID identifies the replay session this registry belongs to.
func (r *Registry) SessionID() string {
	return r.sessionID
}

// Config returns the acceptance and classification parameters.
func (r *Registry) Config() Config {
	return r.cfg
}

// StartTracking creates the trail for subject, or reuses the existing one
// without touching its history. The trail is marked visible. An empty
// color keeps the current colour (or assigns one for a new trail); a nil
// onUpdate keeps the current callback.
func (r *Registry) StartTracking(subject, color string, onUpdate UpdateFunc) Snapshot {
	r.mu.Lock()
	t, ok := r.trails[subject]
	if !ok {
		if color == "" {
			color = r.pickColor(r.created)
		}
		r.created++
		t = &trail{subject: subject, color: color}
		r.trails[subject] = t
		r.order = append(r.order, subject)
		Opsf("tracking %q (session %s)", subject, r.sessionID)
	} else {
		if color != "" {
			t.color = color
		}
		Diagf("resuming %q with %d samples, %d dwells", subject, len(t.samples), len(t.dwells))
	}
	t.visible = true
	if onUpdate != nil {
		t.onUpdate = onUpdate
	}
	snap := r.snapshotLocked(t)
	r.mu.Unlock()
	return snap
}

// AppendSample adds s to the subject's trail and classifies the transition
// from the previous sample. It returns false when the subject is unknown or
// the sample was dropped as out of order or coalesced.
func (r *Registry) AppendSample(subject string, s Sample) bool {
	r.mu.Lock()
	t, ok := r.trails[subject]
	if !ok {
		r.mu.Unlock()
		Diagf("append: ignoring sample for unknown subject %q", subject)
		return false
	}

	if n := len(t.samples); n > 0 {
		last := t.samples[n-1]
		if !r.cfg.Accepts(last, s) {
			r.mu.Unlock()
			Tracef("append: dropped sample (%.1f, %.1f)@%d for %q", s.X, s.Y, s.CapturedAtMs, subject)
			return false
		}
		t.samples = append(t.samples, s)
		if d, ok := r.classifier.Classify(last, s); ok {
			t.dwells = append(t.dwells, d)
			Diagf("%q was stationary at (%.0f, %.0f) for %dms", subject, d.X, d.Y, d.DurationMs)
		}
	} else {
		t.samples = append(t.samples, s)
	}

	snap := r.snapshotLocked(t)
	cb := t.onUpdate
	r.mu.Unlock()

	Tracef("updated %q trail, now %d samples, %d dwells", subject, len(snap.Samples), len(snap.Dwells))
	if cb != nil {
		cb(snap)
	}
	return true
}

// ClearTrail empties the subject's samples and dwells, keeping colour,
// label and visibility.
func (r *Registry) ClearTrail(subject string) bool {
	r.mu.Lock()
	t, ok := r.trails[subject]
	if !ok {
		r.mu.Unlock()
		Diagf("clear: unknown subject %q", subject)
		return false
	}
	t.samples = nil
	t.dwells = nil
	snap := r.snapshotLocked(t)
	cb := t.onUpdate
	r.mu.Unlock()

	Opsf("cleared %q position trail", subject)
	if cb != nil {
		cb(snap)
	}
	return true
}

// RemoveTrail deletes the subject's trail entirely.
func (r *Registry) RemoveTrail(subject string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trails[subject]; !ok {
		Diagf("remove: unknown subject %q", subject)
		return false
	}
	delete(r.trails, subject)
	for i, s := range r.order {
		if s == subject {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	Opsf("removed %q trail", subject)
	return true
}

// ClearAll removes every trail.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trails = make(map[string]*trail)
	r.order = nil
	Opsf("removed all trails (session %s)", r.sessionID)
}

// SetVisible toggles drawing of one trail without discarding data.
func (r *Registry) SetVisible(subject string, visible bool) bool {
	r.mu.Lock()
	t, ok := r.trails[subject]
	if !ok {
		r.mu.Unlock()
		Diagf("visibility: unknown subject %q", subject)
		return false
	}
	t.visible = visible
	snap := r.snapshotLocked(t)
	cb := t.onUpdate
	r.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
	return true
}

// SetLabel sets the display name used for the start label.
func (r *Registry) SetLabel(subject, label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trails[subject]
	if !ok {
		Diagf("label: unknown subject %q", subject)
		return false
	}
	t.label = label
	return true
}

// SetGlobalVisible gates drawing of every trail regardless of per-trail
// visibility. Every trail's update callback is notified.
func (r *Registry) SetGlobalVisible(visible bool) {
	r.mu.Lock()
	r.globalVisible = visible
	type pending struct {
		cb   UpdateFunc
		snap Snapshot
	}
	var calls []pending
	for _, s := range r.order {
		t := r.trails[s]
		if t.onUpdate != nil {
			calls = append(calls, pending{cb: t.onUpdate, snap: r.snapshotLocked(t)})
		}
	}
	r.mu.Unlock()

	Diagf("global trail visibility set to %v", visible)
	for _, c := range calls {
		c.cb(c.snap)
	}
}

// GlobalVisible returns the global visibility flag.
func (r *Registry) GlobalVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.globalVisible
}

// Has reports whether subject currently has a trail.
func (r *Registry) Has(subject string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.trails[subject]
	return ok
}

// Len returns the number of trails.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trails)
}

// Snapshot returns the current state of one trail.
func (r *Registry) Snapshot(subject string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trails[subject]
	if !ok {
		return Snapshot{}, false
	}
	return r.snapshotLocked(t), true
}

// Snapshots returns every trail in insertion order.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Snapshot, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.snapshotLocked(r.trails[s]))
	}
	return out
}

// Subjects returns the tracked subject ids in insertion order.
func (r *Registry) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// snapshotLocked shares the backing arrays with the trail. The full slice
// expression caps them so a consumer append can never write into storage
// the trail will later append to. Callers must hold r.mu.
func (r *Registry) snapshotLocked(t *trail) Snapshot {
	ns, nd := len(t.samples), len(t.dwells)
	return Snapshot{
		Subject:       t.subject,
		Label:         t.label,
		Color:         t.color,
		Visible:       t.visible,
		GlobalVisible: r.globalVisible,
		Samples:       t.samples[:ns:ns],
		Dwells:        t.dwells[:nd:nd],
	}
}
