package render

import (
	"github.com/banshee-data/movement.trails/internal/trails"
)

// StatusReporter receives one-off status lines for the host UI.
type StatusReporter interface {
	PublishOnce(key, msg string)
}

// Overlay draws every trail of a registry onto the host's surface once per
// frame. The host calls RenderFrame (or the function returned by Hook)
// after it has drawn its own frame.
type Overlay struct {
	registry *trails.Registry
	renderer *Renderer
	status   StatusReporter
}

// NewOverlay creates an Overlay. status may be nil.
func NewOverlay(registry *trails.Registry, renderer *Renderer, status StatusReporter) *Overlay {
	return &Overlay{registry: registry, renderer: renderer, status: status}
}

// RenderFrame clears s once and draws every visible trail in the order the
// trails were created, so later trails are drawn on top. It returns the
// number of trails drawn. A nil surface draws nothing.
func (o *Overlay) RenderFrame(s Surface) int {
	if s == nil {
		trails.Diagf("render: no drawing surface")
		if o.status != nil {
			o.status.PublishOnce("no-surface", "Trails unavailable: no drawing surface")
		}
		return 0
	}

	s.Clear()
	if !o.registry.GlobalVisible() {
		return 0
	}
	n := 0
	for _, snap := range o.registry.Snapshots() {
		if !snap.Drawable() {
			continue
		}
		o.renderer.Draw(s, snap)
		n++
	}
	trails.Tracef("rendered %d trails", n)
	return n
}

// Hook returns RenderFrame as a plain callback for the host's draw loop.
func (o *Overlay) Hook() func(Surface) {
	return func(s Surface) {
		o.RenderFrame(s)
	}
}
