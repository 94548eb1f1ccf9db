package position

import (
	"github.com/banshee-data/movement.trails/internal/trails"
	"github.com/banshee-data/movement.trails/internal/trails/sampler"
)

// Chain tries each source in order and returns the first position found.
type Chain []sampler.PositionSource

// ResolvePosition implements sampler.PositionSource.
func (c Chain) ResolvePosition(subject string) (trails.Point, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if p, ok := src.ResolvePosition(subject); ok {
			return p, true
		}
	}
	return trails.Point{}, false
}
