// Package trails owns the per-subject movement history of a replay session.
//
// Responsibilities: sample acceptance (ordering and coalescing), dwell
// classification between consecutive accepted samples, and the Registry
// that stores one Trail per subject together with its display state.
// Key types: Sample, DwellEvent, Trail, Snapshot, Registry.
//
// Dependency rule: this package never draws and never polls. Sampling lives
// in trails/sampler and drawing in trails/render; both depend on this
// package, never the other way round.
package trails
