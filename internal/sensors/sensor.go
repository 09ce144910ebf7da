// Package sensors implements the Counter Sources of §4.A: a set of
// blocking probe operations that return a typed result or "unavailable" —
// probes never panic or propagate errors as user-visible failures; a
// transient failure degrades to absence (or, for vendor counters, to
// zero so downstream rates stay continuous).
package sensors

import "context"

// Probe is satisfied by every counter source in this package. Collect
// follows the teacher's services.Sensor shape (Name/Connect/Disconnect/
// Collect) generalized to typed results via Go generics instead of `any`,
// since every probe here has one fixed result shape.
type Probe[T any] interface {
	Name() string
	Collect(ctx context.Context) (T, error)
}
