package servo

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// errDroppedTick marks a tick that must be abandoned without publishing
// motion or updating filters, per spec 7's malformed-input handling. It
// never crosses a package boundary; Loop.Tick always returns nil to its
// caller for a dropped tick, since dropping is expected upstream
// misbehavior, not a failure of the loop itself.
var errDroppedTick = errors.New("servo: tick dropped")

// applyDeltaToPositions returns current+delta as a new slice, leaving
// current untouched.
func applyDeltaToPositions(current []float64, delta *mat.VecDense) []float64 {
	out := make([]float64, len(current))
	for i := range out {
		d := 0.0
		if i < delta.Len() {
			d = delta.AtVec(i)
		}
		out[i] = current[i] + d
	}
	return out
}

// velocityFromDelta returns delta/dt as a plain slice.
func velocityFromDelta(delta *mat.VecDense, dt float64) []float64 {
	out := make([]float64, delta.Len())
	for i := range out {
		out[i] = delta.AtVec(i) / dt
	}
	return out
}

// suddenHaltArrays returns the position/velocity pair a sudden halt
// publishes: the pre-delta measured position (for position control) and an
// all-zero velocity vector (for velocity control), per spec 4.5.
func suddenHaltArrays(original JointState) (position, velocity []float64) {
	position = append([]float64(nil), original.Positions...)
	velocity = make([]float64, len(original.Positions))
	return position, velocity
}
