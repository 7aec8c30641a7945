// Package ingress defines the asynchronous command, joint-state, and
// collision-scale sources the servo loop reads from every tick, plus small
// in-memory implementations usable as test doubles and as the composition
// root's default wiring.
package ingress

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
)

// TwistStamped is a six-vector Cartesian twist (linear + angular halves),
// tagged with the frame it was expressed in and the wall-clock time it
// arrived.
type TwistStamped struct {
	Linear  r3.Vector
	Angular r3.Vector
	Frame   string
	Stamp   time.Time
}

// IsZero reports whether every component of the twist is exactly zero.
func (t TwistStamped) IsZero() bool {
	return t.Linear == (r3.Vector{}) && t.Angular == (r3.Vector{})
}

// JointJog is a named list of per-joint velocity targets.
type JointJog struct {
	Names      []string
	Velocities []float64
	Stamp      time.Time
}

// IsZero reports whether every velocity in the jog is exactly zero.
func (j JointJog) IsZero() bool {
	for _, v := range j.Velocities {
		if v != 0 {
			return false
		}
	}
	return true
}

// JointState is a snapshot of measured joint positions and velocities,
// ordered however the ingress source chooses; the servo core maps names to
// its own internal ordering via JointNameIndex.
type JointState struct {
	Names     []string
	Positions []float64
	Velocities []float64
}

// CommandSource is the asynchronous source of the latest Cartesian twist,
// joint jog, and frame-name updates. Implementations must be safe for
// concurrent use: ingress callbacks write while the orchestrator reads once
// per tick.
type CommandSource interface {
	LatestTwist() (TwistStamped, bool)
	LatestJointJog() (JointJog, bool)
	LatestFrameNames() (planningFrame, commandFrame string)
}

// JointStateSource is the asynchronous source of measured joint state.
type JointStateSource interface {
	Latest(ctx context.Context) (JointState, error)
}

// CollisionScaleSource is the external collision monitor's published
// velocity-scaling factor, read without synchronization per the servo
// loop's lock-free collision-scale policy.
type CollisionScaleSource interface {
	Scale() float64
}
