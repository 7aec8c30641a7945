// Package kinematics defines the capability interface the servo core uses to
// query forward kinematics, Jacobians, frame transforms, and joint bounds,
// without depending on any particular robot description or motion-planning
// framework.
package kinematics

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// JointBounds describes the velocity, acceleration, and position limits of a
// single active joint. A Has* field false means that bound is undefined for
// the joint and limit enforcement must skip it rather than clamp to zero.
type JointBounds struct {
	MinVelocity, MaxVelocity         float64
	MinAcceleration, MaxAcceleration float64
	MinPosition, MaxPosition         float64

	HasVelocity     bool
	HasAcceleration bool
	HasPosition     bool
}

// Model is the back-reference capability the differential IK solver and
// frame resolver consult every tick: the current Jacobian, joint bounds, and
// named-frame transforms. Implementations that support the singularity
// sign-resolution perturbation (see Snapshot/Restore) must make that
// perturbation invisible to concurrent readers, since the servo loop is the
// only writer but other code may read Positions between ticks.
type Model interface {
	// Jacobian returns the 6xN geometric Jacobian of the named move group at
	// its current configuration.
	Jacobian(group string) (*mat.Dense, error)

	// KnowsFrame reports whether name is a frame the model can resolve
	// directly, as opposed to one that requires falling back to an external
	// transform source.
	KnowsFrame(name string) bool

	// Frame returns the rotation that carries a vector expressed in name
	// into the model's root frame. Returns an error if name is unknown;
	// callers should check KnowsFrame first.
	Frame(name string) (Rotation, error)

	// SetPositions overwrites the named group's joint positions. Used only
	// by the singularity sign-resolution test step, which must restore the
	// prior positions via Snapshot/SetPositions once done.
	SetPositions(group string, values []float64) error

	// Positions returns the named group's current joint positions, in the
	// same order as JointBounds and Jacobian columns.
	Positions(group string) ([]float64, error)

	// JointBounds returns the per-joint velocity, acceleration, and position
	// bounds of the named group's active joints, in Jacobian-column order.
	JointBounds(group string) ([]JointBounds, error)
}

// TransformSource is the fallback used by the frame resolver when a frame
// name is not one the Model knows directly. It is consulted through the
// robot's root link, mirroring a transform-tree lookup.
type TransformSource interface {
	Lookup(ctx context.Context, from, to string) (Rotation, error)
}

// Snapshot captures a group's joint positions so they can be restored after
// a scratch perturbation, per the singularity-direction sign-resolution step.
func Snapshot(model Model, group string) ([]float64, error) {
	values, err := model.Positions(group)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot positions for group %q", group)
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}

// Restore writes a previously captured Snapshot back into the model.
func Restore(model Model, group string, snapshot []float64) error {
	return errors.Wrapf(model.SetPositions(group, snapshot), "restore positions for group %q", group)
}

// ApplyDelta returns a new position vector equal to current+delta, used to
// drive the singularity perturbation test step without mutating the caller's
// slice.
func ApplyDelta(current []float64, delta *mat.VecDense) []float64 {
	out := make([]float64, len(current))
	for i := range out {
		d := 0.0
		if delta != nil && i < delta.Len() {
			d = delta.AtVec(i)
		}
		out[i] = current[i] + d
	}
	return out
}

// rotateVec applies r to v. Declared here so Rotation.Apply can stay a small
// value-receiver method backed by gonum's Dense.
func rotateVec(r *mat.Dense, v r3.Vector) r3.Vector {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(r, in)
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
