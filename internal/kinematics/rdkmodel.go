package kinematics

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/components/arm"
	"go.viam.com/rdk/referenceframe"
)

// RDKModel adapts a live go.viam.com/rdk arm resource into a Model, so the
// servo core can drive real hardware through the same capability interface
// its in-memory Fake satisfies. It depends on the arm.Arm interface rather
// than any concrete driver, matching the "no FFI into a robotics framework
// is assumed" design note: any rdk arm resource works, not just one vendor's
// servo bus.
//
// Jacobian is computed numerically (central difference of forward
// kinematics) rather than analytically, since the only confirmed way to get
// an end-effector pose from a referenceframe.Model here is
// referenceframe.ComputeOOBPosition, which returns a pose, not a Jacobian.
// Only the three linear rows are populated; the three angular rows are left
// zero. A true angular Jacobian would need to linearize the orientation
// vector's small-rotation behavior, which this adapter does not attempt.
// The servo control mask only zeroes twist components and leaves these zero
// rows in the Jacobian; the drift mask is what removes rows before the
// pseudoinverse.
type RDKModel struct {
	Arm      arm.Arm
	RDKFrame referenceframe.Model
	Eps      float64
}

// NewRDKModel returns an RDKModel with a default finite-difference step.
func NewRDKModel(a arm.Arm, frame referenceframe.Model) *RDKModel {
	return &RDKModel{Arm: a, RDKFrame: frame, Eps: 1e-4}
}

func (m *RDKModel) inputsFromFloats(values []float64) []referenceframe.Input {
	inputs := make([]referenceframe.Input, len(values))
	for i, v := range values {
		inputs[i] = v
	}
	return inputs
}

func (m *RDKModel) endPoint(inputs []referenceframe.Input) (r3.Vector, error) {
	pose, err := referenceframe.ComputeOOBPosition(m.RDKFrame, inputs)
	if err != nil {
		return r3.Vector{}, err
	}
	return pose.Point(), nil
}

// Jacobian returns the 6xN Jacobian at the arm's current joint positions,
// numerically differentiating the linear rows and leaving the angular rows
// zero (see the RDKModel doc comment).
func (m *RDKModel) Jacobian(group string) (*mat.Dense, error) {
	values, err := m.Positions(group)
	if err != nil {
		return nil, err
	}
	n := len(values)
	j := mat.NewDense(6, n, nil)

	for col := 0; col < n; col++ {
		plus := append([]float64(nil), values...)
		minus := append([]float64(nil), values...)
		plus[col] += m.Eps
		minus[col] -= m.Eps

		pPlus, err := m.endPoint(m.inputsFromFloats(plus))
		if err != nil {
			return nil, errors.Wrap(err, "rdkmodel: forward kinematics at perturbed positions")
		}
		pMinus, err := m.endPoint(m.inputsFromFloats(minus))
		if err != nil {
			return nil, errors.Wrap(err, "rdkmodel: forward kinematics at perturbed positions")
		}

		j.Set(0, col, (pPlus.X-pMinus.X)/(2*m.Eps))
		j.Set(1, col, (pPlus.Y-pMinus.Y)/(2*m.Eps))
		j.Set(2, col, (pPlus.Z-pMinus.Z)/(2*m.Eps))
	}
	return j, nil
}

// KnowsFrame always reports false: RDKModel exposes no named sub-frames
// beyond the arm's end effector, so the frame resolver always falls back to
// its TransformSource for this Model.
func (m *RDKModel) KnowsFrame(name string) bool {
	return false
}

func (m *RDKModel) Frame(name string) (Rotation, error) {
	return Rotation{}, fmt.Errorf("kinematics: rdkmodel has no named frame %q, use a TransformSource", name)
}

// SetPositions drives the arm resource to values, blocking until the move
// call returns. The singularity sign-resolution perturbation is the only
// caller of this method; it runs on every Cartesian-path tick and calls it
// twice (perturb, then restore), so a live RDKModel issues two real motion
// commands per Cartesian-path tick.
func (m *RDKModel) SetPositions(group string, values []float64) error {
	return m.Arm.MoveToJointPositions(context.Background(), m.inputsFromFloats(values), nil)
}

func (m *RDKModel) Positions(group string) ([]float64, error) {
	inputs, err := m.Arm.JointPositions(context.Background(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "rdkmodel: read joint positions")
	}
	out := make([]float64, len(inputs))
	for i, in := range inputs {
		out[i] = in
	}
	return out, nil
}

// JointBounds returns no bounds for any joint: limit enforcement for a live
// RDKModel is left to the underlying arm resource's own motion planner,
// since referenceframe.Model exposes no confirmed limit accessor this
// adapter can ground a per-joint (vel, accel, pos) tuple on.
func (m *RDKModel) JointBounds(group string) ([]JointBounds, error) {
	values, err := m.Positions(group)
	if err != nil {
		return nil, err
	}
	return make([]JointBounds, len(values)), nil
}
