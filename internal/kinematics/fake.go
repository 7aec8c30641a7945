package kinematics

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Fake is an in-memory Model usable as a test double, in the spirit of the
// hand-built fakes in the teacher's registry_test.go. It holds one fixed
// Jacobian returned for every group plus a mutable position vector, and a
// small table of named frame rotations.
type Fake struct {
	Jac        *mat.Dense
	Bounds     []JointBounds
	Positions_ []float64
	Frames     map[string]Rotation
}

// NewFake builds a Fake with jac as the Jacobian returned for every group,
// an initial all-zero position vector sized to jac's column count, and no
// bound or frame data; callers set Bounds/Frames as the test requires.
func NewFake(jac *mat.Dense) *Fake {
	_, cols := jac.Dims()
	return &Fake{
		Jac:        jac,
		Positions_: make([]float64, cols),
		Frames:     map[string]Rotation{},
	}
}

func (f *Fake) Jacobian(group string) (*mat.Dense, error) {
	return f.Jac, nil
}

func (f *Fake) KnowsFrame(name string) bool {
	_, ok := f.Frames[name]
	return ok
}

func (f *Fake) Frame(name string) (Rotation, error) {
	r, ok := f.Frames[name]
	if !ok {
		return Rotation{}, fmt.Errorf("kinematics: fake model has no frame %q", name)
	}
	return r, nil
}

func (f *Fake) SetPositions(group string, values []float64) error {
	if len(values) != len(f.Positions_) {
		return fmt.Errorf("kinematics: fake model expected %d positions, got %d", len(f.Positions_), len(values))
	}
	copy(f.Positions_, values)
	return nil
}

func (f *Fake) Positions(group string) ([]float64, error) {
	out := make([]float64, len(f.Positions_))
	copy(out, f.Positions_)
	return out, nil
}

func (f *Fake) JointBounds(group string) ([]JointBounds, error) {
	return f.Bounds, nil
}

// FakeTransformSource is a table-backed TransformSource test double.
type FakeTransformSource struct {
	Table map[[2]string]Rotation
	Err   error
}

func (f *FakeTransformSource) Lookup(ctx context.Context, from, to string) (Rotation, error) {
	if f.Err != nil {
		return Rotation{}, f.Err
	}
	r, ok := f.Table[[2]string{from, to}]
	if !ok {
		return Rotation{}, fmt.Errorf("kinematics: fake transform source has no entry for %s -> %s", from, to)
	}
	return r, nil
}
