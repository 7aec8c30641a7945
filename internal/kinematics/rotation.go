package kinematics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Rotation is a 3x3 rotation matrix carrying vectors between two frames. The
// zero value is the all-zero matrix, which per the frame resolver's contract
// (spec design note 9) means "not yet initialized" rather than identity.
type Rotation struct {
	m *mat.Dense
}

// IdentityRotation returns the rotation that leaves vectors unchanged.
func IdentityRotation() Rotation {
	return Rotation{m: identityDense()}
}

func identityDense() *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	d.Set(0, 0, 1)
	d.Set(1, 1, 1)
	d.Set(2, 2, 1)
	return d
}

// RotationFromDense wraps an existing 3x3 matrix. Panics if m is not 3x3, to
// surface a programmer error immediately rather than silently misbehaving.
func RotationFromDense(m *mat.Dense) Rotation {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		panic("kinematics: RotationFromDense requires a 3x3 matrix")
	}
	return Rotation{m: m}
}

// IsZero reports whether this is the uninitialized all-zero sentinel.
func (r Rotation) IsZero() bool {
	if r.m == nil {
		return true
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if r.m.At(i, j) != 0 {
				return false
			}
		}
	}
	return true
}

// Apply rotates v by this rotation. Applying the zero sentinel yields the
// zero vector, matching the spec's "all-zero transform effectively zeros the
// command" fallback behavior.
func (r Rotation) Apply(v r3.Vector) r3.Vector {
	if r.m == nil {
		return r3.Vector{}
	}
	return rotateVec(r.m, v)
}

// Inverse returns the transpose, the inverse of any orthogonal rotation
// matrix. Used by the frame-resolver round-trip law and by composing a
// planning-frame rotation from two root-relative frame rotations.
func (r Rotation) Inverse() Rotation {
	if r.m == nil {
		return Rotation{}
	}
	var t mat.Dense
	t.CloneFrom(r.m.T())
	return Rotation{m: &t}
}

// Compose returns the rotation that first applies r, then other: equivalent
// to other * r as matrices, so that Compose(r, other).Apply(v) ==
// other.Apply(r.Apply(v)).
func Compose(r, other Rotation) Rotation {
	if r.m == nil || other.m == nil {
		return Rotation{}
	}
	var out mat.Dense
	out.Mul(other.m, r.m)
	return Rotation{m: &out}
}
