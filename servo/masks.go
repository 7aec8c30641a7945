package servo

import "github.com/golang/geo/r3"

// Axis indexes the six Cartesian degrees of freedom a twist spans.
type Axis int

const (
	AxisLinearX Axis = iota
	AxisLinearY
	AxisLinearZ
	AxisAngularX
	AxisAngularY
	AxisAngularZ
)

// NumAxes is the fixed Cartesian dimensionality the solver works in.
const NumAxes = 6

// Mask is a six-element boolean vector indexed by Axis.
type Mask [NumAxes]bool

// ControlMask marks which Cartesian axes are commanded. An axis with value
// false is forced to zero before IK.
type ControlMask Mask

// DriftMask marks which Cartesian axes the solver may leave uncontrolled. An
// axis with value true has its Jacobian row and delta-x component removed
// before the pseudoinverse, trading control of that axis for redundancy.
type DriftMask Mask

// DefaultControlMask commands every axis.
func DefaultControlMask() ControlMask {
	return ControlMask{true, true, true, true, true, true}
}

// DefaultDriftMask removes no axis.
func DefaultDriftMask() DriftMask {
	return DriftMask{}
}

// Apply zeros the components of v (length NumAxes, in Axis order) whose mask
// bit is false.
func (c ControlMask) Apply(v []float64) {
	for i := 0; i < NumAxes && i < len(v); i++ {
		if !c[i] {
			v[i] = 0
		}
	}
}

// applyToTwist zeros the linear/angular components whose mask bit is false,
// in Axis order (lin-x, lin-y, lin-z, ang-x, ang-y, ang-z).
func (c ControlMask) applyToTwist(linear, angular *r3.Vector) {
	if !c[AxisLinearX] {
		linear.X = 0
	}
	if !c[AxisLinearY] {
		linear.Y = 0
	}
	if !c[AxisLinearZ] {
		linear.Z = 0
	}
	if !c[AxisAngularX] {
		angular.X = 0
	}
	if !c[AxisAngularY] {
		angular.Y = 0
	}
	if !c[AxisAngularZ] {
		angular.Z = 0
	}
}

// DriftRows returns, in descending order, the row indices marked for
// removal. Descending order lets a caller delete rows one at a time in
// place without shifting the indices of rows not yet processed.
func (d DriftMask) DriftRows() []int {
	rows := make([]int, 0, NumAxes)
	for i := NumAxes - 1; i >= 0; i-- {
		if d[i] {
			rows = append(rows, i)
		}
	}
	return rows
}

// ActiveRowCount returns how many of the six rows survive drift removal.
func (d DriftMask) ActiveRowCount() int {
	n := NumAxes
	for _, v := range d {
		if v {
			n--
		}
	}
	return n
}

// removesAllAxes reports whether d would leave zero rows, the one DriftMask
// configuration the control-plane RPC must reject.
func (d DriftMask) removesAllAxes() bool {
	return d.ActiveRowCount() == 0
}
