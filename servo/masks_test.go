package servo

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

func TestDefaultMasksCommandAllAxesDriftNone(t *testing.T) {
	c := DefaultControlMask()
	for i := 0; i < NumAxes; i++ {
		require.True(t, c[i])
	}
	d := DefaultDriftMask()
	require.Equal(t, 0, len(d.DriftRows()))
	require.Equal(t, NumAxes, d.ActiveRowCount())
}

func TestControlMaskApplyZeroesMaskedAxes(t *testing.T) {
	c := ControlMask{true, false, true, false, true, false}
	v := []float64{1, 2, 3, 4, 5, 6}
	c.Apply(v)
	require.Equal(t, []float64{1, 0, 3, 0, 5, 0}, v)
}

func TestControlMaskApplyToTwist(t *testing.T) {
	c := ControlMask{false, true, true, true, false, true}
	linear := r3.Vector{X: 1, Y: 2, Z: 3}
	angular := r3.Vector{X: 4, Y: 5, Z: 6}
	c.applyToTwist(&linear, &angular)
	require.Equal(t, r3.Vector{X: 0, Y: 2, Z: 3}, linear)
	require.Equal(t, r3.Vector{X: 4, Y: 0, Z: 6}, angular)
}

func TestDriftRowsDescendingOrder(t *testing.T) {
	d := DriftMask{true, false, true, false, true, false}
	rows := d.DriftRows()
	require.Equal(t, []int{4, 2, 0}, rows)
	require.Equal(t, NumAxes-3, d.ActiveRowCount())
}

func TestDriftMaskRemovingAllAxesDetected(t *testing.T) {
	d := DriftMask{true, true, true, true, true, true}
	require.True(t, d.removesAllAxes())

	d2 := DriftMask{true, true, true, true, true, false}
	require.False(t, d2.removesAllAxes())
}
