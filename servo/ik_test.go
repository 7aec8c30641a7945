package servo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPseudoInverseSolvesIdentityJacobianExactly(t *testing.T) {
	j := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	svd, err := svdOf(j)
	require.NoError(t, err)
	jPlus := pseudoInverse(svd)

	dx := mat.NewVecDense(3, []float64{1, 2, 3})
	delta := deltaTheta(jPlus, dx)
	require.InEpsilon(t, 1.0, delta.AtVec(0), 1e-9)
	require.InEpsilon(t, 2.0, delta.AtVec(1), 1e-9)
	require.InEpsilon(t, 3.0, delta.AtVec(2), 1e-9)
}

func TestConditionNumberOfIdentityIsOne(t *testing.T) {
	j := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	svd, err := svdOf(j)
	require.NoError(t, err)
	require.InEpsilon(t, 1.0, conditionNumber(svd), 1e-9)
}

func TestConditionNumberOfSingularJacobianIsInfinite(t *testing.T) {
	j := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 0,
	})
	svd, err := svdOf(j)
	require.NoError(t, err)
	require.True(t, math.IsInf(conditionNumber(svd), 1))
}

func TestRemoveDriftRowsKeepsOnlyNonDriftAxes(t *testing.T) {
	j := mat.NewDense(6, 2, []float64{
		1, 0,
		2, 0,
		3, 0,
		4, 0,
		5, 0,
		6, 0,
	})
	dx := mat.NewVecDense(6, []float64{10, 20, 30, 40, 50, 60})

	drift := DriftMask{false, true, false, true, false, true}
	newJ, newDx := removeDriftRows(j, dx, drift)

	rows, cols := newJ.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 2, cols)
	require.Equal(t, 3, newDx.Len())

	require.InEpsilon(t, 1.0, newJ.At(0, 0), 1e-9)
	require.InEpsilon(t, 3.0, newJ.At(1, 0), 1e-9)
	require.InEpsilon(t, 5.0, newJ.At(2, 0), 1e-9)
	require.InEpsilon(t, 10.0, newDx.AtVec(0), 1e-9)
	require.InEpsilon(t, 30.0, newDx.AtVec(1), 1e-9)
	require.InEpsilon(t, 50.0, newDx.AtVec(2), 1e-9)
}

func TestRemoveDriftRowsNoOpWhenDriftMaskEmpty(t *testing.T) {
	j := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	dx := mat.NewVecDense(2, []float64{5, 6})
	newJ, newDx := removeDriftRows(j, dx, DefaultDriftMask())
	require.True(t, newJ == j)
	require.True(t, newDx == dx)
}
