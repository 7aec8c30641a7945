package servo

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// svdOf computes the thin SVD of J, the same decomposition Eigen's
// JacobiSVD performs in the original: J = U * Sigma * V^T.
func svdOf(j *mat.Dense) (*mat.SVD, error) {
	var svd mat.SVD
	if ok := svd.Factorize(j, mat.SVDThin); !ok {
		return nil, errors.New("servo: Jacobian SVD factorization failed")
	}
	return &svd, nil
}

// pseudoInverse forms J+ = V * Sigma^-1 * U^T from a factorized SVD, with
// no Tikhonov damping: a zero singular value divides naively, matching the
// original's undamped pseudoinverse (see DESIGN.md open question 2).
func pseudoInverse(svd *mat.SVD) *mat.Dense {
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	sigmaInv := mat.NewDense(len(values), len(values), nil)
	for i, s := range values {
		sigmaInv.Set(i, i, 1/s)
	}

	var vSigmaInv mat.Dense
	vSigmaInv.Mul(&v, sigmaInv)

	var pinv mat.Dense
	pinv.Mul(&vSigmaInv, u.T())
	return &pinv
}

// conditionNumber returns sigma_max/sigma_min from a factorized SVD. Gonum
// returns singular values in descending order, so these are the first and
// last entries.
func conditionNumber(svd *mat.SVD) float64 {
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0
	}
	sigmaMax := values[0]
	sigmaMin := values[len(values)-1]
	if sigmaMin == 0 {
		return math.Inf(1)
	}
	return sigmaMax / sigmaMin
}

// smallestSingularVector returns the column of U corresponding to the
// smallest singular value: the direction the Jacobian is least able to
// move the end effector in, ambiguous in sign until resolved by the
// singularity-direction test step.
func smallestSingularVector(svd *mat.SVD) *mat.VecDense {
	var u mat.Dense
	svd.UTo(&u)
	rows, cols := u.Dims()
	col := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		col.SetVec(i, u.At(i, cols-1))
	}
	return col
}

// removeDriftRows returns new copies of j and dx without the rows marked by
// drift. It marks the drift rows in a keep mask and copies the surviving
// rows in ascending order into fresh matrices, so no index shifts while
// rows are removed. The drift mask invariant (never all six axes) must
// already be enforced by the caller.
func removeDriftRows(j *mat.Dense, dx *mat.VecDense, drift DriftMask) (*mat.Dense, *mat.VecDense) {
	rows := drift.DriftRows()
	if len(rows) == 0 {
		return j, dx
	}
	_, cols := j.Dims()
	keep := make([]bool, dx.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, r := range rows {
		if r < len(keep) {
			keep[r] = false
		}
	}

	var reducedRows []int
	for i, k := range keep {
		if k {
			reducedRows = append(reducedRows, i)
		}
	}

	newJ := mat.NewDense(len(reducedRows), cols, nil)
	newDx := mat.NewVecDense(len(reducedRows), nil)
	for newRow, oldRow := range reducedRows {
		for c := 0; c < cols; c++ {
			newJ.Set(newRow, c, j.At(oldRow, c))
		}
		newDx.SetVec(newRow, dx.AtVec(oldRow))
	}
	return newJ, newDx
}

// deltaTheta computes Δθ = J+ Δx.
func deltaTheta(jPlus *mat.Dense, dx *mat.VecDense) *mat.VecDense {
	rows, _ := jPlus.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(jPlus, dx)
	return out
}
