package servo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterFirstCallReturnsMeasurementExactly(t *testing.T) {
	f := NewFilter(2.0)
	require.InEpsilon(t, 5.0, f.Filter(5.0), 1e-12)
}

func TestFilterConvergesTowardConstantInput(t *testing.T) {
	f := NewFilter(2.0)
	var out float64
	for i := 0; i < 200; i++ {
		out = f.Filter(10.0)
	}
	require.InEpsilon(t, 10.0, out, 1e-6)
}

func TestFilterResetClearsTransient(t *testing.T) {
	f := NewFilter(2.0)
	f.Filter(100.0)
	f.Filter(100.0)
	f.Reset(3.0)
	require.InEpsilon(t, 3.0, f.Filter(3.0), 1e-12)
}

func TestFilterBankSizedToNumJoints(t *testing.T) {
	b := NewFilterBank(4, 2.0)
	require.Equal(t, 4, b.Len())

	positions := []float64{1, 2, 3, 4}
	b.Filter(positions)
	require.Equal(t, []float64{1, 2, 3, 4}, positions)

	positions[0] = 99
	b.Filter(positions)
	require.NotEqual(t, 99.0, positions[0])
}

func TestFilterBankResetMatchesSubsequentFilterExactly(t *testing.T) {
	b := NewFilterBank(2, 5.0)
	b.Filter([]float64{1, 1})
	b.Filter([]float64{50, 50})

	positions := []float64{7, 8}
	b.Reset(positions)
	out := append([]float64(nil), positions...)
	b.Filter(out)
	require.InEpsilon(t, 7.0, out[0], 1e-12)
	require.InEpsilon(t, 8.0, out[1], 1e-12)
}
