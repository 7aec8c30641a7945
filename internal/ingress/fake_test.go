package ingress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFakeJointStateSourceFailsThenSucceeds(t *testing.T) {
	f := NewFakeJointStateSource(JointState{Names: []string{"a"}, Positions: []float64{1}})
	f.FailCount = 2

	_, err := f.Latest(context.Background())
	require.Error(t, err)
	_, err = f.Latest(context.Background())
	require.Error(t, err)

	state, err := f.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, []float64{1}, state.Positions)
}
