package servo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/components/arm"
	"go.viam.com/rdk/resource"

	"servoloop/internal/kinematics"
)

func newTestControlLoop(t *testing.T) *Loop {
	jac := mat.NewDense(1, 1, []float64{1})
	model := kinematics.NewFake(jac)
	loop, err := NewLoop(validParameters(), Config{
		Name:       resource.NewName(arm.API, "test-arm"),
		JointNames: []string{"a"},
		Model:      model,
	})
	require.NoError(t, err)
	return loop
}

func TestLoopNameReturnsConfiguredResourceName(t *testing.T) {
	loop := newTestControlLoop(t)
	require.Equal(t, "test-arm", loop.Name().ShortName())
}

func TestSetDriftDimensionsRejectsAllSixAxes(t *testing.T) {
	loop := newTestControlLoop(t)
	err := loop.SetDriftDimensions(context.Background(), [NumAxes]bool{true, true, true, true, true, true})
	require.ErrorIs(t, err, errDriftRemovesAllAxes)
}

func TestSetDriftDimensionsAcceptsPartialMask(t *testing.T) {
	loop := newTestControlLoop(t)
	err := loop.SetDriftDimensions(context.Background(), [NumAxes]bool{false, false, false, true, true, true})
	require.NoError(t, err)
	require.Equal(t, 3, loop.driftMask().ActiveRowCount())
}

func TestSetControlDimensionsUpdatesMask(t *testing.T) {
	loop := newTestControlLoop(t)
	require.NoError(t, loop.SetControlDimensions(context.Background(), [NumAxes]bool{true, false, true, false, true, false}))
	require.Equal(t, ControlMask{true, false, true, false, true, false}, loop.controlMask())
}

func TestResetStatusClearsToNoWarning(t *testing.T) {
	loop := newTestControlLoop(t)
	loop.setStatus(HaltForCollision)
	require.Equal(t, HaltForCollision, loop.Status())
	require.NoError(t, loop.ResetStatus(context.Background()))
	require.Equal(t, NoWarning, loop.Status())
}

func TestPausedDefaultsFalse(t *testing.T) {
	loop := newTestControlLoop(t)
	require.False(t, loop.Paused())
	loop.SetPaused(true)
	require.True(t, loop.Paused())
}

func TestCommandFrameTransformUninitializedUntilFirstResolve(t *testing.T) {
	loop := newTestControlLoop(t)
	_, initialized := loop.CommandFrameTransform()
	require.False(t, initialized)
}

func TestSetPrevVelocityDividesByPublishPeriod(t *testing.T) {
	loop := newTestControlLoop(t)
	loop.prevVelocity = make([]float64, 1)
	delta := mat.NewVecDense(1, []float64{loop.params.PublishPeriod.Seconds() * 2})
	loop.setPrevVelocity(delta)
	require.InEpsilon(t, 2.0, loop.prevVelocity[0], 1e-9)
}
