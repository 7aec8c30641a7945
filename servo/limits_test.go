package servo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"servoloop/internal/kinematics"
)

func TestApplyVelocityLimitsClampsOverLimitDelta(t *testing.T) {
	delta := mat.NewVecDense(1, []float64{1.0}) // 1.0 / 0.1s = 10 rad/s, over max 2
	bounds := []kinematics.JointBounds{{MinVelocity: -2, MaxVelocity: 2, HasVelocity: true}}
	applyVelocityLimits(delta, 0.1, bounds)
	require.InEpsilon(t, 0.2, delta.AtVec(0), 1e-9)
}

func TestApplyVelocityLimitsSkipsUnboundedJoint(t *testing.T) {
	delta := mat.NewVecDense(1, []float64{5.0})
	bounds := []kinematics.JointBounds{{HasVelocity: false}}
	applyVelocityLimits(delta, 0.1, bounds)
	require.InEpsilon(t, 5.0, delta.AtVec(0), 1e-9)
}

func TestApplyVelocityLimitsSkipsZeroDeltaToAvoidDivideByZero(t *testing.T) {
	delta := mat.NewVecDense(1, []float64{0})
	bounds := []kinematics.JointBounds{{MinVelocity: -2, MaxVelocity: 2, HasVelocity: true}}
	require.NotPanics(t, func() { applyVelocityLimits(delta, 0.1, bounds) })
	require.Equal(t, 0.0, delta.AtVec(0))
}

func TestApplyAccelerationLimitsClampsOverLimitDelta(t *testing.T) {
	// prevVelocity=0, dt=0.1: an unclipped delta of 1.0 implies v=10, a=100.
	delta := mat.NewVecDense(1, []float64{1.0})
	prevVelocity := []float64{0}
	bounds := []kinematics.JointBounds{{MinAcceleration: -5, MaxAcceleration: 5, HasAcceleration: true}}
	applyAccelerationLimits(delta, prevVelocity, 0.1, bounds)
	// a* = 5 => v = a*dt+prev = 0.5 => newDelta = v*dt = 0.05
	require.InEpsilon(t, 0.05, delta.AtVec(0), 1e-9)
}

func TestPositionBoundViolatedWhenPushingFurtherOutsideMargin(t *testing.T) {
	bounds := []kinematics.JointBounds{{MinPosition: -1, MaxPosition: 1, HasPosition: true}}
	state := JointState{Positions: []float64{-0.95}, Velocities: []float64{-0.5}}
	delta := mat.NewVecDense(1, []float64{-0.1})
	require.True(t, positionBoundViolated(state, delta, 0.1, bounds))
}

func TestPositionBoundNotViolatedWhenVelocityPullsBackInward(t *testing.T) {
	bounds := []kinematics.JointBounds{{MinPosition: -1, MaxPosition: 1, HasPosition: true}}
	state := JointState{Positions: []float64{-0.95}, Velocities: []float64{0.5}}
	delta := mat.NewVecDense(1, []float64{-0.1})
	require.False(t, positionBoundViolated(state, delta, 0.1, bounds))
}

func TestApplyVelocityScalingCollisionZeroOverridesSingularity(t *testing.T) {
	delta := mat.NewVecDense(2, []float64{1, 2})
	status := applyVelocityScaling(delta, 0, singularityResult{Scale: 1, Status: DecelerateForSingularity})
	require.Equal(t, HaltForCollision, status)
	require.Equal(t, 0.0, delta.AtVec(0))
	require.Equal(t, 0.0, delta.AtVec(1))
}

func TestApplyVelocityScalingCombinesCollisionAndSingularityScale(t *testing.T) {
	delta := mat.NewVecDense(1, []float64{1.0})
	status := applyVelocityScaling(delta, 0.5, singularityResult{Scale: 0.5, Status: DecelerateForSingularity})
	require.Equal(t, DecelerateForSingularity, status)
	require.InEpsilon(t, 0.25, delta.AtVec(0), 1e-9)
}

func TestEvaluateSingularityHardStopAboveThresholdScalesToZero(t *testing.T) {
	// Jacobian with a tiny last singular value pushes kappa above hard stop.
	j := mat.NewDense(2, 2, []float64{1, 0, 0, 1e-6})
	model := kinematics.NewFake(j)
	model.Positions_ = []float64{0, 0}

	p := &Parameters{LowerSingularityThreshold: 10, HardStopSingularityThreshold: 100}
	dx := mat.NewVecDense(2, []float64{1, 1})

	result, err := evaluateSingularity(nil, model, "arm", j, dx, p)
	require.NoError(t, err)
	if result.Status == HaltForSingularity {
		require.Equal(t, 0.0, result.Scale)
	}
}
