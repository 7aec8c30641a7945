package servo

import (
	"gonum.org/v1/gonum/mat"

	"servoloop/internal/ingress"
)

// jointPath implements spec 4.7: NaN check, scaling, acceleration/velocity
// clipping, collision-only scaling (singularity scale fixed at 1), position
// filtering, and position-bound check.
func (l *Loop) jointPath(jog ingress.JointJog) (TrajectoryPoint, StatusCode, *mat.VecDense, error) {
	if hasNaN(jog.Velocities...) {
		l.throttleLog.Warnf("joint-nan", "servo: dropping tick, NaN in incoming joint jog")
		return TrajectoryPoint{}, NoWarning, nil, errDroppedTick
	}

	scaled, err := scaleJointJog(&l.params, jog, l.nameIndex, l.numJoints, l.throttleLog)
	if err != nil {
		l.throttleLog.Warnf("joint-unitless-range", "servo: dropping tick, %v", err)
		return TrajectoryPoint{}, NoWarning, nil, errDroppedTick
	}
	delta := mat.NewVecDense(l.numJoints, scaled)

	applyAccelerationLimits(delta, l.prevVelocity, l.params.PublishPeriod.Seconds(), l.bounds)
	applyVelocityLimits(delta, l.params.PublishPeriod.Seconds(), l.bounds)

	status := applyVelocityScaling(delta, l.collision.Scale(), singularityResult{Scale: 1, Status: NoWarning})

	position := applyDeltaToPositions(l.state.Positions, delta)
	velocity := velocityFromDelta(delta, l.params.PublishPeriod.Seconds())

	if positionBoundViolated(l.state, delta, l.params.JointLimitMargin, l.bounds) {
		position, velocity = suddenHaltArrays(l.originalState)
		status = JointBound
	}

	filteredPosition := append([]float64(nil), position...)
	l.filters.Filter(filteredPosition)

	point := composePoint(&l.params, filteredPosition, velocity, nil)
	return point, status, delta, nil
}
