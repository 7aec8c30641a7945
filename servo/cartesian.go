package servo

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"servoloop/internal/ingress"
)

// cartesianPath implements spec 4.6: NaN check, control-axis zeroing, frame
// transform, scaling, Jacobian fetch, drift-row removal, pseudoinverse
// solve, acceleration/velocity clipping, singularity+collision scaling,
// position filtering, and position-bound check. On success it returns the
// composed point, the resulting status, and the unfiltered Δθ used to
// update prev_joint_velocity. A non-nil error means the tick must be
// dropped with filters reset, per spec 7's "malformed input" handling.
func (l *Loop) cartesianPath(ctx context.Context, twist ingress.TwistStamped, commandFrame string) (TrajectoryPoint, StatusCode, *mat.VecDense, error) {
	if hasNaN(twist.Linear.X, twist.Linear.Y, twist.Linear.Z, twist.Angular.X, twist.Angular.Y, twist.Angular.Z) {
		l.throttleLog.Warnf("cartesian-nan", "servo: dropping tick, NaN in incoming Cartesian twist")
		return TrajectoryPoint{}, NoWarning, nil, errDroppedTick
	}

	linear, angular := twist.Linear, twist.Angular
	l.controlMask().applyToTwist(&linear, &angular)

	if twist.Frame == "" || twist.Frame == commandFrame {
		linear = l.transform.Apply(linear)
		angular = l.transform.Apply(angular)
	} else {
		frameTransform := resolveFrameTransform(ctx, l.model, l.transforms, l.rootLink, l.params.PlanningFrame, twist.Frame)
		linear = frameTransform.Apply(linear)
		angular = frameTransform.Apply(angular)
	}

	dLinear, dAngular, err := scaleTwist(&l.params, linear, angular)
	if err != nil {
		l.throttleLog.Warnf("cartesian-unitless-range", "servo: dropping tick, %v", err)
		return TrajectoryPoint{}, NoWarning, nil, errDroppedTick
	}
	dx := mat.NewVecDense(NumAxes, []float64{
		dLinear.X, dLinear.Y, dLinear.Z, dAngular.X, dAngular.Y, dAngular.Z,
	})

	jFull, err := l.model.Jacobian(l.params.MoveGroupName)
	if err != nil {
		l.throttleLog.Warnf("jacobian-fetch", "servo: dropping tick, failed to fetch Jacobian: %v", err)
		return TrajectoryPoint{}, NoWarning, nil, errDroppedTick
	}

	jReduced, dxReduced := removeDriftRows(jFull, dx, l.driftMask())

	svd, err := svdOf(jReduced)
	if err != nil {
		l.throttleLog.Warnf("svd-fail", "servo: dropping tick, SVD failed: %v", err)
		return TrajectoryPoint{}, NoWarning, nil, errDroppedTick
	}
	jPlus := pseudoInverse(svd)
	delta := deltaTheta(jPlus, dxReduced)

	applyAccelerationLimits(delta, l.prevVelocity, l.params.PublishPeriod.Seconds(), l.bounds)
	applyVelocityLimits(delta, l.params.PublishPeriod.Seconds(), l.bounds)

	sing, err := evaluateSingularity(ctx, l.model, l.params.MoveGroupName, jFull, dx, &l.params)
	if err != nil {
		l.throttleLog.Warnf("singularity-eval", "servo: singularity evaluation failed, treating as no scaling: %v", err)
		sing = singularityResult{Scale: 1, Status: NoWarning}
	}
	status := applyVelocityScaling(delta, l.collision.Scale(), sing)

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

func hasNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// insertRedundantPoints implements the use_gazebo redundant-point insertion
// described in spec 4.6/9: when enabled, the outgoing sequence is resized to
// GazeboRedundantMessageCount and indices [2, count) are filled with copies
// of point 0 with increasing time_from_start, deliberately leaving index 1
// at its zero value, preserving the original's off-by-one.
func (l *Loop) insertRedundantPoints(point TrajectoryPoint) []TrajectoryPoint {
	if !l.params.UseGazebo {
		return []TrajectoryPoint{point}
	}
	points := make([]TrajectoryPoint, l.params.GazeboRedundantMessageCount)
	points[0] = point
	for i := 2; i < len(points); i++ {
		p := point
		p.TimeFromStart = time.Duration(i) * l.params.PublishPeriod
		points[i] = p
	}
	return points
}
