package servo

import (
	"context"
	"time"
)

// TrajectoryPoint is one outgoing joint-trajectory point: up to num_joints
// positions, velocities, and accelerations, each populated only if its
// corresponding Parameters.PublishJoint* flag is set, plus the elapsed time
// since the trajectory started.
type TrajectoryPoint struct {
	Positions     []float64
	Velocities    []float64
	Accelerations []float64
	TimeFromStart time.Duration
}

// OutputSink publishes the servo core's per-tick outputs. PublishTrajectory
// carries command_out_type=joint_trajectory output; PublishFloatArray
// carries command_out_type=float_array output (positions if
// PublishJointPositions, otherwise velocities).
type OutputSink interface {
	PublishTrajectory(ctx context.Context, points []TrajectoryPoint) error
	PublishFloatArray(ctx context.Context, values []float64) error
	PublishStatus(ctx context.Context, status StatusCode) error
	PublishWorstCaseStopTime(ctx context.Context, seconds float64) error
}

// composePoint builds the single primary trajectory point for this tick
// from the post-delta joint state, honoring which fields Parameters asks to
// publish.
func composePoint(p *Parameters, position, velocity, acceleration []float64) TrajectoryPoint {
	point := TrajectoryPoint{TimeFromStart: p.PublishPeriod}
	if p.PublishJointPositions {
		point.Positions = append([]float64(nil), position...)
	}
	if p.PublishJointVelocities {
		point.Velocities = append([]float64(nil), velocity...)
	}
	if p.PublishJointAccelerations {
		point.Accelerations = append([]float64(nil), acceleration...)
	}
	return point
}

// floatArrayPayload selects the flat array command_out_type=float_array
// publishes: positions when PublishJointPositions is set, otherwise
// velocities.
func floatArrayPayload(p *Parameters, position, velocity []float64) []float64 {
	if p.PublishJointPositions {
		return position
	}
	return velocity
}

// publish dispatches a composed point to sink according to
// Parameters.CommandOutType.
func publish(ctx context.Context, p *Parameters, sink OutputSink, points []TrajectoryPoint, position, velocity []float64) error {
	switch p.CommandOutType {
	case CommandOutJointTrajectory:
		return sink.PublishTrajectory(ctx, points)
	case CommandOutFloatArray:
		return sink.PublishFloatArray(ctx, floatArrayPayload(p, position, velocity))
	default:
		return nil
	}
}
