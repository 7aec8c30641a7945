package servo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposePointHonorsPublishFlags(t *testing.T) {
	p := validParameters()
	p.PublishJointPositions = true
	p.PublishJointVelocities = false
	p.PublishJointAccelerations = false

	point := composePoint(&p, []float64{1, 2}, []float64{3, 4}, []float64{5, 6})
	require.Equal(t, []float64{1, 2}, point.Positions)
	require.Nil(t, point.Velocities)
	require.Nil(t, point.Accelerations)
	require.Equal(t, p.PublishPeriod, point.TimeFromStart)
}

func TestFloatArrayPayloadPrefersPositionsWhenRequested(t *testing.T) {
	p := validParameters()
	p.PublishJointPositions = true
	require.Equal(t, []float64{1, 2}, floatArrayPayload(&p, []float64{1, 2}, []float64{3, 4}))

	p.PublishJointPositions = false
	require.Equal(t, []float64{3, 4}, floatArrayPayload(&p, []float64{1, 2}, []float64{3, 4}))
}

type capturingSink struct {
	trajectoryCalls int
	floatArrayCalls int
	lastFloatArray  []float64
}

func (s *capturingSink) PublishTrajectory(ctx context.Context, points []TrajectoryPoint) error {
	s.trajectoryCalls++
	return nil
}

func (s *capturingSink) PublishFloatArray(ctx context.Context, values []float64) error {
	s.floatArrayCalls++
	s.lastFloatArray = values
	return nil
}

func (s *capturingSink) PublishStatus(ctx context.Context, status StatusCode) error { return nil }

func (s *capturingSink) PublishWorstCaseStopTime(ctx context.Context, seconds float64) error {
	return nil
}

func TestPublishDispatchesByCommandOutType(t *testing.T) {
	p := validParameters()
	p.CommandOutType = CommandOutFloatArray
	p.PublishJointVelocities = true
	sink := &capturingSink{}

	err := publish(context.Background(), &p, sink, nil, []float64{1}, []float64{2})
	require.NoError(t, err)
	require.Equal(t, 1, sink.floatArrayCalls)
	require.Equal(t, 0, sink.trajectoryCalls)
	require.Equal(t, []float64{2}, sink.lastFloatArray)

	p.CommandOutType = CommandOutJointTrajectory
	require.NoError(t, publish(context.Background(), &p, sink, []TrajectoryPoint{{}}, nil, nil))
	require.Equal(t, 1, sink.trajectoryCalls)
}
