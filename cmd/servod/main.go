package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/rdk/components/arm"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"

	"servoloop/internal/ingress"
	"servoloop/internal/kinematics"
	"servoloop/servo"
)

func main() {
	if err := realMain(); err != nil {
		panic(err)
	}
}

// realMain wires a Loop against an in-process fake kinematic model and
// in-memory ingress/egress, the same shape of standalone exercise the
// teacher's CLI entry point runs against a real arm. It has no serial port
// or network dependency: a real deployment supplies its own Config.Model,
// Config.Transforms, and OutputSink against a resource.Dependencies graph
// instead.
func realMain() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewLogger("servod")

	jointNames := []string{"shoulder_pan", "shoulder_lift", "elbow", "wrist_pitch", "wrist_roll", "wrist_roll2"}

	jac := mat.NewDense(6, len(jointNames), nil)
	for i := 0; i < 6; i++ {
		jac.Set(i, i%len(jointNames), 1)
	}
	model := kinematics.NewFake(jac)
	model.Bounds = make([]kinematics.JointBounds, len(jointNames))
	for i := range model.Bounds {
		model.Bounds[i] = kinematics.JointBounds{
			MinVelocity: -1, MaxVelocity: 1, HasVelocity: true,
			MinAcceleration: -4, MaxAcceleration: 4, HasAcceleration: true,
			MinPosition: -3.14, MaxPosition: 3.14, HasPosition: true,
		}
	}
	model.Frames["base_link"] = kinematics.IdentityRotation()
	model.Frames["tool_frame"] = kinematics.IdentityRotation()

	commands := ingress.NewCache()
	collision := ingress.NewCollisionScale()
	jointState := ingress.NewFakeJointStateSource(ingress.JointState{
		Names:      jointNames,
		Positions:  make([]float64, len(jointNames)),
		Velocities: make([]float64, len(jointNames)),
	})
	sink := &logSink{logger: logger}

	params := servo.Parameters{
		PublishPeriod:                34 * time.Millisecond,
		CommandInType:                servo.CommandInUnitless,
		CommandOutType:                servo.CommandOutJointTrajectory,
		LinearScale:                   0.4,
		RotationalScale:               0.8,
		JointScale:                    0.5,
		PublishJointPositions:         true,
		PublishJointVelocities:        true,
		LowPassFilterCoeff:            2.0,
		LowerSingularityThreshold:     30,
		HardStopSingularityThreshold:  90,
		JointLimitMargin:              0.1,
		IncomingCommandTimeout:        200 * time.Millisecond,
		NumOutgoingHaltMsgsToPublish:  4,
		MoveGroupName:                 "arm",
		PlanningFrame:                 "base_link",
		RobotLinkCommandFrame:         "tool_frame",
	}
	if err := params.Validate(); err != nil {
		return err
	}

	loop, err := servo.NewLoop(params, servo.Config{
		Name:       resource.NewName(arm.API, "servo-arm"),
		JointNames: jointNames,
		RootLink:   "base_link",
		Model:      model,
		Commands:   commands,
		JointState: jointState,
		Collision:  collision,
		Sink:       sink,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer loop.Stop()

	commands.SetFrameNames(params.PlanningFrame, params.RobotLinkCommandFrame)

	logger.Info("servod: starting control loop")
	return loop.Run(ctx)
}

// logSink is a minimal OutputSink that logs whatever the loop would
// otherwise publish to a transport. A real deployment replaces this with a
// sink backed by an rdk resource or a message-bus publisher.
type logSink struct {
	logger logging.Logger
}

func (s *logSink) PublishTrajectory(ctx context.Context, points []servo.TrajectoryPoint) error {
	if len(points) == 0 {
		return nil
	}
	s.logger.Debugf("servod: publishing %d trajectory point(s), first positions=%v", len(points), points[0].Positions)
	return nil
}

func (s *logSink) PublishFloatArray(ctx context.Context, values []float64) error {
	s.logger.Debugf("servod: publishing float array %v", values)
	return nil
}

func (s *logSink) PublishStatus(ctx context.Context, status servo.StatusCode) error {
	s.logger.Debugf("servod: status %s", status)
	return nil
}

func (s *logSink) PublishWorstCaseStopTime(ctx context.Context, seconds float64) error {
	s.logger.Debugf("servod: worst case stop time %.3fs", seconds)
	return nil
}
