package servo

import (
	"time"

	"github.com/pkg/errors"
)

// CommandInType selects how incoming Cartesian and joint axis values are
// interpreted.
type CommandInType string

const (
	// CommandInUnitless treats each axis as a fraction of full scale in
	// [-1, 1], multiplied by the relevant *_scale parameter and then by
	// PublishPeriod to obtain a per-tick delta.
	CommandInUnitless CommandInType = "unitless"
	// CommandInSpeedUnits treats each axis as already a velocity, multiplied
	// only by PublishPeriod to obtain a per-tick delta.
	CommandInSpeedUnits CommandInType = "speed_units"
)

// CommandOutType selects the shape of the outgoing trajectory message.
type CommandOutType string

const (
	// CommandOutJointTrajectory emits one trajectory point per tick with
	// optional positions/velocities/accelerations arrays.
	CommandOutJointTrajectory CommandOutType = "joint_trajectory"
	// CommandOutFloatArray emits a flat array: positions if
	// PublishJointPositions, otherwise velocities.
	CommandOutFloatArray CommandOutType = "float_array"
)

// StatusCode is the servo core's current operating status, surfaced over
// the status output stream.
type StatusCode int

const (
	NoWarning StatusCode = iota
	DecelerateForSingularity
	HaltForSingularity
	HaltForCollision
	JointBound
)

// String renders the status the way the original's status-to-message map
// does, for logging and for the published status stream's human-readable
// form.
func (s StatusCode) String() string {
	switch s {
	case NoWarning:
		return "NO_WARNING"
	case DecelerateForSingularity:
		return "DECELERATE_FOR_SINGULARITY"
	case HaltForSingularity:
		return "HALT_FOR_SINGULARITY"
	case HaltForCollision:
		return "HALT_FOR_COLLISION"
	case JointBound:
		return "JOINT_BOUND"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Parameters configures a Loop. It is immutable after Validate succeeds;
// Loop never mutates it.
type Parameters struct {
	PublishPeriod time.Duration

	CommandInType  CommandInType
	CommandOutType CommandOutType

	LinearScale      float64
	RotationalScale  float64
	JointScale       float64

	PublishJointPositions      bool
	PublishJointVelocities     bool
	PublishJointAccelerations  bool

	LowPassFilterCoeff float64

	LowerSingularityThreshold   float64
	HardStopSingularityThreshold float64

	JointLimitMargin float64

	IncomingCommandTimeout time.Duration

	// NumOutgoingHaltMsgsToPublish is 0 to republish halts forever, or N>0
	// to stop publishing after N consecutive all-zero ticks.
	NumOutgoingHaltMsgsToPublish int

	MoveGroupName          string
	PlanningFrame           string
	RobotLinkCommandFrame   string

	// UseGazebo and GazeboRedundantMessageCount drive the redundant-point
	// insertion behavior of the Cartesian path (see Loop.insertRedundantPoints).
	UseGazebo                   bool
	GazeboRedundantMessageCount int
}

// ParameterError reports which Parameters field failed validation.
type ParameterError struct {
	Field string
	Err   error
}

func (e *ParameterError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ParameterError) Unwrap() error { return e.Err }

func paramErr(field string, err error) error {
	return errors.WithStack(&ParameterError{Field: field, Err: err})
}

// Validate checks that every Parameters field is internally consistent. It
// does not mutate p or apply defaults; the caller supplies a complete
// configuration, matching this library's "no configuration parsing" scope.
func (p *Parameters) Validate() error {
	if p.PublishPeriod <= 0 {
		return paramErr("publish_period", errors.New("must be strictly positive"))
	}
	switch p.CommandInType {
	case CommandInUnitless, CommandInSpeedUnits:
	default:
		return paramErr("command_in_type", errors.Errorf("unrecognized value %q", p.CommandInType))
	}
	switch p.CommandOutType {
	case CommandOutJointTrajectory, CommandOutFloatArray:
	default:
		return paramErr("command_out_type", errors.Errorf("unrecognized value %q", p.CommandOutType))
	}
	if p.LinearScale <= 0 {
		return paramErr("linear_scale", errors.New("must be positive"))
	}
	if p.RotationalScale <= 0 {
		return paramErr("rotational_scale", errors.New("must be positive"))
	}
	if p.JointScale <= 0 {
		return paramErr("joint_scale", errors.New("must be positive"))
	}
	if p.LowPassFilterCoeff <= 0 {
		return paramErr("low_pass_filter_coeff", errors.New("must be positive"))
	}
	if p.LowerSingularityThreshold <= 0 || p.HardStopSingularityThreshold <= 0 {
		return paramErr("singularity_threshold", errors.New("thresholds must be positive"))
	}
	if p.LowerSingularityThreshold >= p.HardStopSingularityThreshold {
		return paramErr("lower_singularity_threshold", errors.New("must be less than hard_stop_singularity_threshold"))
	}
	if p.JointLimitMargin <= 0 {
		return paramErr("joint_limit_margin", errors.New("must be positive"))
	}
	if p.IncomingCommandTimeout <= 0 {
		return paramErr("incoming_command_timeout", errors.New("must be positive"))
	}
	if p.NumOutgoingHaltMsgsToPublish < 0 {
		return paramErr("num_outgoing_halt_msgs_to_publish", errors.New("must be >= 0"))
	}
	if p.MoveGroupName == "" {
		return paramErr("move_group_name", errors.New("must not be empty"))
	}
	if p.PlanningFrame == "" {
		return paramErr("planning_frame", errors.New("must not be empty"))
	}
	if p.RobotLinkCommandFrame == "" {
		return paramErr("robot_link_command_frame", errors.New("must not be empty"))
	}
	if p.UseGazebo && p.GazeboRedundantMessageCount < 1 {
		return paramErr("gazebo_redundant_message_count", errors.New("must be >= 1 when use_gazebo is set"))
	}
	return nil
}
