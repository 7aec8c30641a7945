package servo

import (
	"context"
	"math"
	"sync"
	"time"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"
	"gonum.org/v1/gonum/mat"

	"servoloop/internal/ingress"
	"servoloop/internal/kinematics"
	"servoloop/internal/throttle"
)

// Loop is the periodic orchestrator: spec 4.1. One Loop owns all servo
// state for the process lifetime, exactly as the original's single
// ServoCalcs instance does.
type Loop struct {
	params Parameters
	name   resource.Name

	model      kinematics.Model
	transforms kinematics.TransformSource
	rootLink   string

	commands   ingress.CommandSource
	jointState ingress.JointStateSource
	collision  ingress.CollisionScaleSource
	sink       OutputSink

	logger      logging.Logger
	throttleLog *throttle.Logger

	opMgr *operation.SingleOperationManager

	nameIndex JointNameIndex
	numJoints int

	filters *FilterBank

	mu            sync.Mutex
	drift         DriftMask
	control       ControlMask
	status        StatusCode
	paused        bool
	transform     kinematics.Rotation
	prevVelocity  []float64

	state         JointState
	originalState JointState
	bounds        []kinematics.JointBounds

	lastSent          TrajectoryPoint
	haveSentOnce      bool
	zeroVelocityCount int

	lastTickDuration time.Duration

	cancelCtx  context.Context
	cancelFunc context.CancelFunc
}

// Config collects everything NewLoop needs beyond Parameters: the move
// group's joint names (fixing num_joints and ordering), and every external
// capability the loop consults.
type Config struct {
	// Name identifies the move group the way the teacher's components
	// identify themselves (arm.go's Name() resource.Name), for logging and
	// for any caller that wants to address this loop the way it would
	// address an rdk resource.
	Name       resource.Name
	JointNames []string
	RootLink   string

	Model      kinematics.Model
	Transforms kinematics.TransformSource

	Commands   ingress.CommandSource
	JointState ingress.JointStateSource
	Collision  ingress.CollisionScaleSource
	Sink       OutputSink

	Logger logging.Logger
}

// NewLoop validates params and builds a Loop ready to Tick or Run.
func NewLoop(params Parameters, cfg Config) (*Loop, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("servo")
	}
	numJoints := len(cfg.JointNames)
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	l := &Loop{
		params:       params,
		name:         cfg.Name,
		model:        cfg.Model,
		transforms:   cfg.Transforms,
		rootLink:     cfg.RootLink,
		commands:     cfg.Commands,
		jointState:   cfg.JointState,
		collision:    cfg.Collision,
		sink:         cfg.Sink,
		logger:       logger,
		throttleLog:  throttle.New(logger, 5*time.Second),
		opMgr:        operation.NewSingleOperationManager(),
		nameIndex:    NewJointNameIndex(cfg.JointNames),
		numJoints:    numJoints,
		filters:      NewFilterBank(numJoints, params.LowPassFilterCoeff),
		drift:        DefaultDriftMask(),
		control:      DefaultControlMask(),
		status:       NoWarning,
		prevVelocity: make([]float64, numJoints),
		state:        newJointState(cfg.JointNames),
		originalState: newJointState(cfg.JointNames),
		cancelCtx:    cancelCtx,
		cancelFunc:   cancelFunc,
	}
	return l, nil
}

// Name returns the resource.Name this loop was constructed with, matching
// the teacher's Name() resource.Name convention on its component types.
func (l *Loop) Name() resource.Name {
	return l.name
}

// Stop cancels the loop's context; Run returns shortly after, and any
// in-flight joint-state refresh retry loop observes the cancellation on its
// next check.
func (l *Loop) Stop() {
	l.cancelFunc()
	l.opMgr.CancelRunning(l.cancelCtx)
}

// Run ticks the loop every Parameters.PublishPeriod until ctx is done or
// Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.params.PublishPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.cancelCtx.Done():
			return nil
		case <-ticker.C:
			if err := l.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Tick runs exactly one orchestrator iteration (spec 4.1, steps 1-11). It
// is exported directly so tests can drive the loop deterministically
// without a real ticker.
func (l *Loop) Tick(ctx context.Context) error {
	tickStart := time.Now()
	if l.lastTickDuration > l.params.PublishPeriod {
		l.throttleLog.Warnf("tick-overrun", "servo: %v previous tick took %s, exceeding publish_period %s", l.name, l.lastTickDuration, l.params.PublishPeriod)
	}

	if err := l.sink.PublishStatus(ctx, l.Status()); err != nil {
		l.logger.Warnf("servo: publish status failed: %v", err)
	}

	if err := l.refreshJointStateWithRetry(ctx); err != nil {
		return err
	}
	l.originalState = l.state.clone()

	bounds, err := l.model.JointBounds(l.params.MoveGroupName)
	if err != nil {
		l.throttleLog.Warnf("joint-bounds", "servo: failed to fetch joint bounds: %v", err)
	} else {
		l.bounds = bounds
	}

	stopTime := worstCaseStopTime(l.originalState, l.bounds, l.throttleLog)
	if err := l.sink.PublishWorstCaseStopTime(ctx, stopTime); err != nil {
		l.logger.Warnf("servo: publish worst case stop time failed: %v", err)
	}

	twist, haveTwist := l.commands.LatestTwist()
	jog, haveJog := l.commands.LatestJointJog()
	planningFrame, commandFrame := l.commands.LatestFrameNames()
	if planningFrame == "" {
		planningFrame = l.params.PlanningFrame
	}
	if commandFrame == "" {
		commandFrame = l.params.RobotLinkCommandFrame
	}

	transform := resolveFrameTransform(ctx, l.model, l.transforms, l.rootLink, planningFrame, commandFrame)
	l.mu.Lock()
	l.transform = transform
	l.mu.Unlock()

	if !haveTwist && !haveJog {
		l.filters.Reset(l.state.Positions)
		l.lastTickDuration = time.Since(tickStart)
		return nil
	}
	if l.Paused() {
		l.filters.Reset(l.state.Positions)
		l.lastTickDuration = time.Since(tickStart)
		return nil
	}

	now := time.Now()
	twistStale := haveTwist && now.Sub(twist.Stamp) >= l.params.IncomingCommandTimeout
	jogStale := haveJog && now.Sub(jog.Stamp) >= l.params.IncomingCommandTimeout
	haveNonzeroTwist := haveTwist && !twist.IsZero()
	haveNonzeroJog := haveJog && !jog.IsZero()
	haveNonzeroCommand := haveNonzeroTwist || haveNonzeroJog

	var (
		point     TrajectoryPoint
		status    StatusCode
		delta     *mat.VecDense
		cartesian bool
	)

	switch {
	case haveNonzeroTwist && !twistStale:
		point, status, delta, err = l.cartesianPath(ctx, twist, commandFrame)
		if err != nil {
			l.filters.Reset(l.state.Positions)
			l.lastTickDuration = time.Since(tickStart)
			return nil
		}
		cartesian = true
	case haveNonzeroJog && !jogStale:
		point, status, delta, err = l.jointPath(jog)
		if err != nil {
			l.filters.Reset(l.state.Positions)
			l.lastTickDuration = time.Since(tickStart)
			return nil
		}
	default:
		point = l.zeroVelocityContinuation()
		status = l.Status()
	}

	if !haveNonzeroCommand {
		position, velocity := suddenHaltArrays(l.originalState)
		point = composePoint(&l.params, position, velocity, nil)
		delta = nil
	}

	if delta != nil {
		l.setPrevVelocity(delta)
	}
	l.setStatus(status)

	if !haveNonzeroCommand {
		if l.zeroVelocityCount < math.MaxInt32 {
			l.zeroVelocityCount++
		}
	} else {
		l.zeroVelocityCount = 0
	}

	suppressed := !haveNonzeroCommand &&
		l.params.NumOutgoingHaltMsgsToPublish != 0 &&
		l.zeroVelocityCount > l.params.NumOutgoingHaltMsgsToPublish

	if !suppressed {
		points := []TrajectoryPoint{point}
		if cartesian {
			points = l.insertRedundantPoints(point)
		}
		if err := publish(ctx, &l.params, l.sink, points, point.Positions, point.Velocities); err != nil {
			l.logger.Warnf("servo: publish failed: %v", err)
		}
		l.lastSent = point
		l.haveSentOnce = true
	}

	l.lastTickDuration = time.Since(tickStart)
	return nil
}

// zeroVelocityContinuation reuses the last published point with velocities
// zeroed, used when the latest stored commands are stale or absent but were
// not themselves zero-valued (so have_nonzero_command_ remains true and a
// full sudden halt is not yet warranted).
func (l *Loop) zeroVelocityContinuation() TrajectoryPoint {
	if !l.haveSentOnce {
		position, velocity := suddenHaltArrays(l.originalState)
		return composePoint(&l.params, position, velocity, nil)
	}
	point := l.lastSent
	point.Velocities = make([]float64, len(point.Velocities))
	point.TimeFromStart = l.params.PublishPeriod
	return point
}

// refreshJointStateWithRetry implements spec 4.1 step 3: retry until the
// ingress source returns a usable joint state or the loop is stopped.
func (l *Loop) refreshJointStateWithRetry(ctx context.Context) error {
	for {
		err := refreshJointState(ctx, l.jointState, l.nameIndex, l.state, l.throttleLog)
		if err == nil {
			return nil
		}
		select {
		case <-l.cancelCtx.Done():
			return l.cancelCtx.Err()
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}
