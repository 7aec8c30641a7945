package servo

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"servoloop/internal/ingress"
	"servoloop/internal/kinematics"
	"servoloop/internal/throttle"
)

// JointNameIndex maps a joint name to its index in the servo core's
// internal ordering, letting the scaler and refresh step tolerate reordered
// or extra joints in incoming messages.
type JointNameIndex map[string]int

// NewJointNameIndex builds an index from the move group's active joint
// names, in the order the group's Jacobian columns use.
func NewJointNameIndex(names []string) JointNameIndex {
	idx := make(JointNameIndex, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}

// JointState is the servo core's internal joint snapshot, fixed-size at
// num_joints and owned by the Loop for the process lifetime.
type JointState struct {
	Names      []string
	Positions  []float64
	Velocities []float64
}

func newJointState(names []string) JointState {
	out := JointState{
		Names:      names,
		Positions:  make([]float64, len(names)),
		Velocities: make([]float64, len(names)),
	}
	return out
}

func (s JointState) clone() JointState {
	out := newJointState(s.Names)
	copy(out.Positions, s.Positions)
	copy(out.Velocities, s.Velocities)
	return out
}

// errJointStateTooShort is returned by refreshJointState when the ingress
// source reports fewer names than num_joints, per spec 4.8's rejection rule.
var errJointStateTooShort = errors.New("servo: incoming joint state has fewer names than num_joints")

// refreshJointState copies positions and velocities from src into dst by
// looked-up index, tolerating reordered or extra incoming joints. Unknown
// incoming names are ignored with a throttled debug log. Returns
// errJointStateTooShort if src reports fewer joints than dst expects; the
// caller (Loop.refreshJointStateWithRetry, from Loop.Tick) retries on this
// error rather than treating it as fatal.
func refreshJointState(
	ctx context.Context,
	src ingress.JointStateSource,
	index JointNameIndex,
	dst JointState,
	log *throttle.Logger,
) error {
	incoming, err := src.Latest(ctx)
	if err != nil {
		return errors.Wrap(err, "refresh joint state")
	}
	if len(incoming.Names) < len(dst.Names) {
		return errJointStateTooShort
	}
	for i, name := range incoming.Names {
		j, ok := index[name]
		if !ok {
			log.Debugf("unknown-joint:"+name, "servo: ignoring unknown joint %q in incoming joint state", name)
			continue
		}
		if i < len(incoming.Positions) {
			dst.Positions[j] = incoming.Positions[i]
		}
		if i < len(incoming.Velocities) {
			dst.Velocities[j] = incoming.Velocities[i]
		}
	}
	return nil
}

// worstCaseStopTime computes max_j |v_j| / a_lim_j across active joints,
// where a_lim_j = min(|min_a|, |max_a|). A joint with no acceleration bound
// degrades the computation by being skipped, not treated as zero, logging
// at debug level (throttled by log's window) rather than failing the whole
// computation.
func worstCaseStopTime(state JointState, bounds []kinematics.JointBounds, log *throttle.Logger) float64 {
	worst := 0.0
	for j, v := range state.Velocities {
		if j >= len(bounds) {
			break
		}
		b := bounds[j]
		if !b.HasAcceleration {
			log.Debugf("missing-accel-bound", "servo: joint %d has no acceleration limit defined, excluding it from worst_case_stop_time", j)
			continue
		}
		aLim := math.Min(math.Abs(b.MinAcceleration), math.Abs(b.MaxAcceleration))
		if aLim <= 0 {
			continue
		}
		stop := math.Abs(v) / aLim
		if stop > worst {
			worst = stop
		}
	}
	return worst
}
