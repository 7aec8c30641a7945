package servo

import (
	"context"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"servoloop/internal/kinematics"
)

// errDriftRemovesAllAxes is returned by SetDriftDimensions when the
// requested mask would remove all six Cartesian rows, violating the
// invariant that at least one axis always survives drift removal.
var errDriftRemovesAllAxes = errors.New("servo: drift mask cannot remove all six axes")

// SetDriftDimensions implements the change_drift_dimensions control RPC.
// Like the teacher's move commands, it registers with the operation manager
// so an overlapping control-plane call cancels this one rather than racing
// it.
func (l *Loop) SetDriftDimensions(ctx context.Context, mask [NumAxes]bool) error {
	_, done := l.opMgr.New(ctx)
	defer done()

	d := DriftMask(mask)
	if d.removesAllAxes() {
		return errDriftRemovesAllAxes
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drift = d
	return nil
}

// SetControlDimensions implements the change_control_dimensions control RPC.
func (l *Loop) SetControlDimensions(ctx context.Context, mask [NumAxes]bool) error {
	_, done := l.opMgr.New(ctx)
	defer done()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.control = ControlMask(mask)
	return nil
}

// ResetStatus implements the reset_servo_status control RPC.
func (l *Loop) ResetStatus(ctx context.Context) error {
	_, done := l.opMgr.New(ctx)
	defer done()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = NoWarning
	return nil
}

// SetPaused gates the orchestrator without affecting any cache.
func (l *Loop) SetPaused(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = paused
}

// Paused reports the current pause state.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Status returns the current status code.
func (l *Loop) Status() StatusCode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Loop) setStatus(s StatusCode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = s
}

func (l *Loop) driftMask() DriftMask {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.drift
}

func (l *Loop) controlMask() ControlMask {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.control
}

// CommandFrameTransform implements the getCommandFrameTransform accessor:
// the cached planning->command transform and whether it has ever been
// successfully computed.
func (l *Loop) CommandFrameTransform() (transform kinematics.Rotation, initialized bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transform, !l.transform.IsZero()
}

func (l *Loop) setPrevVelocity(delta *mat.VecDense) {
	dt := l.params.PublishPeriod.Seconds()
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < delta.Len() && i < len(l.prevVelocity); i++ {
		l.prevVelocity[i] = delta.AtVec(i) / dt
	}
}
