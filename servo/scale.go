package servo

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"servoloop/internal/ingress"
	"servoloop/internal/throttle"
)

// errUnitlessOutOfRange is returned when a unitless input exceeds [-1, 1];
// per spec 4.2 this aborts the whole tick since unitless inputs are
// contractually normalized.
var errUnitlessOutOfRange = errors.New("servo: unitless command axis out of [-1, 1] range")

func scaleAxis(p *Parameters, raw, gain float64) (float64, error) {
	switch p.CommandInType {
	case CommandInUnitless:
		if math.Abs(raw) > 1 {
			return 0, errUnitlessOutOfRange
		}
		return raw * gain * p.PublishPeriod.Seconds(), nil
	case CommandInSpeedUnits:
		return raw * p.PublishPeriod.Seconds(), nil
	default:
		return 0, errors.Errorf("servo: unrecognized command_in_type %q", p.CommandInType)
	}
}

// scaleJointAxis is scaleAxis without the unitless [-1, 1] abort: that bound
// is a Cartesian-twist-only contract (spec 4.2), and scaleJointCommand in
// the original has no equivalent check, so a joint jog slightly over 1.0
// unitless is clamped by the downstream velocity limiter rather than
// aborting the whole tick.
func scaleJointAxis(p *Parameters, raw, gain float64) (float64, error) {
	switch p.CommandInType {
	case CommandInUnitless:
		return raw * gain * p.PublishPeriod.Seconds(), nil
	case CommandInSpeedUnits:
		return raw * p.PublishPeriod.Seconds(), nil
	default:
		return 0, errors.Errorf("servo: unrecognized command_in_type %q", p.CommandInType)
	}
}

// scaleTwist converts a raw Cartesian twist into a per-tick delta, applying
// linear_scale to the linear half and rotational_scale to the angular half
// in unitless mode, or just the tick period in speed_units mode.
func scaleTwist(p *Parameters, linear, angular r3.Vector) (dLinear, dAngular r3.Vector, err error) {
	lx, err := scaleAxis(p, linear.X, p.LinearScale)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	ly, err := scaleAxis(p, linear.Y, p.LinearScale)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	lz, err := scaleAxis(p, linear.Z, p.LinearScale)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	ax, err := scaleAxis(p, angular.X, p.RotationalScale)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	ay, err := scaleAxis(p, angular.Y, p.RotationalScale)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	az, err := scaleAxis(p, angular.Z, p.RotationalScale)
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	return r3.Vector{X: lx, Y: ly, Z: lz}, r3.Vector{X: ax, Y: ay, Z: az}, nil
}

// scaleJointJog converts a raw joint jog into a per-tick delta aligned to
// the servo core's internal joint ordering. The result always has length
// numJoints, zero-initialized, with unknown joint names ignored and logged.
func scaleJointJog(p *Parameters, jog ingress.JointJog, index JointNameIndex, numJoints int, log *throttle.Logger) ([]float64, error) {
	out := make([]float64, numJoints)
	for i, name := range jog.Names {
		if i >= len(jog.Velocities) {
			break
		}
		j, ok := index[name]
		if !ok {
			log.Debugf("unknown-jog-joint:"+name, "servo: ignoring unknown joint %q in incoming joint jog", name)
			continue
		}
		scaled, err := scaleJointAxis(p, jog.Velocities[i], p.JointScale)
		if err != nil {
			return nil, err
		}
		out[j] = scaled
	}
	return out, nil
}
