package servo

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"servoloop/internal/kinematics"
)

func clampToRange(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// applyAccelerationLimits clips delta in place so that, for every joint with
// a defined acceleration bound, (delta/dt - prevVelocity)/dt stays in
// [min_a, max_a]. The rescale is skipped (leaving delta as computed) when
// the relative change it would introduce has magnitude >= 1, avoiding
// amplification or a NaN when the unclipped delta is near zero.
func applyAccelerationLimits(delta *mat.VecDense, prevVelocity []float64, dt float64, bounds []kinematics.JointBounds) {
	for i := 0; i < delta.Len() && i < len(bounds); i++ {
		b := bounds[i]
		if !b.HasAcceleration {
			continue
		}
		old := delta.AtVec(i)
		if old == 0 {
			continue
		}
		v := old / dt
		prev := 0.0
		if i < len(prevVelocity) {
			prev = prevVelocity[i]
		}
		a := (v - prev) / dt
		if a >= b.MinAcceleration && a <= b.MaxAcceleration {
			continue
		}
		aStar := clampToRange(a, b.MinAcceleration, b.MaxAcceleration)
		newDelta := (aStar*dt + prev) * dt
		scale := newDelta / old
		if math.Abs(scale) >= 1 {
			continue
		}
		delta.SetVec(i, newDelta)
	}
}

// applyVelocityLimits clips delta in place so that, for every joint with a
// defined velocity bound, delta/dt stays in [min_v, max_v], under the same
// relative-scale-magnitude-<1 guard as acceleration clipping.
func applyVelocityLimits(delta *mat.VecDense, dt float64, bounds []kinematics.JointBounds) {
	for i := 0; i < delta.Len() && i < len(bounds); i++ {
		b := bounds[i]
		if !b.HasVelocity {
			continue
		}
		old := delta.AtVec(i)
		if old == 0 {
			continue
		}
		v := old / dt
		if v >= b.MinVelocity && v <= b.MaxVelocity {
			continue
		}
		vStar := clampToRange(v, b.MinVelocity, b.MaxVelocity)
		newDelta := vStar * dt
		scale := newDelta / old
		if math.Abs(scale) >= 1 {
			continue
		}
		delta.SetVec(i, newDelta)
	}
}

// positionBoundViolated reports whether applying delta to state's positions
// would push any bounded joint outside [min_p+margin, max_p-margin] while
// its currently measured velocity pushes it further outside still, the
// condition that triggers a sudden halt with status JointBound.
func positionBoundViolated(state JointState, delta *mat.VecDense, margin float64, bounds []kinematics.JointBounds) bool {
	for i := 0; i < delta.Len() && i < len(bounds) && i < len(state.Positions); i++ {
		b := bounds[i]
		if !b.HasPosition {
			continue
		}
		newPos := state.Positions[i] + delta.AtVec(i)
		lo := b.MinPosition + margin
		hi := b.MaxPosition - margin
		v := 0.0
		if i < len(state.Velocities) {
			v = state.Velocities[i]
		}
		if newPos < lo && v < 0 {
			return true
		}
		if newPos > hi && v > 0 {
			return true
		}
	}
	return false
}

// singularityResult carries the outcome of the Cartesian-path singularity
// check: a velocity scale in [0, 1] and the status it implies.
type singularityResult struct {
	Scale  float64
	Status StatusCode
}

// evaluateSingularity computes the condition-number-based deceleration
// factor for the current (undreduced) Jacobian, resolving the sign
// ambiguity of the smallest singular vector with a small perturbation test
// step per spec 4.5 / 9. It mutates and then restores the model's joint
// positions for the named group.
func evaluateSingularity(
	ctx context.Context,
	model kinematics.Model,
	group string,
	jFull *mat.Dense,
	dxCommanded *mat.VecDense,
	p *Parameters,
) (singularityResult, error) {
	svdFull, err := svdOf(jFull)
	if err != nil {
		return singularityResult{Scale: 1, Status: NoWarning}, err
	}
	kappa := conditionNumber(svdFull)

	u := smallestSingularVector(svdFull)
	jPlusFull := pseudoInverse(svdFull)

	scaledU := mat.NewVecDense(u.Len(), nil)
	for i := 0; i < u.Len(); i++ {
		scaledU.SetVec(i, u.AtVec(i)/100)
	}
	testDelta := deltaTheta(jPlusFull, scaledU)

	snapshot, err := kinematics.Snapshot(model, group)
	if err != nil {
		return singularityResult{Scale: 1, Status: NoWarning}, err
	}
	perturbed := kinematics.ApplyDelta(snapshot, testDelta)

	sign := 1.0
	if err := model.SetPositions(group, perturbed); err == nil {
		if jPerturbed, err := model.Jacobian(group); err == nil {
			if svdPerturbed, err := svdOf(jPerturbed); err == nil {
				if conditionNumber(svdPerturbed) < kappa {
					sign = -1.0
				}
			}
		}
		_ = kinematics.Restore(model, group, snapshot)
	}

	d := 0.0
	for i := 0; i < u.Len() && i < dxCommanded.Len(); i++ {
		d += sign * u.AtVec(i) * dxCommanded.AtVec(i)
	}

	if d <= 0 {
		return singularityResult{Scale: 1, Status: NoWarning}, nil
	}

	switch {
	case kappa >= p.HardStopSingularityThreshold:
		return singularityResult{Scale: 0, Status: HaltForSingularity}, nil
	case kappa > p.LowerSingularityThreshold:
		ramp := 1 - (kappa-p.LowerSingularityThreshold)/(p.HardStopSingularityThreshold-p.LowerSingularityThreshold)
		return singularityResult{Scale: ramp, Status: DecelerateForSingularity}, nil
	default:
		return singularityResult{Scale: 1, Status: NoWarning}, nil
	}
}

// applyVelocityScaling applies the combined collision x singularity scale
// to delta in place. A collision scale of exactly zero overrides everything
// else: delta is zeroed and status is HaltForCollision regardless of the
// singularity result, matching spec 4.5's collision-scale rule.
func applyVelocityScaling(delta *mat.VecDense, collisionScale float64, sing singularityResult) StatusCode {
	if collisionScale == 0 {
		for i := 0; i < delta.Len(); i++ {
			delta.SetVec(i, 0)
		}
		return HaltForCollision
	}
	combined := collisionScale * sing.Scale
	for i := 0; i < delta.Len(); i++ {
		delta.SetVec(i, delta.AtVec(i)*combined)
	}
	return sing.Status
}
