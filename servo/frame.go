package servo

import (
	"context"

	"servoloop/internal/kinematics"
)

// resolveFrameTransform computes T_pc, the rotation that carries a vector
// expressed in commandFrame into planningFrame coordinates. Each of the two
// frames is resolved independently: the kinematic model's own frame graph
// if it knows that frame, otherwise the external transform source, queried
// through the robot's root link. This mirrors calculateCommandFrameTransform
// in the original, which never requires both frames to come from the same
// source. On any resolution failure it returns the zero-value Rotation,
// which callers must treat as "not yet initialized" and which naturally
// zeros anything it is applied to.
func resolveFrameTransform(
	ctx context.Context,
	model kinematics.Model,
	transforms kinematics.TransformSource,
	rootLink string,
	planningFrame, commandFrame string,
) kinematics.Rotation {
	rp, ok := resolveSingleFrame(ctx, model, transforms, rootLink, planningFrame)
	if !ok {
		return kinematics.Rotation{}
	}
	rc, ok := resolveSingleFrame(ctx, model, transforms, rootLink, commandFrame)
	if !ok {
		return kinematics.Rotation{}
	}
	return kinematics.Compose(rc, rp.Inverse())
}

// resolveSingleFrame resolves one frame's rotation into the model's root
// frame, preferring the kinematic model if it knows the frame directly.
func resolveSingleFrame(
	ctx context.Context,
	model kinematics.Model,
	transforms kinematics.TransformSource,
	rootLink string,
	frame string,
) (kinematics.Rotation, bool) {
	if model.KnowsFrame(frame) {
		r, err := model.Frame(frame)
		if err != nil {
			return kinematics.Rotation{}, false
		}
		return r, true
	}
	if transforms == nil {
		return kinematics.Rotation{}, false
	}
	r, err := transforms.Lookup(ctx, frame, rootLink)
	if err != nil {
		return kinematics.Rotation{}, false
	}
	return r, true
}
