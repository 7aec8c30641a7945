package ingress

import "context"

// FakeJointStateSource is an in-memory JointStateSource test double whose
// Latest result can be swapped between ticks, and which can be made to fail
// a fixed number of times to exercise the orchestrator's refresh retry loop.
type FakeJointStateSource struct {
	State      JointState
	FailCount  int
	Err        error
}

// NewFakeJointStateSource returns a source that always succeeds with state.
func NewFakeJointStateSource(state JointState) *FakeJointStateSource {
	return &FakeJointStateSource{State: state}
}

func (f *FakeJointStateSource) Latest(ctx context.Context) (JointState, error) {
	if f.FailCount > 0 {
		f.FailCount--
		if f.Err != nil {
			return JointState{}, f.Err
		}
		return JointState{}, context.DeadlineExceeded
	}
	return f.State, nil
}
