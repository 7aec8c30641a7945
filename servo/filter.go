package servo

// Filter is a single-pole IIR low-pass filter: Filter(x) advances one step,
// Reset(x) flushes state so the next output equals x exactly, avoiding a
// transient on resumption after a pause or halt.
type Filter struct {
	coeff     float64
	previous  float64
	primed    bool
}

// NewFilter returns a filter with the given smoothing coefficient. The
// filter is unprimed until the first Filter or Reset call.
func NewFilter(coeff float64) *Filter {
	return &Filter{coeff: coeff}
}

// Filter advances the filter by one step and returns the smoothed value.
func (f *Filter) Filter(measurement float64) float64 {
	if !f.primed {
		f.previous = measurement
		f.primed = true
	}
	filtered := (1 / (1 + f.coeff)) * (measurement + f.coeff*f.previous)
	f.previous = filtered
	return filtered
}

// Reset flushes the filter's state to x so the next Filter(x) call returns x
// exactly, with no transient.
func (f *Filter) Reset(x float64) {
	f.previous = x
	f.primed = true
}

// FilterBank holds one Filter per active joint, all sharing one smoothing
// coefficient, satisfying the invariant that position_filters.size ==
// num_joints.
type FilterBank struct {
	filters []*Filter
}

// NewFilterBank allocates numJoints independent filters.
func NewFilterBank(numJoints int, coeff float64) *FilterBank {
	filters := make([]*Filter, numJoints)
	for i := range filters {
		filters[i] = NewFilter(coeff)
	}
	return &FilterBank{filters: filters}
}

// Len returns the number of joints this bank was sized for.
func (b *FilterBank) Len() int {
	return len(b.filters)
}

// Filter advances every joint's filter by one step in place.
func (b *FilterBank) Filter(positions []float64) {
	for i, f := range b.filters {
		if i >= len(positions) {
			break
		}
		positions[i] = f.Filter(positions[i])
	}
}

// Reset flushes every joint's filter to the corresponding entry of
// positions, called whenever the orchestrator exits a tick without
// publishing motion.
func (b *FilterBank) Reset(positions []float64) {
	for i, f := range b.filters {
		if i >= len(positions) {
			break
		}
		f.Reset(positions[i])
	}
}
