package searcher

// Trajectory is the position of one simulation in the search graph: the
// state it last searched and the action it took there. Simulations restart
// from an origin, which the driver moves forward as the real game advances.
type Trajectory struct {
	origin       StateId
	originAction int
	prev         StateId
	action       int
	expanded     bool
	length       int
}

func NewTrajectory() *Trajectory {
	t := &Trajectory{origin: NoState, originAction: NoAction}
	t.Reset()
	return t
}

// Reset starts a new simulation from the origin.
func (t *Trajectory) Reset() {
	t.prev = t.origin
	t.action = t.originAction
	t.expanded = false
	t.length = 0
}

// Follow moves the origin past a move actually played, so later simulations
// hang their first state below (state, action).
func (t *Trajectory) Follow(state StateId, action int) {
	t.origin = state
	t.originAction = action
	t.Reset()
}

func (t *Trajectory) advance(state StateId, action int) {
	t.prev = state
	t.action = action
	t.length++
}

// Expanded reports whether the last search touched a state for the first time.
func (t *Trajectory) Expanded() bool {
	return t.expanded
}

// Len is the number of searches since the last reset.
func (t *Trajectory) Len() int {
	return t.length
}

func (t *Trajectory) Last() (StateId, int) {
	return t.prev, t.action
}
