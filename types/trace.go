package types

// Trace of an episode as tuples (state, action, reward, nextState)
type Trace struct {
	states     []State
	actions    []Action
	rewards    []float64
	nextStates []State
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]Action, 0),
		rewards:    make([]float64, 0),
		nextStates: make([]State, 0),
	}
}

func (t *Trace) Append(state State, action Action, reward float64, nextState State) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.rewards = append(t.rewards, reward)
	t.nextStates = append(t.nextStates, nextState)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, float64, State, bool) {
	if i >= len(t.states) {
		return nil, nil, 0, nil, false
	}
	return t.states[i], t.actions[i], t.rewards[i], t.nextStates[i], true
}

func (t *Trace) Last() (State, Action, float64, State, bool) {
	if len(t.states) < 1 {
		return nil, nil, 0, nil, false
	}
	lastIndex := len(t.states) - 1
	return t.states[lastIndex], t.actions[lastIndex], t.rewards[lastIndex], t.nextStates[lastIndex], true
}

// Return is the undiscounted sum of rewards of the episode
func (t *Trace) Return() float64 {
	total := float64(0)
	for _, r := range t.rewards {
		total += r
	}
	return total
}

// Returns computes the discounted return at each step of the trace
func (t *Trace) Returns(discount float64) []float64 {
	returns := make([]float64, len(t.rewards))
	acc := float64(0)
	for i := len(t.rewards) - 1; i >= 0; i-- {
		acc = t.rewards[i] + discount*acc
		returns[i] = acc
	}
	return returns
}
