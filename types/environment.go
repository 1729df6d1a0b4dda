package types

import "context"

// State of the simulation that trainers observe
type State interface {
	// Indexed by the Hash in tabular policies
	// Should be deterministic
	Hash() string
	// Features is the raw (or SRL-encoded) observation vector
	Features() []float64
}

// An Action that a trainer can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// Result of a single environment step
type StepResult struct {
	State  State
	Reward float64
	Done   bool
}

// Environment is the simulation the trainers act on. The simulator itself
// is an opaque collaborator: implementations either talk to an external
// process or run a small built-in task.
type Environment interface {
	// Reset called at the start of each episode
	Reset(ctx context.Context) (State, error)
	// Step applies an action and returns the resulting transition
	Step(ctx context.Context, a Action) (*StepResult, error)
	// ActionSpace is the fixed set of actions of the environment
	ActionSpace() []Action
	// Params returns the environment configuration for reproducibility
	Params() map[string]interface{}
	Close() error
}
