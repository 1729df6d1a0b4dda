package types

import "context"

// Checkpointer saves the current model parameters to a file
type Checkpointer interface {
	SaveCheckpoint(path string) error
}

// StepInfo is handed to the callback on every training step
type StepInfo struct {
	// Step counts environment steps, starting from 1
	Step int
	// Locals are the JSON-serializable internals of the trainer
	Locals map[string]interface{}
	// Model saves a checkpoint of the current parameters
	Model Checkpointer
}

// Callback invoked by the training loop after each step.
// Returning an error stops the training run.
type Callback func(*StepInfo) error

// Trainer is a training algorithm that the driver configures and launches.
// The driver treats the algorithm as opaque: it only sequences
// configuration, invokes Train and saves checkpoints through the callback.
type Trainer interface {
	Checkpointer

	Name() string
	// Locals returns the hyperparameters of the run for the config dump
	Locals() map[string]interface{}
	// Train runs the algorithm for totalSteps environment steps
	Train(ctx context.Context, env Environment, totalSteps int, cb Callback) error
}
