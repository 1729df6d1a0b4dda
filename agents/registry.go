package agents

import (
	"math"

	"github.com/robolab/arm-rl-train/types"
)

// Builder constructs a configured trainer for a single training run
type Builder func(seed uint64) types.Trainer

// Intervals are the periodic callback cadences of an algorithm.
// A zero value means the driver default applies.
type Intervals struct {
	Save int // steps between checkpoint evaluations
	Log  int // steps between plot refreshes
}

// CallbackIntervals returns the per-algorithm cadence overrides.
// Episodic and actor-critic trainers update more often and are
// evaluated at a shorter cadence.
func CallbackIntervals(algo string) Intervals {
	switch algo {
	case "actorcritic":
		return Intervals{Save: 100, Log: 20}
	case "reinforce":
		return Intervals{Log: 10}
	}
	return Intervals{}
}

// Names lists the registered training algorithms
func Names() []string {
	return []string{"actorcritic", "qlearning", "random", "randomsearch", "reinforce"}
}

func notify(cb types.Callback, step int, t types.Trainer) error {
	if cb == nil {
		return nil
	}
	return cb(&types.StepInfo{
		Step:   step,
		Locals: t.Locals(),
		Model:  t,
	})
}

func actionHashes(actions []types.Action) []string {
	hashes := make([]string, len(actions))
	for i, a := range actions {
		hashes[i] = a.Hash()
	}
	return hashes
}

// softmaxProbs over the preference entries of the state, shifted by the
// max preference so that exponentiating cannot overflow
func softmaxProbs(prefs *QTable, stateHash string, hashes []string) []float64 {
	maxPref := math.Inf(-1)
	for _, h := range hashes {
		if p := prefs.Get(stateHash, h, 0); p > maxPref {
			maxPref = p
		}
	}
	sum := float64(0)
	vals := make([]float64, len(hashes))
	for i, h := range hashes {
		exp := math.Exp(prefs.Get(stateHash, h, 0) - maxPref)
		vals[i] = exp
		sum += exp
	}
	for i := range vals {
		vals[i] /= sum
	}
	return vals
}
