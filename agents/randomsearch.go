package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/robolab/arm-rl-train/types"
	"golang.org/x/exp/rand"
)

type RandomSearchConfig struct {
	Seed uint64
}

// RandomSearch samples a deterministic candidate policy per episode and
// keeps the candidate with the best episode return. A candidate is fully
// described by its seed: the action in a state is a hash of the candidate
// seed and the state hash.
type RandomSearch struct {
	cfg  RandomSearchConfig
	rand *rand.Rand

	candidateSeed uint64
	bestSeed      uint64
	bestReturn    float64
	hasBest       bool
}

var _ types.Trainer = &RandomSearch{}

func NewRandomSearch(cfg RandomSearchConfig) *RandomSearch {
	r := rand.New(rand.NewSource(cfg.Seed))
	return &RandomSearch{
		cfg:           cfg,
		rand:          r,
		candidateSeed: r.Uint64(),
	}
}

func (r *RandomSearch) Name() string {
	return "randomsearch"
}

func (r *RandomSearch) Locals() map[string]interface{} {
	return map[string]interface{}{
		"algo": r.Name(),
		"seed": r.cfg.Seed,
	}
}

func (r *RandomSearch) SaveCheckpoint(path string) error {
	bs, err := json.Marshal(map[string]interface{}{
		"algo":        r.Name(),
		"best_seed":   r.bestSeed,
		"best_return": r.bestReturn,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

func (r *RandomSearch) Train(ctx context.Context, env types.Environment, totalSteps int, cb types.Callback) error {
	actions := env.ActionSpace()

	step := 0
	for step < totalSteps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		state, err := env.Reset(ctx)
		if err != nil {
			return fmt.Errorf("resetting environment: %w", err)
		}

		episodeReturn := float64(0)
		done := false
		for !done && step < totalSteps {
			a := candidateAction(r.candidateSeed, state.Hash(), actions)
			res, err := env.Step(ctx, a)
			if err != nil {
				return fmt.Errorf("stepping environment: %w", err)
			}
			step += 1
			episodeReturn += res.Reward
			if err := notify(cb, step, r); err != nil {
				return err
			}
			state = res.State
			done = res.Done
		}

		if !r.hasBest || episodeReturn > r.bestReturn {
			r.bestSeed = r.candidateSeed
			r.bestReturn = episodeReturn
			r.hasBest = true
		}
		r.candidateSeed = r.rand.Uint64()
	}
	return nil
}

// deterministic action choice of a candidate policy
func candidateAction(seed uint64, stateHash string, actions []types.Action) types.Action {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(stateHash))
	return actions[h.Sum64()%uint64(len(actions))]
}
