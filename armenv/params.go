package armenv

import "encoding/json"

// Params are the tunables of the arm simulation. They mirror the
// configuration surface of the simulator process so that a run can be
// reproduced from the recorded snapshot.
type Params struct {
	ActionRepeat    int    `json:"action_repeat"`
	MaxEpisodeSteps int    `json:"max_episode_steps"`
	UseSRL          bool   `json:"use_srl"`
	SRLModelPath    string `json:"srl_model_path"`
	UseGroundTruth  bool   `json:"use_ground_truth"`
	ButtonRandom    bool   `json:"button_random"`
	// geometry of the built-in planar task
	Width  int `json:"width"`
	Height int `json:"height"`

	Seed uint64 `json:"seed"`
}

func DefaultParams() Params {
	return Params{
		ActionRepeat:    1,
		MaxEpisodeSteps: 250,
		Width:           16,
		Height:          16,
	}
}

// Snapshot returns the params as a JSON-serializable map, used for the
// arm_env_params.json dump of a run
func (p Params) Snapshot() map[string]interface{} {
	bs, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(bs, &out); err != nil {
		panic(err)
	}
	return out
}
