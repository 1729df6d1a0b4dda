// Package srl resolves state-representation-learning models from the
// on-disk registry. The SRL models themselves are trained elsewhere and
// treated as opaque: resolution only decides which preprocessing the
// simulator should load.
package srl

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

const GroundTruth = "ground_truth"

// Registry maps SRL model names to trained model paths, relative to a
// common log folder
type Registry struct {
	LogFolder string            `yaml:"log_folder"`
	Models    map[string]string `yaml:",inline"`
}

// Load reads the registry from a YAML file (config/srl_models.yaml)
func Load(configPath string) (*Registry, error) {
	bs, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading srl registry: %w", err)
	}
	reg := &Registry{}
	if err := yaml.Unmarshal(bs, reg); err != nil {
		return nil, fmt.Errorf("parsing srl registry: %w", err)
	}
	return reg, nil
}

// Resolution describes how a run should preprocess observations
type Resolution struct {
	// SubFolder of the log directory ("raw_features" or the model name)
	SubFolder string
	// PlotTitle of the dashboard plots
	PlotTitle string

	UseSRL         bool
	UseGroundTruth bool
	ModelPath      string
}

// Resolve decides the preprocessing for the named SRL model. An empty
// name means raw features; "ground_truth" toggles the simulator's
// ground-truth state; any other name must be present in the registry.
func (r *Registry) Resolve(model string) (*Resolution, error) {
	if model == "" {
		return &Resolution{
			SubFolder: "raw_features",
			PlotTitle: "Raw Features",
		}, nil
	}
	if model == GroundTruth {
		return &Resolution{
			SubFolder:      model,
			PlotTitle:      "Ground Truth",
			UseGroundTruth: true,
		}, nil
	}
	relPath, ok := r.Models[model]
	if !ok {
		return nil, fmt.Errorf("unsupported value for srl-model: %s", model)
	}
	return &Resolution{
		SubFolder: model,
		PlotTitle: model,
		UseSRL:    true,
		ModelPath: path.Join(r.LogFolder, relPath),
	}, nil
}
