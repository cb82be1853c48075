package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/GrayGhostDev/lead-generator/internal/merge"
	"github.com/GrayGhostDev/lead-generator/internal/qualify"
)

// Rules is the declarative consolidation ruleset: qualification criteria,
// email prediction priors, and the duplicate resolution policy. Weights and
// priors are deliberately configuration, not constants.
type Rules struct {
	Criteria qualify.Criteria `yaml:"criteria"`
	Predict  PredictRules     `yaml:"predict"`
	// MergePolicy is "source-priority" (default) or "most-recent".
	MergePolicy merge.Policy `yaml:"merge_policy"`
}

// PredictRules configures the email predictor.
type PredictRules struct {
	// Priors are base likelihoods per pattern rank, highest-priority pattern
	// first.
	Priors []float64 `yaml:"priors"`
	// Threshold is the acceptance likelihood below which no candidate is
	// written.
	Threshold float64 `yaml:"threshold"`
}

// DefaultRules returns a usable ruleset with no targeting criteria: every
// lead scores on completeness and confidence only.
func DefaultRules() *Rules {
	return &Rules{
		Criteria:    qualify.Criteria{Weights: qualify.DefaultWeights},
		MergePolicy: merge.PolicySourcePriority,
	}
}

// LoadRules reads a rules file. The YAML has a top-level "rules" key.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}

	var wrapper struct {
		Rules Rules `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "rules: parse")
	}

	rules := &wrapper.Rules
	if rules.MergePolicy == "" {
		rules.MergePolicy = merge.PolicySourcePriority
	}
	if rules.MergePolicy != merge.PolicySourcePriority && rules.MergePolicy != merge.PolicyMostRecent {
		return nil, eris.Errorf("rules: unknown merge policy %q", rules.MergePolicy)
	}
	return rules, nil
}
