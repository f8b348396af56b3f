package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RulesFile is the optional YAML override for the intent rule table.
// Rules are a list, so their order is the match order.
type RulesFile struct {
	RuleConfidence float64     `yaml:"rule_confidence,omitempty"`
	Rules          []RuleEntry `yaml:"rules"`
	TextColumns    []string    `yaml:"text_columns,omitempty"`
	LabelColumns   []string    `yaml:"label_columns,omitempty"`
}

// RuleEntry maps one intent to its trigger substrings.
type RuleEntry struct {
	Intent   string   `yaml:"intent"`
	Triggers []string `yaml:"triggers"`
}

// LoadRulesFile reads the rules file at path.
// Returns nil without error if the file doesn't exist.
func LoadRulesFile(path string) (*RulesFile, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Rules file is optional
			return nil, nil
		}
		return nil, err
	}

	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for i, rule := range rf.Rules {
		if rule.Intent == "" {
			return nil, fmt.Errorf("rules file %s: rule %d has no intent", path, i+1)
		}
		if len(rule.Triggers) == 0 {
			return nil, fmt.Errorf("rules file %s: intent %q has no triggers", path, rule.Intent)
		}
	}
	if rf.RuleConfidence < 0 || rf.RuleConfidence > 1 {
		return nil, fmt.Errorf("rules file %s: rule_confidence must be in [0, 1]", path)
	}

	return &rf, nil
}
