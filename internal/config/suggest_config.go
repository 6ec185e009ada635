package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SuggestConfig tunes the name suggestion client. The knobs change often
// enough during curation that a YAML file is easier to manage than env vars.
type SuggestConfig struct {
	Model       string  `yaml:"model"`       // Anthropic model ID
	MaxTokens   int     `yaml:"max_tokens"`  // Completion budget
	Temperature float64 `yaml:"temperature"` // 0 disables sampling variation
	Guidance    string  `yaml:"guidance"`    // Extra instructions appended to the prompt
}

// LoadSuggestConfig loads the suggester tuning file named by cfg.
// Returns nil without error if the file doesn't exist; the suggester
// falls back to its built-in defaults.
func LoadSuggestConfig(path string) (*SuggestConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Tuning file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg SuggestConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
