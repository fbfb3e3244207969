// Package profile holds the job requirements a candidate is scored against.
package profile

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Requirements is the rubric input for a single position. All term lists are
// matched case-insensitively against lowercased CV text.
type Requirements struct {
	Position        string   `yaml:"position" mapstructure:"position"`
	RequiredSkills  []string `yaml:"required_skills" mapstructure:"required_skills"`
	PreferredSkills []string `yaml:"preferred_skills" mapstructure:"preferred_skills"`
	MinExperience   int      `yaml:"min_experience" mapstructure:"min_experience"`
	Education       []string `yaml:"education" mapstructure:"education"`
	Keywords        []string `yaml:"keywords" mapstructure:"keywords"`
}

// Default is the profile used when nothing is configured. It scores every
// candidate leniently since no dimension has requirements.
func Default() Requirements {
	return Requirements{Position: "General"}
}

// Load reads a requirements profile from a YAML file. A missing file is not
// an error: the default profile is returned so a fresh install still runs.
func Load(path string) (Requirements, error) {
	req := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return req, nil
		}
		return req, fmt.Errorf("reading requirements file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &req); err != nil {
		return Default(), fmt.Errorf("parsing requirements file %q: %w", path, err)
	}

	if req.Position == "" {
		req.Position = Default().Position
	}

	return req, nil
}

// FromMap decodes a profile embedded in the main configuration, as produced
// by viper's Get on a requirements block.
func FromMap(m map[string]any) (Requirements, error) {
	req := Default()

	cfg := &mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return req, err
	}
	if err := decoder.Decode(m); err != nil {
		return Default(), fmt.Errorf("decoding requirements block: %w", err)
	}

	if req.Position == "" {
		req.Position = Default().Position
	}

	return req, nil
}
