// Package config loads YAML configuration files. ${VAR} references are
// expanded from the environment before parsing.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by targets that check themselves after parsing.
type Validator interface {
	Validate() error
}

// Load reads filename into target, which keeps any values the file omits.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := Parse(data, target); err != nil {
		return fmt.Errorf("config file %s: %w", filename, err)
	}
	return nil
}

// Parse expands environment references in data, decodes it into target and
// runs the target's Validator, if any.
func Parse[T any](data []byte, target *T) error {
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	return nil
}

// LoadWithDefaults loads filename, falling back to defaultFile when filename
// does not exist. With neither file present the target's own defaults are
// validated and kept.
func LoadWithDefaults[T any](filename, defaultFile string, target *T) error {
	if _, err := os.Stat(filename); err == nil {
		return Load(filename, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file %s: %w", filename, err)
	}
	if defaultFile != "" && defaultFile != filename {
		if _, err := os.Stat(defaultFile); err == nil {
			return Load(defaultFile, target)
		}
	}
	return Parse(nil, target)
}
