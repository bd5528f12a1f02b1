package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"gosubgroup/internal/errors"
)

// Task is a discovery job described in a YAML file
type Task struct {
	Dataset     string       `yaml:"dataset" validate:"required"`
	Target      string       `yaml:"target" validate:"required"`
	Standardize bool         `yaml:"standardize"`
	Reader      ReaderTask   `yaml:"reader"`
	Search      SearchConfig `yaml:"search"`
}

// ReaderTask configures how the dataset file is parsed
type ReaderTask struct {
	Sheet         string            `yaml:"sheet"`
	NoHeader      bool              `yaml:"no_header"`
	MissingTokens []string          `yaml:"missing_tokens"`
	Kinds         map[string]string `yaml:"kinds"`
}

// LoadTask reads a task file on top of the given search defaults
func LoadTask(path string, defaults SearchConfig) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	return ParseTask(data, defaults)
}

// ParseTask decodes a YAML task. Unknown keys are rejected.
func ParseTask(data []byte, defaults SearchConfig) (*Task, error) {
	task := &Task{Search: defaults}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(task); err != nil {
		return nil, errors.Wrap(errors.ValidationError(err.Error()), "invalid task file")
	}
	if err := validate.Struct(task); err != nil {
		return nil, errors.Wrap(errors.ValidationError(err.Error()), "invalid task file")
	}
	return task, nil
}
