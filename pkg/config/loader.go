package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadError describes a failure to load or validate a bus file.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses and validates a bus file from YAML bytes.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := f.Validate(); err != nil {
		return nil, &LoadError{
			Message: "invalid bus file",
			Cause:   err,
		}
	}
	return &f, nil
}

// Load reads and validates a bus file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	f, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return f, nil
}

// LoadScript reads the script section of a YAML file and checks it against
// the buses of f.
func LoadScript(path string, f *File) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	var doc struct {
		Script []Step `yaml:"script"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{File: path, Message: "failed to parse YAML", Cause: err}
	}
	if len(doc.Script) == 0 {
		return nil, &LoadError{File: path, Message: "script has no steps"}
	}
	for i, step := range doc.Script {
		if err := f.validateStep(step); err != nil {
			return nil, &LoadError{File: path, Message: fmt.Sprintf("step %d", i+1), Cause: err}
		}
	}
	return doc.Script, nil
}
