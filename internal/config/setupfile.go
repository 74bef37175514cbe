package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SetupFile mirrors the on-disk document named by the CLI's first argument
// (spec.md §6: `<program> <setup_file> <pdf_sub_directory> <pdf_filename>
// <run_time>`). It is a thin YAML document carrying just the directory map
// — unlike Config, which layers defaults/env/flags through viper for the
// rest of the process, a setup file is handed to the program verbatim by
// its caller and is expected to stand alone.
type SetupFile struct {
	Setup SetupConfig `yaml:"setup"`
}

// LoadSetupFile reads and validates a setup file from disk, returning its
// directory map. The decoded document is schema-checked the same way a
// viper-loaded Config is, so a malformed setup file fails with field-level
// detail rather than a zero-valued SetupConfig silently flowing downstream.
func LoadSetupFile(path string) (SetupConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SetupConfig{}, fmt.Errorf("read setup file: %w", err)
	}

	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return SetupConfig{}, fmt.Errorf("parse setup file: %w", err)
	}

	if err := ValidateSetupDocument(doc); err != nil {
		return SetupConfig{}, fmt.Errorf("setup file %s: %w", path, err)
	}

	var setup SetupFile

	if err := yaml.Unmarshal(data, &setup); err != nil {
		return SetupConfig{}, fmt.Errorf("decode setup file: %w", err)
	}

	return setup.Setup, nil
}
