// Package config - profile_config.go implements model profile configuration loading.
//
// This module provides a flexible configuration system for model conversion
// profiles. Profile overrides are loaded from YAML files, allowing new models
// or tweaked conversion parameters without code changes: built-in profiles
// are defined in internal/models and merged with anything found here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

const (
	// DefaultProfilesFileName is the profile override file looked up in
	// the workspace directory.
	DefaultProfilesFileName = "profiles.yaml"
)

// ProfileConfig defines conversion parameters for a single model.
//
// All fields are optional in the YAML file; empty values fall back to the
// built-in profile defaults (or, for new models, to the convert command's
// own defaults).
type ProfileConfig struct {
	// ModelID is the unique identifier for this profile.
	// Convention: lowercase, hyphen-separated (e.g., "yolov5n").
	ModelID string `yaml:"model_id"`

	// DisplayName is the human-readable model name.
	DisplayName string `yaml:"display_name,omitempty"`

	// ModelFile is the ONNX model filename relative to the data directory.
	ModelFile string `yaml:"model_file,omitempty"`

	// InputName is the graph input tensor name.
	InputName string `yaml:"input_name,omitempty"`

	// InputShape is the input tensor shape in NCHW order (e.g., [1, 3, 392, 644]).
	InputShape []int `yaml:"input_shape,omitempty,flow"`

	// DataMean is the per-channel mean subtracted during preprocessing.
	DataMean []float64 `yaml:"data_mean,omitempty,flow"`

	// DataScale is the preprocessing scale factor.
	DataScale float64 `yaml:"data_scale,omitempty"`

	// Quantization is the HHB quantization scheme (e.g., "int8_asym").
	Quantization string `yaml:"quantization,omitempty"`

	// PixelFormat is the input pixel order ("RGB" or "BGR").
	PixelFormat string `yaml:"pixel_format,omitempty"`

	// Board is the default target board (e.g., "th1520").
	Board string `yaml:"board,omitempty"`

	// CalibrationWidth/CalibrationHeight describe the calibration image
	// geometry for this model.
	CalibrationWidth  int `yaml:"calibration_width,omitempty"`
	CalibrationHeight int `yaml:"calibration_height,omitempty"`

	// OutputNames lists graph outputs to expose (used for models whose
	// exported graph needs specific output nodes selected).
	OutputNames []string `yaml:"output_names,omitempty"`

	// ExpectedArtifacts lists output files that must exist and be
	// non-empty after a successful hhb run.
	ExpectedArtifacts []string `yaml:"expected_artifacts,omitempty,flow"`

	// ExtraArgs are appended verbatim to the hhb command line.
	ExtraArgs []string `yaml:"extra_args,omitempty"`
}

// ProfilesFile is the root structure of profiles.yaml.
type ProfilesFile struct {
	// Version is the configuration schema version.
	Version string `yaml:"version,omitempty"`

	// Profiles lists the model profile overrides.
	Profiles []ProfileConfig `yaml:"profiles"`
}

// LoadProfileOverrides loads profile overrides from a YAML file.
//
// Lookup order:
//  1. Explicit path argument (if non-empty)
//  2. Default: <workspace>/profiles.yaml
//
// A missing file is not an error - overrides are optional. A present but
// malformed file is an error, because silently ignoring a hand-written
// override would be worse than failing.
//
// Parameters:
//   - path: Explicit file path, or empty to use the workspace default
//
// Returns:
//   - Slice of profile overrides (possibly empty)
//   - Error if the file exists but cannot be read or parsed
func (c *Config) LoadProfileOverrides(path string) ([]ProfileConfig, error) {
	if path == "" {
		path = filepath.Join(c.Workspace, DefaultProfilesFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No profile overrides at %s", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile overrides %s: %w", path, err)
	}

	var file ProfilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile overrides %s: %w", path, err)
	}

	for i, p := range file.Profiles {
		if p.ModelID == "" {
			return nil, fmt.Errorf("profile overrides %s: profile #%d is missing model_id", path, i+1)
		}
	}

	logger.Debug("Loaded %d profile override(s) from %s", len(file.Profiles), path)
	return file.Profiles, nil
}
