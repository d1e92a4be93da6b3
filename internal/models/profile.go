// Package models provides model conversion profiles and registry management.
//
// This package manages the catalog of models the toolchain knows how to
// convert, including:
//   - Default conversion parameters (input shape, mean/scale, quantization)
//   - Calibration image geometry per model
//   - Expected output artifacts for post-conversion verification
//   - Thread-safe access to the profile registry
//
// Each model is defined in its own file under the profiles subdirectory
// and registered through an init() function.
package models

import (
	"fmt"
)

// Profile defines the complete conversion profile for a model.
//
// A profile captures everything the convert command needs to drive hhb for
// a particular model, so the common case is `svthhb convert --profile ID`
// with no further flags. Every field can still be overridden on the
// command line or through profiles.yaml.
type Profile struct {
	// ID is the unique profile identifier (e.g., "yolov5n").
	ID string

	// DisplayName is the human-readable model name.
	DisplayName string

	// Description provides detail about the model and its deployment.
	Description string

	// ModelFile is the ONNX model filename, relative to the data
	// directory unless absolute.
	ModelFile string

	// InputName is the graph input tensor name.
	InputName string

	// InputShape is the input tensor shape in NCHW order.
	InputShape []int

	// DataMean is the per-channel mean subtracted during preprocessing.
	// A single element applies to all channels.
	DataMean []float64

	// DataScale is the preprocessing scale factor (pixel value divisor
	// applied after mean subtraction).
	DataScale float64

	// Quantization is the default HHB quantization scheme.
	Quantization string

	// PixelFormat is the input pixel order ("RGB" or "BGR").
	PixelFormat string

	// Board is the default target board.
	Board string

	// CalibrationWidth and CalibrationHeight describe the calibration
	// image geometry expected by this model.
	CalibrationWidth  int
	CalibrationHeight int

	// OutputNames lists graph output tensors to expose. Empty means the
	// graph's own outputs are used unchanged.
	OutputNames []string

	// ExpectedArtifacts lists files that must exist and be non-empty in
	// the output directory after a successful conversion.
	ExpectedArtifacts []string

	// ExtraArgs are appended verbatim to the hhb command line.
	ExtraArgs []string
}

// String returns a short human-readable representation of the profile.
func (p *Profile) String() string {
	return fmt.Sprintf("%s (%s)", p.ID, p.DisplayName)
}

// Validate checks the profile for internal consistency.
//
// Registered profiles are validated at registration time so a broken
// built-in profile fails fast at startup rather than mid-conversion.
//
// Returns:
//   - nil if the profile is usable
//   - Error describing the first problem found
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if p.ModelFile == "" {
		return fmt.Errorf("profile %s: model file is required", p.ID)
	}
	if len(p.InputShape) != 0 && len(p.InputShape) != 4 {
		return fmt.Errorf("profile %s: input shape must have 4 dimensions (NCHW), got %d", p.ID, len(p.InputShape))
	}
	for _, dim := range p.InputShape {
		if dim <= 0 {
			return fmt.Errorf("profile %s: input shape dimensions must be positive", p.ID)
		}
	}
	if len(p.DataMean) > 1 && len(p.InputShape) == 4 && len(p.DataMean) != p.InputShape[1] {
		return fmt.Errorf("profile %s: data mean has %d value(s) but model has %d channel(s)",
			p.ID, len(p.DataMean), p.InputShape[1])
	}
	if p.DataScale < 0 {
		return fmt.Errorf("profile %s: data scale must not be negative", p.ID)
	}
	return nil
}

// RoundToPatchMultiple rounds spatial dimensions up to the nearest
// multiple of patchSize.
//
// Vision-transformer backbones (Depth-Anything-V2 uses DINOv2 with a
// patch size of 14) require input height and width to be multiples of the
// patch size; the exporter rounds up rather than cropping.
//
// Parameters:
//   - height, width: Requested spatial dimensions
//   - patchSize: Backbone patch size (must be positive)
//
// Returns:
//   - Rounded height and width
func RoundToPatchMultiple(height, width, patchSize int) (int, int) {
	if patchSize <= 0 {
		return height, width
	}
	h := ((height + patchSize - 1) / patchSize) * patchSize
	w := ((width + patchSize - 1) / patchSize) * patchSize
	return h, w
}
