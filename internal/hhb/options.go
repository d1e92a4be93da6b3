// Package hhb drives the vendored HHB model compiler.
//
// HHB ("Heterogeneous Honey Badger") is T-Head's TVM-based model compiler.
// It is installed as an opaque Python package inside the workbench image;
// this package's job is everything around the binary: validating the
// conversion parameters against the schemes the compiler accepts, building
// the argument vector, running the process (on the host or inside the
// workbench container) and verifying that the expected artifacts came out
// the other side.
package hhb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/cross"
)

// Quantization schemes accepted by the hhb CLI. The set tracks the
// vendor compiler's --quantization-scheme surface; anything else is
// rejected before the (slow) compiler is ever started.
var supportedQuantSchemes = map[string]bool{
	"int8_asym_w_sym": true,
	"int8_asym":       true,
	"int8_sym":        true,
	"int16_sym":       true,
	"float16":         true,
	"bfloat16":        true,
	"float32":         true,
}

// Pixel formats accepted by the hhb preprocessing step.
var supportedPixelFormats = map[string]bool{
	"RGB": true,
	"BGR": true,
}

// Options holds the parameters of one model conversion.
//
// The zero value is not usable; construct via the convert command (flags
// merged over a model profile) and call Validate before Run.
type Options struct {
	// ModelFile is the ONNX model path.
	ModelFile string

	// Board is the hhb target board (validated against the cross package
	// board registry so convert and compile agree on targets).
	Board string

	// OutputDir is the directory hhb writes generated sources into.
	OutputDir string

	// CalibrateDataset is the calibration list file or image directory
	// used for quantization. Required for int8/int16 schemes.
	CalibrateDataset string

	// InputName is the graph input tensor name. Optional; hhb infers it
	// from the graph when empty.
	InputName string

	// InputShape is the input tensor shape in NCHW order.
	InputShape []int

	// DataMean is the per-channel preprocessing mean.
	DataMean []float64

	// DataScale is the preprocessing scale factor.
	DataScale float64

	// Quantization is the quantization scheme.
	Quantization string

	// PixelFormat is the input pixel order ("RGB" or "BGR").
	PixelFormat string

	// OutputNames restricts codegen to the listed graph outputs.
	OutputNames []string

	// ExtraArgs are appended verbatim to the hhb command line.
	ExtraArgs []string

	// Quiet suppresses hhb's own progress output.
	Quiet bool
}

// Validate checks the options against the compiler's accepted surface.
//
// Validation is deliberately strict and front-loaded: an hhb run takes
// minutes, so every rejectable mistake must be caught here (spec'd enum
// values, shape arity, mean/channel agreement) rather than surfacing as a
// Python traceback halfway through quantization.
//
// Returns:
//   - nil if the options describe a runnable conversion
//   - Error describing the first problem found
func (o *Options) Validate() error {
	if o.ModelFile == "" {
		return fmt.Errorf("model file is required")
	}
	if !strings.HasSuffix(strings.ToLower(o.ModelFile), ".onnx") {
		return fmt.Errorf("model file must be an .onnx file: %s", o.ModelFile)
	}
	if o.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	if o.Board == "" {
		return fmt.Errorf("target board is required (supported: %s)",
			strings.Join(cross.SupportedBoards(), ", "))
	}
	if !cross.IsSupportedBoard(o.Board) {
		return fmt.Errorf("unsupported board %q (supported: %s)",
			o.Board, strings.Join(cross.SupportedBoards(), ", "))
	}

	if o.Quantization != "" && !supportedQuantSchemes[o.Quantization] {
		return fmt.Errorf("unsupported quantization scheme %q (supported: %s)",
			o.Quantization, strings.Join(SupportedQuantSchemes(), ", "))
	}

	if o.PixelFormat != "" && !supportedPixelFormats[strings.ToUpper(o.PixelFormat)] {
		return fmt.Errorf("unsupported pixel format %q (supported: RGB, BGR)", o.PixelFormat)
	}

	if len(o.InputShape) != 0 && len(o.InputShape) != 4 {
		return fmt.Errorf("input shape must have exactly 4 dimensions (NCHW), got %d", len(o.InputShape))
	}
	for _, dim := range o.InputShape {
		if dim <= 0 {
			return fmt.Errorf("input shape dimensions must be positive, got %v", o.InputShape)
		}
	}

	if len(o.DataMean) > 1 && len(o.InputShape) == 4 && len(o.DataMean) != o.InputShape[1] {
		return fmt.Errorf("data mean has %d value(s) but the model has %d channel(s)",
			len(o.DataMean), o.InputShape[1])
	}
	if o.DataScale < 0 {
		return fmt.Errorf("data scale must not be negative, got %g", o.DataScale)
	}

	if o.requiresCalibration() && o.CalibrateDataset == "" {
		return fmt.Errorf("quantization scheme %s requires a calibration dataset (-c)", o.Quantization)
	}

	return nil
}

// requiresCalibration reports whether the selected quantization scheme
// needs calibration data.
func (o *Options) requiresCalibration() bool {
	switch o.Quantization {
	case "int8_asym_w_sym", "int8_asym", "int8_sym", "int16_sym":
		return true
	default:
		return false
	}
}

// SupportedQuantSchemes returns the sorted list of accepted quantization
// scheme names.
func SupportedQuantSchemes() []string {
	schemes := make([]string, 0, len(supportedQuantSchemes))
	for s := range supportedQuantSchemes {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// ParseInputShape parses a whitespace- or comma-separated shape string
// into dimensions.
//
// Both "1 3 392 644" and "1,3,392,644" are accepted, matching the two
// notations in circulating vendor documentation.
//
// Parameters:
//   - s: Shape string
//
// Returns:
//   - Parsed dimensions
//   - Error if the string is empty or contains a non-positive or
//     non-numeric field
func ParseInputShape(s string) ([]int, error) {
	fields := splitList(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("input shape is empty")
	}

	dims := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid input shape dimension %q: %w", f, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("input shape dimensions must be positive, got %d", n)
		}
		dims = append(dims, n)
	}
	return dims, nil
}

// ParseMeanValues parses a whitespace- or comma-separated list of mean
// values.
//
// Parameters:
//   - s: Mean value string (e.g., "123.675 116.28 103.53")
//
// Returns:
//   - Parsed values
//   - Error if the string is empty or contains a non-numeric field
func ParseMeanValues(s string) ([]float64, error) {
	fields := splitList(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("data mean is empty")
	}

	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid data mean value %q: %w", f, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// splitList splits on any mix of spaces and commas, dropping empty fields.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}
