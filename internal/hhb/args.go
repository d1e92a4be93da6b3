// Package hhb - args.go builds the hhb command line.
package hhb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
	"github.com/RISCY-SVT/svt-hhb3/internal/models"
)

// hhbBinary is the compiler entry point name. The wheel installs it on
// PATH both in the workbench image and in host installs.
const hhbBinary = "hhb"

// BuildArgs constructs the hhb argument vector for validated options.
//
// The vector follows the vendor CLI surface:
//
//	hhb -D --model-file m.onnx --board th1520
//	    --quantization-scheme int8_asym --calibrate-dataset list.txt
//	    --input-name image --input-shape "1 3 392 644"
//	    --data-mean "123.675 116.28 103.53" --data-scale 0.017
//	    --pixel-format RGB --output ./out
//
// -D selects the full deploy flow (import, quantize, codegen) in one run.
// Options must already have passed Validate; BuildArgs does not
// re-validate.
//
// Returns:
//   - Argument vector (excluding the binary name itself)
func BuildArgs(o *Options) []string {
	args := make([]string, 0, 24)

	args = append(args, "-D", "--model-file", o.ModelFile)
	args = append(args, "--board", strings.ToLower(o.Board))

	if o.Quantization != "" {
		args = append(args, "--quantization-scheme", o.Quantization)
	}
	if o.CalibrateDataset != "" {
		args = append(args, "--calibrate-dataset", o.CalibrateDataset)
	}
	if o.InputName != "" {
		args = append(args, "--input-name", o.InputName)
	}
	if len(o.InputShape) > 0 {
		args = append(args, "--input-shape", joinInts(o.InputShape))
	}
	if len(o.OutputNames) > 0 {
		args = append(args, "--output-name", strings.Join(o.OutputNames, ";"))
	}
	if len(o.DataMean) > 0 {
		args = append(args, "--data-mean", joinFloats(o.DataMean))
	}
	if o.DataScale > 0 {
		args = append(args, "--data-scale", strconv.FormatFloat(o.DataScale, 'g', -1, 64))
	}
	if o.PixelFormat != "" {
		args = append(args, "--pixel-format", strings.ToUpper(o.PixelFormat))
	}

	args = append(args, "--output", o.OutputDir)

	args = append(args, convertExtraParams(o.ExtraArgs)...)

	return args
}

// OptionsFromProfile seeds conversion options from a model profile.
//
// The returned options carry the profile's defaults; the convert command
// overlays explicit flags on top before validation. Model file paths are
// resolved against the data directory by the caller, not here.
//
// Parameters:
//   - p: Model profile (must not be nil)
//
// Returns:
//   - Options pre-filled from the profile
func OptionsFromProfile(p *models.Profile) *Options {
	return &Options{
		ModelFile:    p.ModelFile,
		Board:        p.Board,
		InputName:    p.InputName,
		InputShape:   append([]int(nil), p.InputShape...),
		DataMean:     append([]float64(nil), p.DataMean...),
		DataScale:    p.DataScale,
		Quantization: p.Quantization,
		PixelFormat:  p.PixelFormat,
		OutputNames:  append([]string(nil), p.OutputNames...),
		ExtraArgs:    append([]string(nil), p.ExtraArgs...),
	}
}

// convertExtraParams converts extra parameters to hhb CLI flags.
//
// Profile extra args come in two forms:
//  1. Verbatim flags ("--without-preprocess") - passed through unchanged
//  2. key=value pairs ("trace=csinn") - converted to "--key value" with
//     camelCase and snake_case keys normalized to kebab-case
//
// Example:
//
//	Input:  ["--without-preprocess", "fuseConv=1", "matrix_extension=0.5"]
//	Output: ["--without-preprocess", "--fuse-conv", "1", "--matrix-extension", "0.5"]
func convertExtraParams(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}

	args := make([]string, 0, len(extra)*2)
	for _, param := range extra {
		if strings.HasPrefix(param, "-") {
			args = append(args, param)
			continue
		}

		parts := strings.SplitN(param, "=", 2)
		if len(parts) != 2 {
			logger.Warn("Ignoring extra parameter with invalid format (expected key=value or --flag): %s", param)
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			logger.Warn("Ignoring extra parameter with empty key: %s", param)
			continue
		}

		args = append(args, "--"+convertToFlagName(key))
		if value != "" {
			args = append(args, value)
		}
	}
	return args
}

// convertToFlagName converts a parameter key to hhb flag format.
//
// Conversion rules:
//  1. camelCase -> kebab-case (fuseConv -> fuse-conv)
//  2. snake_case -> kebab-case (fuse_conv -> fuse-conv)
//  3. Lowercase everything
func convertToFlagName(key string) string {
	var result strings.Builder

	for i, ch := range key {
		if ch == '_' {
			result.WriteRune('-')
		} else if ch >= 'A' && ch <= 'Z' {
			if i > 0 && key[i-1] != '_' && key[i-1] != '-' {
				result.WriteRune('-')
			}
			result.WriteRune(ch)
		} else {
			result.WriteRune(ch)
		}
	}

	return strings.ToLower(result.String())
}

// joinInts renders dimensions as the space-separated string hhb expects.
func joinInts(dims []int) string {
	fields := make([]string, len(dims))
	for i, d := range dims {
		fields[i] = strconv.Itoa(d)
	}
	return strings.Join(fields, " ")
}

// joinFloats renders mean values as the space-separated string hhb expects.
func joinFloats(values []float64) string {
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(fields, " ")
}

// CommandLine returns the full command line for logging purposes.
func CommandLine(o *Options) string {
	return fmt.Sprintf("%s %s", hhbBinary, strings.Join(BuildArgs(o), " "))
}
