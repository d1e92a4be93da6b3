package app

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/hhb"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
	"github.com/RISCY-SVT/svt-hhb3/internal/workbench"
)

// defaultConvertOutputDir is the output directory name used when -o is
// not given, created under the workspace.
const defaultConvertOutputDir = "hhb_out"

// ConvertOptions holds options for the convert command
type ConvertOptions struct {
	*GlobalOptions

	// Profile is the model profile ID providing defaults
	Profile string

	// ModelFile overrides the profile's ONNX model path
	ModelFile string

	// Board overrides the target board
	Board string

	// OutputDir is where hhb writes the generated sources
	OutputDir string

	// Calibration is the calibration list file or image directory
	Calibration string

	// InputName overrides the graph input tensor name
	InputName string

	// InputShape overrides the input shape ("1 3 640 640")
	InputShape string

	// Quantization overrides the quantization scheme
	Quantization string

	// PixelFormat overrides the pixel order
	PixelFormat string

	// DataMean overrides the preprocessing mean
	DataMean string

	// DataScale overrides the preprocessing scale
	DataScale float64

	// OutputNames restricts codegen to the listed graph outputs
	OutputNames []string

	// ExtraArgs are appended verbatim to the hhb command line
	ExtraArgs []string

	// Local runs hhb on the host instead of in the workbench
	Local bool

	// Quiet suppresses hhb's own output
	Quiet bool
}

// NewConvertCommand creates the convert command.
//
// The convert command runs the HHB compiler on an ONNX model, producing
// the C sources and quantized weights for a Xuantie board. Defaults come
// from a model profile and can be overridden per flag; the resulting
// options are validated before hhb is started because a conversion run
// takes minutes.
//
// Usage:
//
//	svthhb convert [PROFILE] [OPTIONS]
//
// Examples:
//
//	# Convert using the yolov5n profile defaults
//	svthhb convert yolov5n -c /data/calib/yolov5n/calibration_list.txt
//
//	# Override the quantization scheme
//	svthhb convert yolov5n --quantization int16_sym -c /data/calib/yolov5n
//
//	# Convert without a profile
//	svthhb convert -m /data/model.onnx -b c920 --input-shape "1 3 224 224" \
//	    --quantization float16
//
//	# Run hhb installed on the host instead of in the workbench
//	svthhb convert yolov5n --local -c ./calib/calibration_list.txt
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for running conversions
func NewConvertCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ConvertOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "convert [PROFILE]",
		Short: "Convert an ONNX model with the HHB compiler",
		Long: `Convert an ONNX model into C sources and quantized weights with hhb.

A profile (see 'svthhb models') provides the model defaults: file,
input geometry, preprocessing, quantization scheme and target board.
Every value can be overridden per flag, and profile-less conversions
are possible by specifying everything explicitly.

By default hhb runs inside the workbench container via docker exec, so
paths are container paths: the workspace is /workspace and the data
directory is /data. Profile model files resolve against /data. With
--local, hhb must be on the PATH and host paths apply.

int8/int16 schemes require a calibration dataset (-c), either a
calibration_list.txt or a directory of images. Build one with
'svthhb calib'.

After hhb exits the expected artifacts (model.c, model.params by
default) are checked to exist and be non-empty.`,
		Example: `  # Convert with profile defaults
  svthhb convert yolov5n -c /data/calib/yolov5n/calibration_list.txt

  # Override quantization
  svthhb convert yolov5n --quantization int16_sym -c /data/calib/yolov5n`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Profile = args[0]
			}
			return runConvert(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelFile, "model", "m", "",
		"ONNX model file (overrides the profile)")
	cmd.Flags().StringVarP(&opts.Board, "board", "b", "",
		"target board (overrides the profile)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "",
		"output directory for generated sources (default: <workspace>/"+defaultConvertOutputDir+")")
	cmd.Flags().StringVarP(&opts.Calibration, "calibration", "c", "",
		"calibration list file or image directory")
	cmd.Flags().StringVar(&opts.InputName, "input-name", "",
		"graph input tensor name")
	cmd.Flags().StringVar(&opts.InputShape, "input-shape", "",
		"input shape in NCHW order, e.g. \"1 3 640 640\"")
	cmd.Flags().StringVar(&opts.Quantization, "quantization", "",
		"quantization scheme ("+strings.Join(hhb.SupportedQuantSchemes(), ", ")+")")
	cmd.Flags().StringVar(&opts.PixelFormat, "pixel-format", "",
		"input pixel order (RGB or BGR)")
	cmd.Flags().StringVar(&opts.DataMean, "data-mean", "",
		"per-channel preprocessing mean, e.g. \"123.675 116.28 103.53\"")
	cmd.Flags().Float64Var(&opts.DataScale, "data-scale", 0,
		"preprocessing scale factor")
	cmd.Flags().StringArrayVar(&opts.OutputNames, "output-name", nil,
		"graph output tensor name (repeatable)")
	cmd.Flags().StringArrayVar(&opts.ExtraArgs, "hhb-arg", nil,
		"extra argument passed verbatim to hhb (repeatable)")
	cmd.Flags().BoolVar(&opts.Local, "local", false,
		"run hhb on the host instead of in the workbench container")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false,
		"suppress hhb output")

	return cmd
}

// runConvert executes the convert command logic
func runConvert(cmd *cobra.Command, opts *ConvertOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	convOpts, artifacts, err := buildConvertOptions(cmd, opts, cfg)
	if err != nil {
		return err
	}

	ctx := contextWithInterrupt()

	var runner hhb.Runner
	verifyDir := convOpts.OutputDir
	if opts.Local {
		hostRunner, err := hhb.NewHostRunner()
		if err != nil {
			return err
		}
		runner = hostRunner
	} else {
		wb, err := workbench.New(cfg)
		if err != nil {
			return err
		}
		status, err := wb.Status(ctx)
		if err != nil {
			return err
		}
		if status.State != workbench.StateRunning {
			return fmt.Errorf("workbench %s is not running (state: %s); start it with 'svthhb shell'",
				cfg.ContainerName, status.State)
		}
		runner = hhb.NewContainerRunner(cfg.ContainerName, config.WorkbenchWorkspaceDir)
		verifyDir = hostPathFor(cfg, convOpts.OutputDir)
	}

	if err := hhb.Convert(ctx, runner, convOpts, artifacts, verifyDir); err != nil {
		return err
	}

	fmt.Printf("Conversion complete, artifacts in %s\n", verifyDir)
	return nil
}

// buildConvertOptions merges profile defaults with flag overrides into
// validated hhb options.
//
// Precedence: flag > profile > nothing. Flags that were not set on the
// command line leave the profile values untouched, which matters for
// numeric flags whose zero value is meaningful.
//
// Parameters:
//   - cmd: The cobra command (for flag change detection)
//   - opts: Parsed convert options
//   - cfg: Application configuration
//
// Returns:
//   - hhb options ready to validate and run
//   - Expected artifact list from the profile (nil without a profile)
//   - Error if the profile is unknown or a flag value is malformed
func buildConvertOptions(cmd *cobra.Command, opts *ConvertOptions, cfg *config.Config) (*hhb.Options, []string, error) {
	var convOpts *hhb.Options
	var artifacts []string

	if opts.Profile != "" {
		registry, err := getRegistry(cfg)
		if err != nil {
			return nil, nil, err
		}
		profile, err := registry.Get(opts.Profile)
		if err != nil {
			return nil, nil, err
		}
		convOpts = hhb.OptionsFromProfile(profile)
		artifacts = append([]string(nil), profile.ExpectedArtifacts...)

		// Profile model paths are relative to the data directory. The
		// container sees it at /data, the host at cfg.DataDir.
		if !path.IsAbs(convOpts.ModelFile) {
			if opts.Local {
				convOpts.ModelFile = filepath.Join(cfg.DataDir, convOpts.ModelFile)
			} else {
				convOpts.ModelFile = path.Join(config.WorkbenchDataDir, convOpts.ModelFile)
			}
		}
	} else {
		convOpts = &hhb.Options{}
	}

	if opts.ModelFile != "" {
		convOpts.ModelFile = opts.ModelFile
	}
	if opts.Board != "" {
		convOpts.Board = opts.Board
	}
	if opts.InputName != "" {
		convOpts.InputName = opts.InputName
	}
	if opts.Quantization != "" {
		convOpts.Quantization = opts.Quantization
	}
	if opts.PixelFormat != "" {
		convOpts.PixelFormat = opts.PixelFormat
	}
	if opts.Calibration != "" {
		convOpts.CalibrateDataset = opts.Calibration
	}
	if len(opts.OutputNames) > 0 {
		convOpts.OutputNames = opts.OutputNames
	}
	if len(opts.ExtraArgs) > 0 {
		convOpts.ExtraArgs = append(convOpts.ExtraArgs, opts.ExtraArgs...)
	}
	if opts.InputShape != "" {
		shape, err := hhb.ParseInputShape(opts.InputShape)
		if err != nil {
			return nil, nil, err
		}
		convOpts.InputShape = shape
	}
	if opts.DataMean != "" {
		mean, err := hhb.ParseMeanValues(opts.DataMean)
		if err != nil {
			return nil, nil, err
		}
		convOpts.DataMean = mean
	}
	if cmd.Flags().Changed("data-scale") {
		convOpts.DataScale = opts.DataScale
	}

	convOpts.Quiet = opts.Quiet

	convOpts.OutputDir = opts.OutputDir
	if convOpts.OutputDir == "" {
		if opts.Local {
			convOpts.OutputDir = filepath.Join(cfg.Workspace, defaultConvertOutputDir)
		} else {
			convOpts.OutputDir = path.Join(config.WorkbenchWorkspaceDir, defaultConvertOutputDir)
		}
	}

	return convOpts, artifacts, nil
}

// hostPathFor maps a container-side path onto its host equivalent via
// the workbench bind mounts.
//
// Relative paths are relative to /workspace (the exec working
// directory). Paths outside both mounts cannot be mapped; they are
// returned unchanged with a warning, and artifact verification will
// report if nothing is there.
//
// Parameters:
//   - cfg: Application configuration (mount sources)
//   - containerPath: Path as seen inside the workbench
//
// Returns:
//   - The corresponding host path
func hostPathFor(cfg *config.Config, containerPath string) string {
	if !path.IsAbs(containerPath) {
		return filepath.Join(cfg.Workspace, containerPath)
	}
	if containerPath == config.WorkbenchWorkspaceDir {
		return cfg.Workspace
	}
	if rel, ok := strings.CutPrefix(containerPath, config.WorkbenchWorkspaceDir+"/"); ok {
		return filepath.Join(cfg.Workspace, rel)
	}
	if containerPath == config.WorkbenchDataDir {
		return cfg.DataDir
	}
	if rel, ok := strings.CutPrefix(containerPath, config.WorkbenchDataDir+"/"); ok {
		return filepath.Join(cfg.DataDir, rel)
	}
	logger.Warn("Output directory %s is outside the workbench mounts", containerPath)
	return containerPath
}
