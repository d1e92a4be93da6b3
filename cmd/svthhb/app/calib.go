package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/calib"
)

// defaultCalibSeed keeps default runs reproducible: the same source
// directory always yields the same calibration set.
const defaultCalibSeed = 42

// CalibOptions holds options for the calib command
type CalibOptions struct {
	*GlobalOptions

	// SourceDir is the directory scanned for source images
	SourceDir string

	// OutputDir receives the processed images and the list file
	OutputDir string

	// Profile takes the target geometry from a model profile
	Profile string

	// NumImages is the number of images to sample
	NumImages int

	// Width and Height are the target image dimensions
	Width  int
	Height int

	// Seed drives the random sampling
	Seed int64

	// Quality is the JPEG quality of the written images
	Quality int
}

// NewCalibCommand creates the calib command.
//
// The calib command builds a calibration dataset for quantization: it
// samples images from a source directory, resizes them to the model's
// input geometry, and writes them with a calibration_list.txt that
// convert can consume directly.
//
// Usage:
//
//	svthhb calib SOURCE_DIR [OPTIONS]
//
// Examples:
//
//	# Sample images at the yolov5n input geometry
//	svthhb calib ~/datasets/coco/val2017 --profile yolov5n -o data/calib/yolov5n
//
//	# Explicit geometry and sample size
//	svthhb calib ./photos -o data/calib/custom -n 50 --width 644 --height 392
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for building calibration sets
func NewCalibCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &CalibOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "calib SOURCE_DIR",
		Short: "Build a calibration image set",
		Long: `Build a calibration dataset from a directory of images.

The source directory is scanned recursively for JPEG and PNG images, a
random subset is sampled, and each image is resized to the target
geometry and written as JPEG into the output directory together with a
calibration_list.txt listing the written files.

The geometry can come from a model profile (--profile) or be given
explicitly (--width/--height). Sampling is seeded with a fixed default,
so re-running over the same source yields the same set; pass --seed to
draw a different sample. Images already present in the output directory
from a previous run are replaced.

Undecodable source images are skipped with a warning; the build only
fails when no image could be processed at all.`,
		Example: `  # Sample images at the yolov5n input geometry
  svthhb calib ~/datasets/coco/val2017 --profile yolov5n -o data/calib/yolov5n`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SourceDir = args[0]
			return runCalib(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "",
		"output directory (default: <workspace>/data/calib)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "",
		"model profile providing the target geometry")
	cmd.Flags().IntVarP(&opts.NumImages, "num", "n", 300,
		"number of images to sample")
	cmd.Flags().IntVar(&opts.Width, "width", 0,
		"target image width")
	cmd.Flags().IntVar(&opts.Height, "height", 0,
		"target image height")
	cmd.Flags().Int64Var(&opts.Seed, "seed", defaultCalibSeed,
		"sampling seed")
	cmd.Flags().IntVar(&opts.Quality, "quality", 95,
		"JPEG quality of the written images (1-100)")

	return cmd
}

// runCalib executes the calib command logic
func runCalib(opts *CalibOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	width, height := opts.Width, opts.Height
	if opts.Profile != "" {
		registry, err := getRegistry(cfg)
		if err != nil {
			return err
		}
		profile, err := registry.Get(opts.Profile)
		if err != nil {
			return err
		}
		if width == 0 {
			width = profile.CalibrationWidth
		}
		if height == 0 {
			height = profile.CalibrationHeight
		}
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("target geometry is required: pass --width/--height or --profile")
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(cfg.DataDir, "calib")
	} else if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(cfg.Workspace, outputDir)
	}

	result, err := calib.Build(&calib.Options{
		SourceDir: opts.SourceDir,
		OutputDir: outputDir,
		NumImages: opts.NumImages,
		Width:     width,
		Height:    height,
		Seed:      opts.Seed,
		Quality:   opts.Quality,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Calibration set ready: %d/%d images at %dx%d", result.Processed, result.Sampled, width, height)
	if result.Skipped > 0 {
		fmt.Printf(" (%d skipped)", result.Skipped)
	}
	fmt.Println()
	fmt.Printf("List file: %s\n", result.ListFile)
	return nil
}
