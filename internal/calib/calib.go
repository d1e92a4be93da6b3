// Package calib builds calibration datasets for INT8/INT16 quantization.
//
// HHB's post-training quantization needs a few hundred representative
// images at the model's input geometry. This package prepares them:
//   - Recursively collects images from a source directory
//   - Randomly samples a requested number with a fixed seed
//   - Resizes them to the target dimensions
//   - Re-encodes them as JPEG at a set quality
//   - Emits calibration_list.txt with the absolute path of every image
//
// The sampling is deterministic: the source list is sorted before
// sampling and the sample is re-sorted before processing, so two runs
// over the same tree with the same seed produce identical file sets and
// numbering.
package calib

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for source images
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

const (
	// ListFileName is the calibration list file consumed by hhb's
	// --calibrate-dataset flag.
	ListFileName = "calibration_list.txt"

	// imagePattern is the naming scheme for produced images. The zero
	// padded index keeps lexical and numeric order identical.
	imagePattern = "calib_%06d.jpg"

	// calibPrefix identifies files this package owns in the output
	// directory; only these are removed during cleanup.
	calibPrefix = "calib_"
)

// Options holds the parameters of a calibration set build.
type Options struct {
	// SourceDir is the directory scanned recursively for images.
	SourceDir string

	// OutputDir receives the processed images and the list file.
	OutputDir string

	// NumImages is the number of images to sample. When the source
	// holds fewer images, all of them are used.
	NumImages int

	// Width and Height are the target image dimensions.
	Width  int
	Height int

	// Seed drives the random sampling.
	Seed int64

	// Quality is the JPEG quality (1-100).
	Quality int
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.SourceDir == "" {
		return fmt.Errorf("source directory is required")
	}
	if o.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if o.NumImages <= 0 {
		return fmt.Errorf("number of images must be positive, got %d", o.NumImages)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("target dimensions must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("JPEG quality must be in [1, 100], got %d", o.Quality)
	}
	return nil
}

// Result summarizes a build.
type Result struct {
	// Found is the number of candidate images discovered.
	Found int

	// Sampled is the number of images selected.
	Sampled int

	// Processed is the number of images successfully written.
	Processed int

	// Skipped counts source images that failed to decode.
	Skipped int

	// ListFile is the path of the written calibration list.
	ListFile string
}

// imageExtensions are the source formats accepted. Matching is
// case-insensitive.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// CollectImages recursively collects image paths under dir.
//
// Returns:
//   - Sorted list of image paths
//   - Error if the directory does not exist, is not a directory, or
//     contains no images
func CollectImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path is not a directory: %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found in %s (accepted extensions: .jpg, .jpeg, .png)", dir)
	}

	sort.Strings(paths)
	logger.Debug("Found %d image(s) in %s", len(paths), dir)
	return paths, nil
}

// SampleImages selects up to n paths using a seeded random source.
//
// When the input holds n or fewer paths all of them are returned. The
// result is sorted so downstream numbering is stable.
func SampleImages(paths []string, n int, seed int64) []string {
	if len(paths) <= n {
		return append([]string(nil), paths...)
	}

	rng := rand.New(rand.NewSource(seed))
	sampled := append([]string(nil), paths...)
	rng.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	sampled = sampled[:n]

	sort.Strings(sampled)
	return sampled
}

// resize scales img to w x h. Images already at the target size are
// returned unchanged.
func resize(img image.Image, w, h int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == w && bounds.Dy() == h {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// Build produces a calibration dataset from the options.
//
// Existing calib_*.jpg files in the output directory are removed first
// so a re-run with fewer images never leaves stale entries behind.
// Undecodable source images are skipped with a warning; the build only
// fails when nothing at all could be processed.
//
// Parameters:
//   - opts: Build options
//
// Returns:
//   - Result with counts and the list file path
//   - Error if validation, scanning or the final list write fails
func Build(opts *Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration options: %w", err)
	}

	found, err := CollectImages(opts.SourceDir)
	if err != nil {
		return nil, err
	}

	sampled := SampleImages(found, opts.NumImages, opts.Seed)
	if len(sampled) < opts.NumImages {
		logger.Info("Requested %d image(s) but only %d available, using all", opts.NumImages, len(sampled))
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", opts.OutputDir, err)
	}
	if err := removeStaleImages(opts.OutputDir); err != nil {
		return nil, err
	}

	result := &Result{
		Found:   len(found),
		Sampled: len(sampled),
	}

	var written []string
	for _, src := range sampled {
		img, err := loadImage(src)
		if err != nil {
			logger.Warn("Skipping %s: %v", src, err)
			result.Skipped++
			continue
		}

		resized := resize(img, opts.Width, opts.Height)
		dst := filepath.Join(opts.OutputDir, fmt.Sprintf(imagePattern, result.Processed))
		if err := saveJPEG(resized, dst, opts.Quality); err != nil {
			logger.Warn("Failed to write %s: %v", dst, err)
			result.Skipped++
			continue
		}

		written = append(written, dst)
		result.Processed++
	}

	if result.Processed == 0 {
		return nil, fmt.Errorf("no images could be processed from %s", opts.SourceDir)
	}

	listFile, err := writeListFile(opts.OutputDir, written)
	if err != nil {
		return nil, err
	}
	result.ListFile = listFile

	logger.Info("Calibration dataset ready: %d image(s), list at %s", result.Processed, listFile)
	return result, nil
}

// removeStaleImages deletes calib_*.jpg leftovers from previous runs.
func removeStaleImages(dir string) error {
	stale, err := filepath.Glob(filepath.Join(dir, calibPrefix+"*.jpg"))
	if err != nil {
		return fmt.Errorf("failed to scan for stale calibration images: %w", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale image %s: %w", path, err)
		}
	}
	if len(stale) > 0 {
		logger.Debug("Removed %d stale calibration image(s)", len(stale))
	}
	return nil
}

// loadImage decodes an image file.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return img, nil
}

// saveJPEG encodes an image as JPEG at the given quality.
func saveJPEG(img image.Image, path string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeListFile emits calibration_list.txt with absolute image paths,
// one per line.
func writeListFile(dir string, images []string) (string, error) {
	var sb strings.Builder
	for _, path := range images {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		sb.WriteString(abs)
		sb.WriteByte('\n')
	}

	listFile := filepath.Join(dir, ListFileName)
	if err := os.WriteFile(listFile, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", listFile, err)
	}
	return listFile, nil
}
