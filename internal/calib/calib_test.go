package calib

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestImage writes a small solid-color PNG.
func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, filepath.Join(dir, "a.png"), 8, 8)
	writeTestImage(t, filepath.Join(dir, "sub", "b.PNG"), 8, 8)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	paths, err := CollectImages(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 images, got %v", paths)
	}
	if paths[0] > paths[1] {
		t.Fatalf("paths not sorted: %v", paths)
	}
}

func TestCollectImagesEmpty(t *testing.T) {
	if _, err := CollectImages(t.TempDir()); err == nil {
		t.Fatalf("expected error for a directory without images")
	}
}

func TestCollectImagesMissingDir(t *testing.T) {
	if _, err := CollectImages(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for a missing directory")
	}
}

func TestSampleImagesDeterministic(t *testing.T) {
	paths := make([]string, 20)
	for i := range paths {
		paths[i] = fmt.Sprintf("img_%02d.png", i)
	}

	a := SampleImages(paths, 5, 42)
	b := SampleImages(paths, 5, 42)
	if len(a) != 5 || len(b) != 5 {
		t.Fatalf("expected 5 samples, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different samples: %v vs %v", a, b)
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i-1] >= a[i] {
			t.Fatalf("samples not sorted: %v", a)
		}
	}
}

func TestSampleImagesFewerThanRequested(t *testing.T) {
	paths := []string{"b.png", "a.png"}
	got := SampleImages(paths, 10, 1)
	if len(got) != 2 {
		t.Fatalf("expected all paths, got %v", got)
	}
	// Input must not be mutated.
	if paths[0] != "b.png" {
		t.Fatalf("input slice was mutated: %v", paths)
	}
}

func TestBuild(t *testing.T) {
	src := t.TempDir()
	for i := 0; i < 6; i++ {
		writeTestImage(t, filepath.Join(src, fmt.Sprintf("img_%02d.png", i)), 32, 24)
	}
	out := filepath.Join(t.TempDir(), "calib")

	result, err := Build(&Options{
		SourceDir: src,
		OutputDir: out,
		NumImages: 4,
		Width:     16,
		Height:    12,
		Seed:      7,
		Quality:   90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Found != 6 || result.Sampled != 4 || result.Processed != 4 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Written images follow the zero-padded naming scheme.
	for i := 0; i < 4; i++ {
		path := filepath.Join(out, fmt.Sprintf("calib_%06d.jpg", i))
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}

	// The list file carries one absolute path per written image.
	data, err := os.ReadFile(result.ListFile)
	if err != nil {
		t.Fatalf("list file not written: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 list entries, got %d", len(lines))
	}
	for _, line := range lines {
		if !filepath.IsAbs(line) {
			t.Fatalf("list entries must be absolute, got %q", line)
		}
	}
}

func TestBuildRemovesStaleImages(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "only.png"), 16, 16)

	out := filepath.Join(t.TempDir(), "calib")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	stale := filepath.Join(out, "calib_000009.jpg")
	if err := os.WriteFile(stale, []byte("stale"), 0644); err != nil {
		t.Fatalf("failed to write stale fixture: %v", err)
	}

	result, err := Build(&Options{
		SourceDir: src,
		OutputDir: out,
		NumImages: 5,
		Width:     8,
		Height:    8,
		Seed:      1,
		Quality:   90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale image was not removed")
	}
}

func TestBuildSkipsUndecodable(t *testing.T) {
	src := t.TempDir()
	writeTestImage(t, filepath.Join(src, "good.png"), 16, 16)
	if err := os.WriteFile(filepath.Join(src, "bad.jpg"), []byte("not a jpeg"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	result, err := Build(&Options{
		SourceDir: src,
		OutputDir: filepath.Join(t.TempDir(), "calib"),
		NumImages: 10,
		Width:     8,
		Height:    8,
		Seed:      1,
		Quality:   90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBuildValidates(t *testing.T) {
	if _, err := Build(&Options{SourceDir: "", OutputDir: "x", NumImages: 1, Width: 1, Height: 1, Quality: 90}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := Build(&Options{SourceDir: "x", OutputDir: "y", NumImages: 1, Width: 1, Height: 1, Quality: 0}); err == nil {
		t.Fatalf("expected quality validation error")
	}
}
