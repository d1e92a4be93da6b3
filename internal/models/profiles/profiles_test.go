package profiles

import (
	"testing"

	"github.com/RISCY-SVT/svt-hhb3/internal/models"
)

func TestBuiltinProfilesRegistered(t *testing.T) {
	registry := models.GetDefaultRegistry()
	for _, id := range []string{"yolov5n", "depth-anything-v2-s"} {
		if _, err := registry.Get(id); err != nil {
			t.Fatalf("built-in profile %s not registered: %v", id, err)
		}
	}
}

func TestYOLOv5nProfile(t *testing.T) {
	p, err := models.GetDefaultRegistry().Get("yolov5n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.InputShape[2] != 640 || p.InputShape[3] != 640 {
		t.Fatalf("unexpected input geometry: %v", p.InputShape)
	}
	if p.DataScale != 1.0/255.0 {
		t.Fatalf("unexpected data scale: %g", p.DataScale)
	}
	if len(p.OutputNames) != 3 {
		t.Fatalf("expected the three detection head outputs, got %v", p.OutputNames)
	}
	for _, name := range p.OutputNames {
		if name == "" {
			t.Fatalf("empty output name in %v", p.OutputNames)
		}
	}
}

func TestDepthAnythingGeometryPatchAligned(t *testing.T) {
	p, err := models.GetDefaultRegistry().Get("depth-anything-v2-s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h, w := p.InputShape[2], p.InputShape[3]
	if h%dav2PatchSize != 0 || w%dav2PatchSize != 0 {
		t.Fatalf("input %dx%d is not a multiple of the patch size %d", h, w, dav2PatchSize)
	}
	if h != 392 || w != 644 {
		t.Fatalf("unexpected input geometry: %dx%d", h, w)
	}
	if len(p.DataMean) != 3 {
		t.Fatalf("expected per-channel mean, got %v", p.DataMean)
	}
	// Calibration geometry is width x height of the model input.
	if p.CalibrationWidth != w || p.CalibrationHeight != h {
		t.Fatalf("calibration geometry %dx%d does not match input %dx%d",
			p.CalibrationWidth, p.CalibrationHeight, w, h)
	}
}
