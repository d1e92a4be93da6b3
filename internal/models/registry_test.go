package models

import (
	"strings"
	"testing"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
)

func testProfile(id string) *Profile {
	return &Profile{
		ID:           id,
		DisplayName:  "Test Model",
		ModelFile:    id + "/model.onnx",
		InputName:    "input",
		InputShape:   []int{1, 3, 224, 224},
		DataMean:     []float64{0, 0, 0},
		DataScale:    1,
		Quantization: "int8_asym",
		PixelFormat:  "RGB",
		Board:        "c920",
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testProfile("alpha")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "alpha" || p.ModelFile != "alpha/model.onnx" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testProfile("alpha")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.InputShape[0] = 99
	p.Board = "c906"

	again, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.InputShape[0] != 1 || again.Board != "c920" {
		t.Fatalf("registry profile was mutated through a Get copy: %+v", again)
	}
}

func TestGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "svthhb models") {
		t.Fatalf("expected a hint to the models command, got %v", err)
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	p := testProfile("bad")
	p.InputShape = []int{3, 224, 224}
	if err := r.Register(p); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := r.Register(nil); err == nil {
		t.Fatalf("expected error for nil profile")
	}
}

func TestListSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(testProfile(id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	profiles := r.List()
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, p := range profiles {
		if p.ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, p.ID, i)
		}
	}
}

func TestApplyOverridesUpdatesExisting(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testProfile("alpha")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.ApplyOverrides([]config.ProfileConfig{
		{ModelID: "alpha", Quantization: "int16_sym", Board: "th1520"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Quantization != "int16_sym" || p.Board != "th1520" {
		t.Fatalf("override not applied: %+v", p)
	}
	// Untouched fields keep their values.
	if p.ModelFile != "alpha/model.onnx" || p.DataScale != 1 {
		t.Fatalf("override clobbered unrelated fields: %+v", p)
	}
}

func TestApplyOverridesCreatesNew(t *testing.T) {
	r := NewRegistry()
	err := r.ApplyOverrides([]config.ProfileConfig{
		{
			ModelID:    "custom",
			ModelFile:  "custom/net.onnx",
			InputShape: []int{1, 3, 128, 128},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := r.Get("custom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelFile != "custom/net.onnx" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestApplyOverridesNewProfileNeedsModelFile(t *testing.T) {
	r := NewRegistry()
	err := r.ApplyOverrides([]config.ProfileConfig{{ModelID: "empty"}})
	if err == nil {
		t.Fatalf("expected validation error for a new profile without a model file")
	}
}

func TestRoundToPatchMultiple(t *testing.T) {
	cases := []struct {
		h, w, patch, wantH, wantW int
	}{
		{392, 644, 14, 392, 644},
		{390, 640, 14, 392, 644},
		{1, 1, 14, 14, 14},
		{100, 100, 0, 100, 100},
	}
	for _, c := range cases {
		h, w := RoundToPatchMultiple(c.h, c.w, c.patch)
		if h != c.wantH || w != c.wantW {
			t.Fatalf("RoundToPatchMultiple(%d, %d, %d) = (%d, %d), want (%d, %d)",
				c.h, c.w, c.patch, h, w, c.wantH, c.wantW)
		}
	}
}
