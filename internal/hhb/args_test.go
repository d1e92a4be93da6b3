package hhb

import (
	"strings"
	"testing"

	"github.com/RISCY-SVT/svt-hhb3/internal/models"
)

func TestBuildArgsFull(t *testing.T) {
	o := &Options{
		ModelFile:        "/data/DAv2s/depth_anything_v2_s.onnx",
		Board:            "TH1520",
		OutputDir:        "/workspace/hhb_out",
		Quantization:     "int8_asym_w_sym",
		CalibrateDataset: "/data/calib/calibration_list.txt",
		InputName:        "image",
		InputShape:       []int{1, 3, 392, 644},
		DataMean:         []float64{123.675, 116.28, 103.53},
		DataScale:        0.017125,
		PixelFormat:      "rgb",
		OutputNames:      []string{"depth"},
	}

	got := strings.Join(BuildArgs(o), " ")
	want := "-D --model-file /data/DAv2s/depth_anything_v2_s.onnx " +
		"--board th1520 " +
		"--quantization-scheme int8_asym_w_sym " +
		"--calibrate-dataset /data/calib/calibration_list.txt " +
		"--input-name image " +
		"--input-shape 1 3 392 644 " +
		"--output-name depth " +
		"--data-mean 123.675 116.28 103.53 " +
		"--data-scale 0.017125 " +
		"--pixel-format RGB " +
		"--output /workspace/hhb_out"
	if got != want {
		t.Fatalf("argument vector mismatch:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestBuildArgsMinimal(t *testing.T) {
	o := &Options{
		ModelFile: "model.onnx",
		Board:     "c920",
		OutputDir: "out",
	}

	got := strings.Join(BuildArgs(o), " ")
	want := "-D --model-file model.onnx --board c920 --output out"
	if got != want {
		t.Fatalf("argument vector mismatch:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestBuildArgsMultipleOutputNames(t *testing.T) {
	o := &Options{
		ModelFile: "yolov5n.onnx",
		Board:     "c920",
		OutputDir: "out",
		OutputNames: []string{
			"/model.24/m.0/Conv_output_0",
			"/model.24/m.1/Conv_output_0",
			"/model.24/m.2/Conv_output_0",
		},
	}

	args := BuildArgs(o)
	joined := ""
	for i, a := range args {
		if a == "--output-name" {
			joined = args[i+1]
			break
		}
	}
	want := "/model.24/m.0/Conv_output_0;/model.24/m.1/Conv_output_0;/model.24/m.2/Conv_output_0"
	if joined != want {
		t.Fatalf("expected semicolon-joined output names, got %q", joined)
	}
}

func TestConvertExtraParams(t *testing.T) {
	got := convertExtraParams([]string{
		"--without-preprocess",
		"fuseConv=1",
		"matrix_extension=0.5",
		"flagOnly=",
		"garbage",
	})
	want := []string{
		"--without-preprocess",
		"--fuse-conv", "1",
		"--matrix-extension", "0.5",
		"--flag-only",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConvertToFlagName(t *testing.T) {
	cases := map[string]string{
		"fuseConv":         "fuse-conv",
		"fuse_conv":        "fuse-conv",
		"trace":            "trace",
		"MatrixExtension":  "matrix-extension",
		"already-kebab":    "already-kebab",
	}
	for in, want := range cases {
		if got := convertToFlagName(in); got != want {
			t.Fatalf("convertToFlagName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOptionsFromProfileCopiesSlices(t *testing.T) {
	p := &models.Profile{
		ID:           "test",
		ModelFile:    "test/model.onnx",
		Board:        "c920",
		InputShape:   []int{1, 3, 224, 224},
		DataMean:     []float64{0, 0, 0},
		DataScale:    1,
		Quantization: "int8_asym",
		PixelFormat:  "RGB",
	}

	o := OptionsFromProfile(p)
	o.InputShape[0] = 99
	o.DataMean[0] = 99

	if p.InputShape[0] != 1 || p.DataMean[0] != 0 {
		t.Fatalf("options must not alias the profile slices")
	}
}

func TestCommandLine(t *testing.T) {
	o := &Options{ModelFile: "m.onnx", Board: "c906", OutputDir: "out"}
	got := CommandLine(o)
	if !strings.HasPrefix(got, "hhb -D --model-file m.onnx") {
		t.Fatalf("unexpected command line: %s", got)
	}
}
