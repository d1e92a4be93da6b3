package profiles

import (
	"github.com/RISCY-SVT/svt-hhb3/internal/models"
)

// dav2PatchSize is the DINOv2 backbone patch size. Input height and width
// must be multiples of this value.
const dav2PatchSize = 14

// DepthAnythingV2S is the small Depth-Anything-V2 monocular depth model.
//
// The exported ONNX replaces bicubic interpolation with bilinear and uses
// the tanh GELU approximation for compatibility with the HHB importer.
// The 392x644 input geometry is the largest patch-aligned size that fits
// the TH1520 memory budget at 16:9-ish aspect.
var DepthAnythingV2S = &models.Profile{
	ID:          "depth-anything-v2-s",
	DisplayName: "Depth-Anything-V2 Small",
	Description: "Monocular depth estimation, ViT-S backbone, 392x644 input",

	ModelFile:  "DAv2s/depth_anything_v2_s.onnx",
	InputName:  "image",
	InputShape: []int{1, 3, 392, 644},

	// ImageNet normalization folded into the HHB preprocessing step:
	// mean per channel, single scale approximating 1/(255*std).
	DataMean:  []float64{123.675, 116.28, 103.53},
	DataScale: 0.017125,

	Quantization: "int8_asym",
	PixelFormat:  "RGB",
	Board:        "c920",

	CalibrationWidth:  644,
	CalibrationHeight: 392,

	ExpectedArtifacts: []string{
		"model.c",
		"model.params",
		"main.c",
	},
}

func init() {
	h, w := models.RoundToPatchMultiple(DepthAnythingV2S.InputShape[2], DepthAnythingV2S.InputShape[3], dav2PatchSize)
	DepthAnythingV2S.InputShape[2] = h
	DepthAnythingV2S.InputShape[3] = w
	models.RegisterProfile(DepthAnythingV2S)
}
