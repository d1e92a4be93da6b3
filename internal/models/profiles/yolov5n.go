// Package profiles provides built-in model conversion profiles.
package profiles

import (
	"github.com/RISCY-SVT/svt-hhb3/internal/models"
)

// YOLOv5n is the nano YOLOv5 object detection model.
//
// The exported graph is post-processed to expose the three raw Conv
// outputs of the detection head (one per stride) instead of the combined
// post-NMS output, because the on-device pipeline runs decode and NMS in
// C against the SHL runtime.
var YOLOv5n = &models.Profile{
	ID:          "yolov5n",
	DisplayName: "YOLOv5n",
	Description: "YOLOv5 nano object detector, 640x640 input, raw detection head outputs",

	ModelFile:  "yolov5n/yolov5n_out3.onnx",
	InputName:  "images",
	InputShape: []int{1, 3, 640, 640},

	// Pixels are fed as x/255 with no mean subtraction.
	DataMean:  []float64{0, 0, 0},
	DataScale: 1.0 / 255.0,

	Quantization: "int8_asym",
	PixelFormat:  "RGB",
	Board:        "c920",

	CalibrationWidth:  640,
	CalibrationHeight: 640,

	OutputNames: []string{
		"/model.24/m.0/Conv_output_0",
		"/model.24/m.1/Conv_output_0",
		"/model.24/m.2/Conv_output_0",
	},

	ExpectedArtifacts: []string{
		"model.c",
		"model.params",
		"main.c",
	},
}

func init() {
	models.RegisterProfile(YOLOv5n)
}
