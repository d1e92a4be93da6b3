// Command svthhb manages the HHB cross-compilation workbench.
//
// It provisions the Docker-based development environment for converting
// ONNX models with the HHB compiler and cross-compiling the generated
// sources for Xuantie RISC-V boards.
package main

import (
	"os"

	"github.com/RISCY-SVT/svt-hhb3/cmd/svthhb/app"
)

func main() {
	cmd := app.NewSvthhbCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
