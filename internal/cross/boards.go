// Package cross provides RISC-V cross-compilation for HHB-generated sources.
//
// This package owns the per-board toolchain knowledge: which Xuantie CPU a
// board carries, the exact -march/-mabi/-mtune strings the vendor kernels
// are built for, and the link line against the SHL kernel library. The
// flag strings are fixed per board; getting them wrong produces binaries
// that SIGILL on target, so they are data here rather than user input.
package cross

import (
	"fmt"
	"sort"
	"strings"
)

// Board describes a supported compilation target.
type Board struct {
	// Name is the board identifier used on the command line and passed
	// to hhb --board (e.g., "th1520").
	Name string

	// CPU is the Xuantie core the board carries (e.g., "c920").
	CPU string

	// March is the -march string for the core, including vendor
	// extensions (e.g., "rv64gcv0p7_zfh_xtheadc").
	March string

	// Mabi is the -mabi string.
	Mabi string

	// Mtune is the -mtune string.
	Mtune string

	// SHLTarget is the SHL (CSI-NN2) library variant directory name the
	// link line points into (e.g., "th1520", "c920").
	SHLTarget string

	// Description is shown by the doctor and models commands.
	Description string
}

// boards is the registry of supported boards, keyed by name.
//
// TH1520 carries a C910x4 cluster plus the NPU; its CPU-side codegen uses
// the C920 flags because the vendor math library is built for the vector
// 0.7.1 profile shared by both cores.
var boards = map[string]Board{
	"th1520": {
		Name:        "th1520",
		CPU:         "c920",
		March:       "rv64gcv0p7_zfh_xtheadc",
		Mabi:        "lp64d",
		Mtune:       "c920",
		SHLTarget:   "th1520",
		Description: "T-Head TH1520 SoC (C910x4 + NPU), LicheePi 4A class boards",
	},
	"c920": {
		Name:        "c920",
		CPU:         "c920",
		March:       "rv64gcv0p7_zfh_xtheadc",
		Mabi:        "lp64d",
		Mtune:       "c920",
		SHLTarget:   "c920",
		Description: "Xuantie C920 CPU target (vector 0.7.1)",
	},
	"c906": {
		Name:        "c906",
		CPU:         "c906",
		March:       "rv64gcv0p7_zfh_xtheadc",
		Mabi:        "lp64d",
		Mtune:       "c906",
		SHLTarget:   "c906",
		Description: "Xuantie C906 CPU target (D1 class boards)",
	},
	"c908": {
		Name:        "c908",
		CPU:         "c908",
		March:       "rv64gcv_zfh_xtheadc",
		Mabi:        "lp64d",
		Mtune:       "c908",
		SHLTarget:   "c908",
		Description: "Xuantie C908 CPU target (vector 1.0)",
	},
}

// GetBoard looks up a board by name.
//
// Parameters:
//   - name: Board identifier (case-insensitive)
//
// Returns:
//   - Board definition
//   - Error listing the supported boards if the name is unknown
func GetBoard(name string) (Board, error) {
	board, ok := boards[strings.ToLower(name)]
	if !ok {
		return Board{}, fmt.Errorf("unsupported board %q (supported: %s)",
			name, strings.Join(SupportedBoards(), ", "))
	}
	return board, nil
}

// SupportedBoards returns the sorted list of board names.
func SupportedBoards() []string {
	names := make([]string, 0, len(boards))
	for name := range boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupportedBoard reports whether name identifies a known board.
func IsSupportedBoard(name string) bool {
	_, ok := boards[strings.ToLower(name)]
	return ok
}
