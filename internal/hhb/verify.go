// Package hhb - verify.go checks conversion output artifacts.
package hhb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// DefaultArtifacts returns the files every hhb deploy run is expected to
// produce regardless of model or board.
func DefaultArtifacts() []string {
	return []string{"model.c", "model.params"}
}

// VerifyArtifacts checks that every expected file exists under dir and is
// non-empty.
//
// hhb exits zero in some failure modes (e.g., codegen partially written
// before an importer warning) while leaving truncated or empty outputs,
// so a plain exit-code check is not enough. All problems are collected
// before returning so the operator sees the full damage in one message.
//
// Parameters:
//   - dir: Conversion output directory
//   - expected: File names relative to dir (absolute entries are checked
//     as given)
//
// Returns:
//   - nil if every artifact exists and has non-zero size
//   - Error listing every missing or empty artifact
func VerifyArtifacts(dir string, expected []string) error {
	var problems []string

	for _, name := range expected {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}

		info, err := os.Stat(path)
		switch {
		case err != nil:
			problems = append(problems, fmt.Sprintf("%s: missing", name))
		case info.IsDir():
			problems = append(problems, fmt.Sprintf("%s: is a directory", name))
		case info.Size() == 0:
			problems = append(problems, fmt.Sprintf("%s: empty", name))
		default:
			logger.Debug("Artifact OK: %s (%d bytes)", path, info.Size())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d artifact check(s) failed in %s: %s",
			len(problems), dir, strings.Join(problems, "; "))
	}

	return nil
}
