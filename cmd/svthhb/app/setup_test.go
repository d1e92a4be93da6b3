package app

import (
	"context"
	"testing"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
)

func TestBuilderPruneDeclinedIsNotAnError(t *testing.T) {
	orig := confirmAction
	confirmAction = func(prompt string) (bool, error) {
		return false, nil
	}
	defer func() { confirmAction = orig }()

	cfg := config.NewConfigWithWorkspace(t.TempDir())

	// Declining must return nil so setup goes on to print the final
	// hint instead of bailing out mid-run.
	if err := runBuilderPrune(context.Background(), cfg, false); err != nil {
		t.Fatalf("declined prune must not fail setup: %v", err)
	}
}
