package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X .../app.version=1.2.0 -X .../app.gitCommit=$(git rev-parse --short HEAD)"
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// VersionOptions holds options for the version command
type VersionOptions struct {
	*GlobalOptions
}

// NewVersionCommand creates the version command.
//
// The version command displays the CLI build information.
//
// Usage:
//
//	svthhb version
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for displaying version info
func NewVersionCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &VersionOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(opts)
		},
	}

	return cmd
}

// runVersion executes the version command logic
func runVersion(opts *VersionOptions) error {
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	return nil
}
