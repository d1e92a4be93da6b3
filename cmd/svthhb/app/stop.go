package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/workbench"
)

// StopOptions holds options for the stop command
type StopOptions struct {
	*GlobalOptions
}

// NewStopCommand creates the stop command.
//
// The stop command stops the running workbench container. The container
// is kept so 'svthhb shell' can recreate it quickly; use 'svthhb rm' to
// remove it entirely.
//
// Usage:
//
//	svthhb stop
//
// Examples:
//
//	# Stop the workbench
//	svthhb stop
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for stopping the workbench
func NewStopCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &StopOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the workbench container",
		Long: `Stop the workbench container.

The container and its configuration are kept. The next 'svthhb shell'
recreates it, which also picks up any .env or image changes made in
the meantime.`,
		Example: `  # Stop the workbench
  svthhb stop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(opts)
		},
	}

	return cmd
}

// runStop executes the stop command logic
func runStop(opts *StopOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	wb, err := workbench.New(cfg)
	if err != nil {
		return err
	}

	ctx := contextWithInterrupt()

	status, err := wb.Status(ctx)
	if err != nil {
		return err
	}

	switch status.State {
	case workbench.StateRunning:
		if err := wb.Stop(ctx, status.ContainerID); err != nil {
			return fmt.Errorf("failed to stop workbench: %w", err)
		}
		fmt.Printf("Stopped workbench: %s\n", cfg.ContainerName)
	case workbench.StateStopped:
		fmt.Printf("Workbench %s is already stopped\n", cfg.ContainerName)
	case workbench.StateAbsent:
		fmt.Printf("Workbench %s does not exist\n", cfg.ContainerName)
	default:
		return fmt.Errorf("workbench %s is in state %s (%s)", cfg.ContainerName, status.State, status.Detail)
	}

	return nil
}
