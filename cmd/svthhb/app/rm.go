package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/workbench"
)

// RmOptions holds options for the rm command
type RmOptions struct {
	*GlobalOptions

	// Yes skips the confirmation prompt
	Yes bool
}

// NewRmCommand creates the rm command.
//
// The rm command removes the workbench container, running or not. The
// workspace and data directory on the host are never touched; removal
// only affects the container.
//
// Usage:
//
//	svthhb rm [OPTIONS]
//
// Examples:
//
//	# Remove the workbench container
//	svthhb rm
//
//	# Remove without confirmation
//	svthhb rm --yes
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for removing the workbench
func NewRmCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &RmOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Remove the workbench container",
		Long: `Remove the workbench container.

A running workbench is stopped first. Host files (the workspace and
the data directory) are not affected; everything of value lives on the
bind mounts, so removal is safe and 'svthhb shell' recreates the
container on demand.`,
		Example: `  # Remove the workbench container
  svthhb rm

  # Remove without confirmation
  svthhb rm --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false,
		"remove without confirmation")

	return cmd
}

// runRm executes the rm command logic
func runRm(opts *RmOptions) error {
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

	if status.State == workbench.StateAbsent {
		fmt.Printf("Workbench %s does not exist\n", cfg.ContainerName)
		return nil
	}

	if !opts.Yes {
		prompt := fmt.Sprintf("Remove workbench container %s?", cfg.ContainerName)
		if status.State == workbench.StateRunning {
			prompt = fmt.Sprintf("Workbench %s is running. Stop and remove it?", cfg.ContainerName)
		}
		ok, err := confirmAction(prompt)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Removal cancelled")
			return nil
		}
	}

	if err := wb.Remove(ctx, status.ContainerID); err != nil {
		return fmt.Errorf("failed to remove workbench: %w", err)
	}

	fmt.Printf("Removed workbench: %s\n", cfg.ContainerName)
	return nil
}
