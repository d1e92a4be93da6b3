package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/workbench"
)

// LogsOptions holds options for the logs command
type LogsOptions struct {
	*GlobalOptions

	// Follow continues streaming logs in real-time
	Follow bool
}

// NewLogsCommand creates the logs command.
//
// The logs command prints the workbench container output, which is
// where long-running conversions started inside the shell land after
// the operator detaches.
//
// Usage:
//
//	svthhb logs [OPTIONS]
//
// Examples:
//
//	# Show existing logs
//	svthhb logs
//
//	# Follow logs in real-time (press Ctrl+C to stop)
//	svthhb logs -f
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for viewing workbench logs
func NewLogsCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &LogsOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View workbench container logs",
		Long: `View logs from the workbench container.

By default, shows existing logs and exits. Use -f/--follow to stream
logs in real-time.`,
		Example: `  # Show existing logs
  svthhb logs

  # Follow logs in real-time (press Ctrl+C to stop)
  svthhb logs -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false,
		"follow log output (stream logs in real-time)")

	return cmd
}

// runLogs executes the logs command logic
func runLogs(opts *LogsOptions) error {
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
		return fmt.Errorf("workbench %s does not exist (create it with 'svthhb shell')", cfg.ContainerName)
	}

	if err := wb.Logs(ctx, status.ContainerID, os.Stdout, opts.Follow); err != nil {
		// Ctrl+C while following is a normal way to leave.
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
