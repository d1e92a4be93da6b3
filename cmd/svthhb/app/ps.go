package app

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/workbench"
)

// PsOptions holds options for the ps command
type PsOptions struct {
	*GlobalOptions
}

// NewPsCommand creates the ps command.
//
// The ps command lists workbench containers, similar to 'docker ps'. It
// discovers containers by label, so workbenches created from other
// workspaces show up too.
//
// Usage:
//
//	svthhb ps
//
// Examples:
//
//	# List workbench containers
//	svthhb ps
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for listing workbenches
func NewPsCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &PsOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:     "ps",
		Short:   "List workbench containers",
		Aliases: []string{"list"},
		Long: `List all workbench containers with their state and configuration.

Containers are discovered by label, so every workbench on this Docker
daemon is shown regardless of which workspace created it. Both running
and stopped workbenches are included.`,
		Example: `  # List workbench containers
  svthhb ps`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPs(opts)
		},
	}

	return cmd
}

// runPs executes the ps command logic
func runPs(opts *PsOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	wb, err := workbench.New(cfg)
	if err != nil {
		return err
	}

	ctx := contextWithInterrupt()

	summaries, err := wb.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workbenches: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No workbench containers found")
		fmt.Println()
		fmt.Println("Create one with: svthhb shell")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CONTAINER ID\tNAME\tSTATE\tHHB\tCREATED\tWORKSPACE")

	for _, s := range summaries {
		state := string(s.State)
		if s.Detail != "" {
			state = fmt.Sprintf("%s (%s)", state, s.Detail)
		}
		created := units.HumanDuration(time.Since(s.CreatedAt)) + " ago"
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			workbench.ShortID(s.ContainerID), s.Name, state, s.HHBVersion, created, s.Workspace)
	}

	return w.Flush()
}
