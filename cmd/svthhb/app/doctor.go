package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/toolchain"
)

// DoctorOptions holds options for the doctor command
type DoctorOptions struct {
	*GlobalOptions
}

// NewDoctorCommand creates the doctor command.
//
// The doctor command probes the host prerequisites (docker, the compose
// plugin, the cross toolchain) and reports what is missing. It exists
// because a half-configured host otherwise fails deep inside a build
// with an unhelpful error.
//
// Usage:
//
//	svthhb doctor
//
// Examples:
//
//	# Check host prerequisites
//	svthhb doctor
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for prerequisite checks
func NewDoctorCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &DoctorOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check host prerequisites",
		Long: `Probe the host for everything the workbench needs.

Checks performed:
  - docker CLI is installed
  - the Docker daemon is reachable
  - the compose plugin is available
  - the Xuantie cross compiler under TOOLROOT (warning only; it
    normally lives inside the workbench)
  - the cross-built libzstd under ZSTD_LIB_DIR

The command exits non-zero when a required check fails. Warnings do
not affect the exit code.`,
		Example: `  # Check host prerequisites
  svthhb doctor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(opts)
		},
	}

	return cmd
}

// runDoctor executes the doctor command logic
func runDoctor(opts *DoctorOptions) error {
	ctx := contextWithInterrupt()
	report := toolchain.Probe(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
	for _, c := range report.Checks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, statusGlyph(c.Status), c.Detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !report.Healthy() {
		return fmt.Errorf("some prerequisites are missing")
	}

	fmt.Println()
	fmt.Println("All checks passed")
	return nil
}

// statusGlyph renders a probe status for the table
func statusGlyph(s toolchain.CheckStatus) string {
	switch s {
	case toolchain.StatusOK:
		return "ok"
	case toolchain.StatusWarn:
		return "warn"
	default:
		return "FAIL"
	}
}
