package app

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/hhb"
)

// ModelsOptions holds options for the models command
type ModelsOptions struct {
	*GlobalOptions
}

// NewModelsCommand creates the models command.
//
// The models command lists the available model profiles, or shows the
// full configuration of one profile including the hhb command line it
// would produce.
//
// Usage:
//
//	svthhb models [PROFILE]
//
// Examples:
//
//	# List available profiles
//	svthhb models
//
//	# Show one profile in detail
//	svthhb models yolov5n
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for inspecting profiles
func NewModelsCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ModelsOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "models [PROFILE]",
		Short: "List or inspect model profiles",
		Long: `List the available model profiles, or show one in detail.

Profiles bundle the conversion defaults of a model: file, input
geometry, preprocessing, quantization scheme and target board. Built-in
profiles can be adjusted, and new ones added, through a profiles.yaml
file in the workspace.

With a PROFILE argument, the full configuration is shown together with
the hhb command line 'svthhb convert' would run for it.`,
		Example: `  # List available profiles
  svthhb models

  # Show one profile in detail
  svthhb models yolov5n`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runModelsShow(opts, args[0])
			}
			return runModelsList(opts)
		},
	}

	return cmd
}

// runModelsList prints the profile table
func runModelsList(opts *ModelsOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	registry, err := getRegistry(cfg)
	if err != nil {
		return err
	}

	profiles := registry.List()
	if len(profiles) == 0 {
		fmt.Println("No model profiles available")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBOARD\tQUANTIZATION\tINPUT\tMODEL FILE")

	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.DisplayName, p.Board, p.Quantization,
			formatShape(p.InputShape), p.ModelFile)
	}

	return w.Flush()
}

// runModelsShow prints one profile in detail
func runModelsShow(opts *ModelsOptions, id string) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	registry, err := getRegistry(cfg)
	if err != nil {
		return err
	}

	p, err := registry.Get(id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:             %s\n", p.ID)
	fmt.Printf("Name:           %s\n", p.DisplayName)
	if p.Description != "" {
		fmt.Printf("Description:    %s\n", p.Description)
	}
	fmt.Printf("Model file:     %s\n", p.ModelFile)
	fmt.Printf("Input:          %s %s\n", p.InputName, formatShape(p.InputShape))
	fmt.Printf("Preprocessing:  mean %v, scale %g, %s\n", p.DataMean, p.DataScale, p.PixelFormat)
	fmt.Printf("Quantization:   %s\n", p.Quantization)
	fmt.Printf("Board:          %s\n", p.Board)
	fmt.Printf("Calibration:    %dx%d\n", p.CalibrationWidth, p.CalibrationHeight)
	if len(p.OutputNames) > 0 {
		fmt.Printf("Outputs:        %s\n", strings.Join(p.OutputNames, ", "))
	}
	if len(p.ExpectedArtifacts) > 0 {
		fmt.Printf("Artifacts:      %s\n", strings.Join(p.ExpectedArtifacts, ", "))
	}
	if len(p.ExtraArgs) > 0 {
		fmt.Printf("Extra args:     %s\n", strings.Join(p.ExtraArgs, " "))
	}

	fmt.Println()
	fmt.Printf("Command line:   %s\n", hhb.CommandLine(hhb.OptionsFromProfile(p)))

	return nil
}

// formatShape renders an input shape as "1x3x640x640"
func formatShape(shape []int) string {
	if len(shape) == 0 {
		return "-"
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, "x")
}
