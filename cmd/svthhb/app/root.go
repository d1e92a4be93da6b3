// Package app provides the command-line interface implementation for
// svthhb.
//
// This package contains all CLI commands and their implementations,
// following the Kubernetes CLI architecture pattern with cobra. Commands
// are organized hierarchically with a root command and subcommands.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
	"github.com/RISCY-SVT/svt-hhb3/internal/models"

	// Register built-in model profiles.
	_ "github.com/RISCY-SVT/svt-hhb3/internal/models/profiles"
)

const (
	// cliName is the name of the CLI application
	cliName = "svthhb"

	// cliDescription is the short description shown in help text
	cliDescription = "svthhb - HHB workbench for Xuantie RISC-V targets"
)

// GlobalOptions holds options that are common to all commands
type GlobalOptions struct {
	// Workspace overrides the workspace directory (default: current
	// directory)
	Workspace string

	// Verbose enables verbose output
	Verbose bool
}

// NewSvthhbCommand creates the root svthhb command with all subcommands.
//
// The root command provides the main entry point for the CLI. It sets up
// global flags, initializes logging, and registers all subcommands.
//
// Returns:
//   - A configured cobra.Command ready for execution
//
// Example:
//
//	cmd := NewSvthhbCommand()
//	if err := cmd.Execute(); err != nil {
//	    os.Exit(1)
//	}
func NewSvthhbCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   cliName,
		Short: cliDescription,
		Long: `svthhb manages a Docker-based workbench for compiling neural networks
with the HHB compiler and cross-compiling the generated sources for
Xuantie RISC-V boards (TH1520/C920 class SoCs).

Typical workflow:

  svthhb setup          provision .env and build the workbench image
  svthhb shell          enter the workbench container
  svthhb calib          build a calibration image set
  svthhb convert        run hhb on an ONNX model
  svthhb compile        cross-compile the generated model sources

All file paths are anchored at the workspace directory (the current
directory unless --workspace is given), which is bind-mounted into the
workbench at /workspace.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(opts.Verbose)
		},
	}

	// Add global flags
	cmd.PersistentFlags().StringVarP(&opts.Workspace, "workspace", "w", "",
		"workspace directory (default: current directory)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	cmd.AddCommand(
		NewSetupCommand(opts),
		NewShellCommand(opts),
		NewPsCommand(opts),
		NewStopCommand(opts),
		NewRmCommand(opts),
		NewLogsCommand(opts),
		NewConvertCommand(opts),
		NewCompileCommand(opts),
		NewCalibCommand(opts),
		NewModelsCommand(opts),
		NewDoctorCommand(opts),
		NewVersionCommand(opts),
	)

	return cmd
}

// getConfig resolves the application configuration for a command.
//
// The workspace is taken from the --workspace flag when given, otherwise
// the current working directory is used.
//
// Parameters:
//   - opts: Global options containing the workspace override
//
// Returns:
//   - Resolved configuration
//   - Error if the working directory cannot be determined
func getConfig(opts *GlobalOptions) (*config.Config, error) {
	if opts.Workspace != "" {
		return config.NewConfigWithWorkspace(opts.Workspace), nil
	}
	return config.NewDefaultConfig()
}

// getRegistry returns the model profile registry with workspace
// overrides from profiles.yaml applied.
//
// Parameters:
//   - cfg: Application configuration (locates profiles.yaml)
//
// Returns:
//   - Registry ready for lookups
//   - Error if profiles.yaml exists but cannot be parsed or applied
func getRegistry(cfg *config.Config) (*models.Registry, error) {
	registry := models.GetDefaultRegistry()

	overrides, err := cfg.LoadProfileOverrides("")
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := registry.ApplyOverrides(overrides); err != nil {
			return nil, fmt.Errorf("failed to apply profile overrides: %w", err)
		}
		logger.Debug("Applied %d profile override(s) from profiles.yaml", len(overrides))
	}

	return registry, nil
}

// confirmAction asks the user for a yes/no confirmation on the terminal.
//
// Used before destructive operations (container removal, cache prune).
// Interrupt (Ctrl+C) and EOF are treated as "no".
//
// Parameters:
//   - prompt: Question shown to the user
//
// Returns:
//   - true if the user answered yes
//   - Error if the terminal cannot be read
var confirmAction = func(prompt string) (bool, error) {
	rl, err := readline.New(prompt + " [y/N]: ")
	if err != nil {
		return false, fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		// ErrInterrupt or io.EOF - treat as declined
		return false, nil
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// contextWithInterrupt returns a context cancelled on SIGINT/SIGTERM.
//
// Long-running child processes (compose builds, hhb runs, the cross
// compiler) are killed through this context so Ctrl+C does not leave
// them orphaned.
func contextWithInterrupt() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// checkError prints an error and exits if err is not nil.
//
// This is a convenience function for fatal error handling in CLI commands.
// It prints the error to stderr and exits with code 1.
//
// Parameters:
//   - err: The error to check
func checkError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
