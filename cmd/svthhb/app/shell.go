package app

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
	"github.com/RISCY-SVT/svt-hhb3/internal/workbench"
)

// ShellOptions holds options for the shell command
type ShellOptions struct {
	*GlobalOptions

	// Publish lists extra port publish specs (docker -p syntax)
	Publish []string

	// Recreate forces removal and recreation even when running
	Recreate bool
}

// NewShellCommand creates the shell command.
//
// The shell command is the workbench launcher: it resolves the container
// state and either attaches to a running workbench, recreates a stopped
// one, or creates a fresh one, then drops the user into an interactive
// bash inside the container.
//
// Usage:
//
//	svthhb shell [OPTIONS]
//
// Examples:
//
//	# Enter the workbench (create it if needed)
//	svthhb shell
//
//	# Publish a port for Netron while entering
//	svthhb shell -p 127.0.0.1:8080:8080
//
//	# Force recreation (pick up .env or image changes)
//	svthhb shell --recreate
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for entering the workbench
func NewShellCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ShellOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Enter the workbench container",
		Long: `Enter an interactive bash shell in the workbench container.

The launcher resolves the container state and acts accordingly:
  - running: attach a new shell to the existing container
  - stopped: remove and recreate it, then attach (recreation rather
    than restart so .env and image changes always take effect)
  - absent:  create it from the workbench image, start it, attach

The workspace is mounted at /workspace and the data directory at /data.
Exiting the shell leaves the container running; use 'svthhb stop' to
stop it.`,
		Example: `  # Enter the workbench
  svthhb shell

  # Publish a port for Netron
  svthhb shell -p 127.0.0.1:8080:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Publish, "publish", "p", nil,
		"publish a container port to the host (docker -p syntax)")
	cmd.Flags().BoolVar(&opts.Recreate, "recreate", false,
		"remove and recreate the container even if it is running")

	return cmd
}

// runShell executes the shell command logic
func runShell(opts *ShellOptions) error {
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
		if opts.Recreate {
			logger.Info("Recreating running workbench %s", cfg.ContainerName)
			if err := wb.Stop(ctx, status.ContainerID); err != nil {
				return err
			}
			if err := wb.Remove(ctx, status.ContainerID); err != nil {
				return err
			}
			if err := createAndStart(ctx, wb, cfg, opts.Publish); err != nil {
				return err
			}
		} else {
			logger.Debug("Workbench %s already running, attaching", cfg.ContainerName)
		}

	case workbench.StateStopped:
		// Stopped containers are recreated instead of restarted so
		// changes to .env or the image are picked up.
		logger.Info("Workbench %s is stopped (%s), recreating", cfg.ContainerName, status.Detail)
		if err := wb.Remove(ctx, status.ContainerID); err != nil {
			return err
		}
		if err := createAndStart(ctx, wb, cfg, opts.Publish); err != nil {
			return err
		}

	case workbench.StateAbsent:
		if err := createAndStart(ctx, wb, cfg, opts.Publish); err != nil {
			return err
		}

	default:
		return fmt.Errorf("workbench %s is in state %s (%s); resolve it manually with docker",
			cfg.ContainerName, status.State, status.Detail)
	}

	return wb.Attach(ctx)
}

// createAndStart creates the workbench container with identity and
// version taken from the .env file, then starts it.
//
// The .env file is the source of truth for UID/GID because the image was
// built with those values; falling back to the current process identity
// covers workspaces where setup was never run.
//
// Parameters:
//   - ctx: Context for cancellation
//   - wb: Workbench manager
//   - cfg: Application configuration
//   - publish: Port publish specs
//
// Returns:
//   - nil on success
//   - Error if the image is missing or creation/start fails
func createAndStart(ctx context.Context, wb *workbench.Workbench, cfg *config.Config, publish []string) error {
	exists, err := workbench.ImageExists(ctx, cfg.Image)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("workbench image %s not found; build it with 'svthhb setup'", cfg.Image)
	}

	env, err := config.LoadEnvFile(cfg.EnvFile)
	if err != nil {
		return err
	}

	params := &workbench.CreateParams{
		UserID:     envInt(env, config.EnvKeyUserID, os.Getuid()),
		GroupID:    envInt(env, config.EnvKeyGroupID, os.Getgid()),
		HHBVersion: envString(env, config.EnvKeyHHBVersion, config.DefaultHHBVersion),
		PortSpecs:  publish,
	}
	if toolroot, ok := env.Get(config.EnvKeyToolRoot); ok && toolroot != "" {
		params.Env = append(params.Env, config.EnvKeyToolRoot+"="+toolroot)
	}
	if cflags, ok := env.Get(config.EnvKeyCFlags); ok && cflags != "" {
		params.Env = append(params.Env, config.EnvKeyCFlags+"="+cflags)
	}
	if zstd, ok := env.Get(config.EnvKeyZstdLibDir); ok && zstd != "" {
		params.Env = append(params.Env, config.EnvKeyZstdLibDir+"="+zstd)
	}

	containerID, err := wb.Create(ctx, params)
	if err != nil {
		return err
	}

	if err := wb.Start(ctx, containerID); err != nil {
		return err
	}

	fmt.Printf("Started workbench %s\n", cfg.ContainerName)
	return nil
}

// envString reads a key from the .env file with a fallback.
func envString(env *config.EnvFile, key, fallback string) string {
	if v, ok := env.Get(key); ok && v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer key from the .env file with a fallback.
// Malformed values fall back silently; setup writes these keys so a bad
// value means the file was hand-edited.
func envInt(env *config.EnvFile, key string, fallback int) int {
	v, ok := env.Get(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("Ignoring malformed %s=%q in %s", key, v, env.Path())
		return fallback
	}
	return n
}
