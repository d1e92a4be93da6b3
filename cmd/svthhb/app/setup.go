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

// SetupOptions holds options for the setup command
type SetupOptions struct {
	*GlobalOptions

	// HHBVersion pins the HHB wheel version baked into the image
	HHBVersion string

	// NoBuild skips the compose image build
	NoBuild bool

	// NoCache disables the Docker build cache
	NoCache bool

	// Prune removes dangling build cache after the build
	Prune bool

	// Yes skips confirmation prompts
	Yes bool
}

// NewSetupCommand creates the setup command.
//
// The setup command provisions the workspace for the workbench: it
// writes the compose .env file with the caller's UID/GID so files
// created inside the container are owned by the operator, and builds the
// workbench image through docker compose.
//
// Usage:
//
//	svthhb setup [OPTIONS]
//
// Examples:
//
//	# Provision .env and build the image
//	svthhb setup
//
//	# Rebuild from scratch and prune dangling build cache
//	svthhb setup --no-cache --prune
//
//	# Only refresh .env, skip the build
//	svthhb setup --no-build
//
// Parameters:
//   - globalOpts: Global options shared across commands
//
// Returns:
//   - A configured cobra.Command for workspace provisioning
func NewSetupCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &SetupOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the workspace and build the workbench image",
		Long: `Provision the workspace for the HHB workbench.

Setup performs three steps:
  1. Write USER_ID and GROUP_ID of the calling user into the .env file
     (docker compose substitutes them into the image build so the
     container user matches the host user)
  2. Create the data directory shared with the workbench
  3. Build the workbench image with docker compose

Existing .env entries are updated in place; unknown keys and comments
are preserved. Toolchain defaults (TOOLROOT, RISCV_CFLAGS,
ZSTD_LIB_DIR, DATA_DIR) are only written when missing so local edits
survive re-runs.`,
		Example: `  # Provision .env and build the image
  svthhb setup

  # Rebuild from scratch and prune dangling build cache
  svthhb setup --no-cache --prune`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(opts)
		},
	}

	cmd.Flags().StringVar(&opts.HHBVersion, "hhb-version", "",
		fmt.Sprintf("HHB wheel version to install (default: %s)", config.DefaultHHBVersion))
	cmd.Flags().BoolVar(&opts.NoBuild, "no-build", false,
		"write .env and directories only, skip the image build")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false,
		"build the image without the Docker build cache")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false,
		"prune dangling build cache after the build")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false,
		"answer yes to confirmation prompts")

	return cmd
}

// runSetup executes the setup command logic
func runSetup(opts *SetupOptions) error {
	cfg, err := getConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	if err := provisionEnvFile(cfg, opts.HHBVersion); err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	if opts.NoBuild {
		fmt.Println("Skipping image build (--no-build)")
		return nil
	}

	if _, err := os.Stat(cfg.ComposeFile); err != nil {
		return fmt.Errorf("compose file %s not found; run setup from the project checkout or pass --workspace", cfg.ComposeFile)
	}

	ctx := contextWithInterrupt()
	progress := workbench.StdoutProgress(os.Stdout)
	if err := workbench.ComposeBuild(ctx, cfg.ComposeFile, cfg.EnvFile, opts.NoCache, progress); err != nil {
		return err
	}

	if opts.Prune {
		if err := runBuilderPrune(ctx, cfg, opts.Yes); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println("Workbench image ready. Enter it with: svthhb shell")
	return nil
}

// runBuilderPrune prunes the Docker build cache after confirmation.
// Declining is not an error; setup still finishes normally.
func runBuilderPrune(ctx context.Context, cfg *config.Config, yes bool) error {
	if !yes {
		ok, err := confirmAction("Prune dangling Docker build cache?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Prune skipped")
			return nil
		}
	}

	wb, err := workbench.New(cfg)
	if err != nil {
		return err
	}
	reclaimed, err := wb.BuilderPrune(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Build cache pruned: %s reclaimed\n", reclaimed)
	return nil
}

// provisionEnvFile writes identity and toolchain settings into the
// compose .env file.
//
// USER_ID, GROUP_ID and HHB_VERSION are authoritative and always
// updated. The toolchain keys are defaults the operator may edit, so
// they are only written when absent.
//
// Parameters:
//   - cfg: Application configuration
//   - hhbVersion: Version override from the flag ("" keeps the current
//     value or the built-in default)
//
// Returns:
//   - nil on success
//   - Error if the file cannot be read or written
func provisionEnvFile(cfg *config.Config, hhbVersion string) error {
	env, err := config.LoadEnvFile(cfg.EnvFile)
	if err != nil {
		return err
	}

	uid := os.Getuid()
	gid := os.Getgid()

	env.Set(config.EnvKeyUserID, strconv.Itoa(uid))
	env.Set(config.EnvKeyGroupID, strconv.Itoa(gid))

	if hhbVersion != "" {
		env.Set(config.EnvKeyHHBVersion, hhbVersion)
	} else {
		env.SetDefault(config.EnvKeyHHBVersion, config.DefaultHHBVersion)
	}

	env.SetDefault(config.EnvKeyToolRoot, config.DefaultToolRoot)
	env.SetDefault(config.EnvKeyCFlags, "")
	env.SetDefault(config.EnvKeyZstdLibDir, "")
	env.SetDefault(config.EnvKeyDataDir, cfg.DataDir)

	if err := env.Save(); err != nil {
		return err
	}

	logger.Info("Wrote %s (USER_ID=%d GROUP_ID=%d)", env.Path(), uid, gid)
	fmt.Printf("Provisioned %s for uid=%d gid=%d\n", env.Path(), uid, gid)
	return nil
}
