// Package config provides configuration management for the svthhb application.
//
// This package handles all configuration-related functionality including:
//   - Workbench container defaults (name, image, compose file)
//   - Storage paths (workspace, data directory)
//   - The .env file consumed by docker compose variable substitution
//   - Optional YAML overrides for model conversion profiles
//
// The configuration is designed around the docker compose workflow: the
// authoritative state shared with compose lives in the .env file, and this
// package is the only place that reads or writes it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultContainerName is the name of the HHB workbench container.
	// A single workbench per workspace keeps the compose service and the
	// CLI pointing at the same container.
	DefaultContainerName = "hhb-workbench"

	// DefaultImageName is the workbench image built by docker compose.
	DefaultImageName = "svt/hhb-workbench"

	// DefaultHHBVersion is the pinned HHB wheel version installed into the
	// workbench image. Overridable via HHB_VERSION in the .env file.
	DefaultHHBVersion = "2.6.11"

	// DefaultEnvFileName is the compose environment file name.
	DefaultEnvFileName = ".env"

	// DefaultComposeFileName is the compose definition file name.
	DefaultComposeFileName = "docker-compose.yml"

	// DefaultDataDirName is the host directory bind-mounted into the
	// workbench for models, calibration sets and build artifacts.
	DefaultDataDirName = "data"

	// DefaultToolRoot is the default Xuantie cross-toolchain install root
	// inside the workbench. Overridable via TOOLROOT.
	DefaultToolRoot = "/opt/riscv"

	// WorkbenchWorkspaceDir is the workspace mount point inside the
	// workbench container.
	WorkbenchWorkspaceDir = "/workspace"

	// WorkbenchDataDir is the data mount point inside the workbench
	// container.
	WorkbenchDataDir = "/data"
)

// Environment variable keys written into the .env file. The names match
// the variables referenced by docker-compose.yml and the Dockerfiles, so
// renaming any of them is a breaking change for the compose side.
const (
	EnvKeyUserID     = "USER_ID"
	EnvKeyGroupID    = "GROUP_ID"
	EnvKeyHHBVersion = "HHB_VERSION"
	EnvKeyToolRoot   = "TOOLROOT"
	EnvKeyCFlags     = "RISCV_CFLAGS"
	EnvKeyZstdLibDir = "ZSTD_LIB_DIR"
	EnvKeyDataDir    = "DATA_DIR"
)

// Config represents the complete application configuration.
//
// The workspace directory anchors everything else: the .env file, the
// compose file and the data directory all live under it by default.
type Config struct {
	// Workspace is the absolute path of the project workspace. This is
	// the directory bind-mounted into the workbench at /workspace.
	Workspace string

	// EnvFile is the absolute path of the compose .env file.
	EnvFile string

	// ComposeFile is the absolute path of the docker-compose.yml file.
	ComposeFile string

	// DataDir is the absolute path of the host data directory shared
	// with the workbench at /data.
	DataDir string

	// ContainerName is the workbench container name.
	ContainerName string

	// Image is the workbench image reference.
	Image string
}

// NewDefaultConfig creates a configuration anchored at the current
// working directory.
//
// The returned configuration uses:
//   - Workspace: the current directory
//   - EnvFile: <workspace>/.env
//   - ComposeFile: <workspace>/docker-compose.yml
//   - DataDir: <workspace>/data
//
// Returns:
//   - A pointer to a Config with default values
//   - Error if the current directory cannot be resolved
func NewDefaultConfig() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return NewConfigWithWorkspace(cwd), nil
}

// NewConfigWithWorkspace creates a configuration anchored at a custom
// workspace directory.
//
// Useful for testing with isolated environments and for running the CLI
// from outside the project checkout.
//
// Parameters:
//   - workspace: Workspace directory path (relative paths are made absolute)
//
// Returns:
//   - A pointer to a Config anchored at the given workspace
func NewConfigWithWorkspace(workspace string) *Config {
	if abs, err := filepath.Abs(workspace); err == nil {
		workspace = abs
	}

	return &Config{
		Workspace:     workspace,
		EnvFile:       filepath.Join(workspace, DefaultEnvFileName),
		ComposeFile:   filepath.Join(workspace, DefaultComposeFileName),
		DataDir:       filepath.Join(workspace, DefaultDataDirName),
		ContainerName: DefaultContainerName,
		Image:         DefaultImageName,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
//
// Directories are created with 0755 permissions (rwxr-xr-x). Currently the
// only directory the CLI owns is the data directory; the workspace itself
// must already exist.
//
// Returns:
//   - nil if all directories were created successfully or already exist
//   - error if any directory creation fails
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
