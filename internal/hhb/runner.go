// Package hhb - runner.go executes the hhb binary.
package hhb

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// Runner abstracts where the hhb binary executes.
//
// The vendor wheel normally only exists inside the workbench image, so
// the default runner goes through `docker exec` into the running
// workbench container. The host runner covers installations where hhb is
// on the host PATH (CI images, native Linux dev boxes).
type Runner interface {
	// Run executes hhb with the given arguments.
	//
	// Output handling: stdout/stderr are streamed to out unless out is
	// nil, in which case they go to the process's own stdout/stderr.
	Run(ctx context.Context, args []string, out io.Writer) error

	// Describe returns a short human-readable execution location for
	// log messages (e.g., "host", "container hhb-workbench").
	Describe() string
}

// HostRunner executes hhb directly on the host.
type HostRunner struct{}

// NewHostRunner creates a runner that executes hhb on the host PATH.
//
// Returns:
//   - Configured runner
//   - Error if the hhb binary cannot be found on PATH
func NewHostRunner() (*HostRunner, error) {
	if _, err := exec.LookPath(hhbBinary); err != nil {
		return nil, fmt.Errorf("hhb not found on PATH (is the HHB wheel installed, or did you mean to run without --local?): %w", err)
	}
	return &HostRunner{}, nil
}

// Run implements Runner.
func (r *HostRunner) Run(ctx context.Context, args []string, out io.Writer) error {
	cmd := exec.CommandContext(ctx, hhbBinary, args...)
	attachOutput(cmd, out)

	logger.Debug("Executing on host: %s %s", hhbBinary, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("hhb run cancelled")
		}
		return fmt.Errorf("hhb failed: %w", err)
	}
	return nil
}

// Describe implements Runner.
func (r *HostRunner) Describe() string {
	return "host"
}

// ContainerRunner executes hhb inside the workbench container through the
// docker CLI.
//
// The docker CLI is used instead of the SDK exec API so the operator sees
// exactly what an interactive `docker exec` would show, and so the runner
// works identically over any DOCKER_HOST the CLI is configured for.
type ContainerRunner struct {
	// ContainerName is the target workbench container.
	ContainerName string

	// WorkDir is the working directory inside the container. Empty means
	// the container's default.
	WorkDir string
}

// NewContainerRunner creates a runner targeting a workbench container.
//
// The container must already be running; the caller (convert command)
// resolves workbench state before constructing the runner.
//
// Parameters:
//   - containerName: Workbench container name
//   - workDir: Working directory inside the container (may be empty)
func NewContainerRunner(containerName, workDir string) *ContainerRunner {
	return &ContainerRunner{
		ContainerName: containerName,
		WorkDir:       workDir,
	}
}

// Run implements Runner.
func (r *ContainerRunner) Run(ctx context.Context, args []string, out io.Writer) error {
	if r.ContainerName == "" {
		return fmt.Errorf("container name is required")
	}

	execArgs := []string{"exec"}
	if r.WorkDir != "" {
		execArgs = append(execArgs, "-w", r.WorkDir)
	}
	execArgs = append(execArgs, r.ContainerName, hhbBinary)
	execArgs = append(execArgs, args...)

	cmd := exec.CommandContext(ctx, "docker", execArgs...)
	attachOutput(cmd, out)

	logger.Debug("Executing in container %s: %s %s", r.ContainerName, hhbBinary, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("hhb run cancelled")
		}
		return fmt.Errorf("hhb failed in container %s: %w", r.ContainerName, err)
	}
	return nil
}

// Describe implements Runner.
func (r *ContainerRunner) Describe() string {
	return fmt.Sprintf("container %s", r.ContainerName)
}

// attachOutput wires subprocess output to the given writer, or to the
// parent process streams when out is nil.
func attachOutput(cmd *exec.Cmd, out io.Writer) {
	if out != nil {
		cmd.Stdout = out
		cmd.Stderr = out
		return
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
}

// Convert runs a full validated conversion through the given runner and
// verifies the produced artifacts.
//
// Steps:
//  1. Validate options
//  2. Build the hhb argument vector
//  3. Execute hhb (streaming output unless Quiet)
//  4. Verify expected artifacts exist and are non-empty
//
// Parameters:
//   - ctx: Context for cancellation
//   - runner: Execution location
//   - opts: Conversion options
//   - expectedArtifacts: Files that must exist in the output directory
//     afterwards; empty falls back to DefaultArtifacts
//   - verifyDir: Directory checked for artifacts. Differs from
//     opts.OutputDir when hhb runs in the workbench: the run sees the
//     container side of the bind mount while verification sees the host
//     side. Empty falls back to opts.OutputDir.
//
// Returns:
//   - nil on success
//   - Error from the first failing step
func Convert(ctx context.Context, runner Runner, opts *Options, expectedArtifacts []string, verifyDir string) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid conversion options: %w", err)
	}

	args := BuildArgs(opts)
	logger.Info("Running hhb on %s: %s", runner.Describe(), CommandLine(opts))

	var out io.Writer
	if opts.Quiet {
		out = io.Discard
	}

	if err := runner.Run(ctx, args, out); err != nil {
		return err
	}

	if len(expectedArtifacts) == 0 {
		expectedArtifacts = DefaultArtifacts()
	}
	if verifyDir == "" {
		verifyDir = opts.OutputDir
	}
	if err := VerifyArtifacts(verifyDir, expectedArtifacts); err != nil {
		return fmt.Errorf("hhb exited successfully but output verification failed: %w", err)
	}

	logger.Info("Conversion complete: %s", opts.OutputDir)
	return nil
}
