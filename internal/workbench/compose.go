// Package workbench - compose.go drives docker compose and the build cache.
//
// Image builds go through the docker CLI rather than the SDK: compose
// owns the build definition (contexts, args, cache mounts) and its
// native progress rendering is what operators expect to see. The CLI is
// run under a pty so that rendering survives the pipe, with carriage
// return updates forwarded separately from completed lines.
package workbench

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/docker/docker/api/types"
	"github.com/docker/go-units"

	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// ProgressFunc receives build output as it is produced.
//
// Parameters:
//   - line: Output line content without the terminating control character
//   - newline: true when the line was completed with LF (append to the
//     transcript), false for CR updates (overwrite the current line)
type ProgressFunc func(line string, newline bool)

// StdoutProgress returns a ProgressFunc that re-renders docker's own
// progress behavior on the caller's terminal.
func StdoutProgress(out io.Writer) ProgressFunc {
	return func(line string, newline bool) {
		if newline {
			fmt.Fprintf(out, "%s\n", line)
		} else {
			fmt.Fprintf(out, "\r%s\x1b[K", line)
		}
	}
}

// ComposeBuild builds the workbench image through docker compose.
//
// Equivalent to: docker compose -f <file> --env-file <env> build [--no-cache]
//
// The .env file must already be provisioned (setup does this) because
// compose substitutes USER_ID/GROUP_ID/HHB_VERSION into the build args.
//
// Parameters:
//   - ctx: Context for cancellation; the build is killed when it fires
//   - composeFile: Path of docker-compose.yml
//   - envFile: Path of the .env file
//   - noCache: Disable the build cache
//   - progress: Receiver for build output (may be nil)
//
// Returns:
//   - nil on success
//   - Error if compose is missing, the build fails or is cancelled
func ComposeBuild(ctx context.Context, composeFile, envFile string, noCache bool, progress ProgressFunc) error {
	args := []string{"compose", "-f", composeFile, "--env-file", envFile, "build"}
	if noCache {
		args = append(args, "--no-cache")
	}

	logger.Info("Building workbench image: docker %s", strings.Join(args, " "))

	start := time.Now()
	if err := runDockerStreaming(ctx, args, progress); err != nil {
		return fmt.Errorf("compose build failed: %w", err)
	}

	logger.Info("Workbench image built in %s", units.HumanDuration(time.Since(start)))
	return nil
}

// BuilderPrune removes dangling build cache entries through the Docker
// API.
//
// Only unreferenced cache is pruned (not --all): the point is reclaiming
// space from abandoned intermediate layers, not forcing full rebuilds.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - Human-readable amount of space reclaimed
//   - Error if the prune fails
func (w *Workbench) BuilderPrune(ctx context.Context) (string, error) {
	report, err := w.cli.BuildCachePrune(ctx, types.BuildCachePruneOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to prune build cache: %w", err)
	}

	reclaimed := units.HumanSize(float64(report.SpaceReclaimed))
	logger.Info("Pruned build cache: %s reclaimed", reclaimed)
	return reclaimed, nil
}

// ImageExists checks whether an image is present in the local image
// store.
//
// Uses the docker CLI for parity with the compose build path: both see
// the same daemon regardless of context/DOCKER_HOST configuration.
//
// Parameters:
//   - ctx: Context for cancellation
//   - imageName: Full image reference
//
// Returns:
//   - true if the image exists locally
//   - Error if the query fails
func ImageExists(ctx context.Context, imageName string) (bool, error) {
	if imageName == "" {
		return false, fmt.Errorf("image name cannot be empty")
	}

	out, err := exec.CommandContext(ctx, "docker", "images", "-q", imageName).Output()
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("operation cancelled")
		}
		return false, fmt.Errorf("failed to check Docker image: %w", err)
	}

	return len(strings.TrimSpace(string(out))) > 0, nil
}

// runDockerStreaming runs a docker CLI command under a pty and forwards
// its output through the progress callback.
//
// The pty is read byte by byte to tell carriage-return updates (progress
// bar redraws) apart from completed lines, so callers can re-render the
// CLI's native progress without a real terminal attached to the child.
func runDockerStreaming(ctx context.Context, args []string, progress ProgressFunc) error {
	cmd := exec.CommandContext(ctx, "docker", args...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start docker under pty: %w", err)
	}
	defer ptmx.Close()

	emit := func(line string, newline bool) {
		if progress != nil {
			progress(line, newline)
		}
	}

	var line []byte
	buf := make([]byte, 1)

	// Short read deadlines let the loop poll ctx without a second
	// goroutine.
	ptmx.SetReadDeadline(time.Now().Add(100 * time.Millisecond))

	for {
		select {
		case <-ctx.Done():
			if cmd.Process != nil {
				cmd.Process.Kill()
			}
			cmd.Wait()
			return fmt.Errorf("operation cancelled")
		default:
		}

		n, err := ptmx.Read(buf)
		if n > 0 {
			switch ch := buf[0]; ch {
			case '\r':
				if len(line) > 0 {
					emit(string(line), false)
					line = line[:0]
				}
			case '\n':
				emit(string(line), true)
				line = line[:0]
			default:
				line = append(line, ch)
			}
			ptmx.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		}

		if err == io.EOF {
			if len(line) > 0 {
				emit(string(line), true)
			}
			break
		}
		if err != nil {
			if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
				ptmx.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
				continue
			}
			// The pty closes when the child exits; let Wait decide
			// whether that was a failure.
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("operation cancelled")
		}
		return err
	}
	return nil
}
