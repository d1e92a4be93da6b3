// Package workbench - state.go centralizes container state mapping.
package workbench

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// State represents the workbench container state as seen by the CLI.
//
// The launcher only distinguishes the three states that drive its
// decision (running / stopped / absent); error detail is carried
// alongside for display, not as a separate state.
type State string

const (
	// StateRunning means the container exists and is running.
	StateRunning State = "running"

	// StateStopped means the container exists but is not running
	// (created, exited or dead).
	StateStopped State = "stopped"

	// StateAbsent means no container with the configured name exists.
	StateAbsent State = "absent"

	// StateUnknown means the container exists but its state could not
	// be determined.
	StateUnknown State = "unknown"
)

// StateInfo holds the result of container state inspection.
type StateInfo struct {
	// State is the mapped workbench state.
	State State

	// ContainerID is the full container ID ("" when absent).
	ContainerID string

	// ExitCode is the last exit code (only meaningful for stopped
	// containers that have run).
	ExitCode int

	// Detail carries extra information for stopped/unknown states,
	// e.g. "exited with code 137".
	Detail string
}

// InspectContainerState inspects a container and maps its Docker state
// onto the workbench state model.
//
// State mapping rules:
//   - running                  -> StateRunning
//   - created / exited / dead  -> StateStopped (with exit detail)
//   - paused / restarting      -> StateUnknown (operator intervention)
//
// This function is the single source of truth for state mapping; the
// launcher and ps command both go through it.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cli: Docker API client
//   - containerID: Container to inspect
//
// Returns:
//   - StateInfo with mapped state and detail
//   - Error if inspection fails
func InspectContainerState(ctx context.Context, cli *client.Client, containerID string) (*StateInfo, error) {
	inspect, err := cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container: %w", err)
	}
	return mapContainerState(&inspect), nil
}

// mapContainerState converts Docker inspect data to the workbench state
// model.
func mapContainerState(inspect *types.ContainerJSON) *StateInfo {
	info := &StateInfo{
		ContainerID: inspect.ID,
	}
	if inspect.State == nil {
		info.State = StateUnknown
		info.Detail = "container has no state"
		return info
	}

	info.ExitCode = inspect.State.ExitCode

	switch {
	// Paused and restarting containers report Running=true, so these
	// checks must come first.
	case inspect.State.Paused || inspect.State.Restarting:
		info.State = StateUnknown
		info.Detail = fmt.Sprintf("container is %s", inspect.State.Status)

	case inspect.State.Running:
		info.State = StateRunning

	case inspect.State.Status == "created":
		info.State = StateStopped
		info.Detail = "created but never started"

	case inspect.State.Status == "exited" || inspect.State.Status == "dead":
		info.State = StateStopped
		info.Detail = formatExitDetail(inspect.State)

	default:
		info.State = StateUnknown
		info.Detail = fmt.Sprintf("unexpected container status: %s", inspect.State.Status)
	}

	return info
}

// formatExitDetail creates a short message for an exited container.
func formatExitDetail(state *types.ContainerState) string {
	if state.Error != "" {
		return fmt.Sprintf("exited with code %d: %s", state.ExitCode, state.Error)
	}
	return fmt.Sprintf("exited with code %d", state.ExitCode)
}
