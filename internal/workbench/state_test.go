package workbench

import (
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
)

func inspectWith(state *types.ContainerState) *types.ContainerJSON {
	return &types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:    "0123456789abcdef",
			State: state,
		},
	}
}

func TestMapContainerStateRunning(t *testing.T) {
	info := mapContainerState(inspectWith(&types.ContainerState{Running: true, Status: "running"}))
	if info.State != StateRunning {
		t.Fatalf("expected running, got %s (%s)", info.State, info.Detail)
	}
	if info.ContainerID != "0123456789abcdef" {
		t.Fatalf("unexpected container ID: %s", info.ContainerID)
	}
}

func TestMapContainerStateExited(t *testing.T) {
	info := mapContainerState(inspectWith(&types.ContainerState{Status: "exited", ExitCode: 137}))
	if info.State != StateStopped {
		t.Fatalf("expected stopped, got %s", info.State)
	}
	if info.ExitCode != 137 {
		t.Fatalf("unexpected exit code: %d", info.ExitCode)
	}
	if !strings.Contains(info.Detail, "exited with code 137") {
		t.Fatalf("unexpected detail: %q", info.Detail)
	}
}

func TestMapContainerStateCreated(t *testing.T) {
	info := mapContainerState(inspectWith(&types.ContainerState{Status: "created"}))
	if info.State != StateStopped {
		t.Fatalf("expected stopped, got %s", info.State)
	}
	if !strings.Contains(info.Detail, "never started") {
		t.Fatalf("unexpected detail: %q", info.Detail)
	}
}

func TestMapContainerStateDeadWithError(t *testing.T) {
	info := mapContainerState(inspectWith(&types.ContainerState{
		Status:   "dead",
		ExitCode: 1,
		Error:    "no space left on device",
	}))
	if info.State != StateStopped {
		t.Fatalf("expected stopped, got %s", info.State)
	}
	if !strings.Contains(info.Detail, "no space left on device") {
		t.Fatalf("expected daemon error in detail, got %q", info.Detail)
	}
}

func TestMapContainerStatePausedNeedsIntervention(t *testing.T) {
	// The daemon keeps Running=true for paused and restarting
	// containers; neither may map to StateRunning.
	for _, state := range []*types.ContainerState{
		{Running: true, Paused: true, Status: "paused"},
		{Running: true, Restarting: true, Status: "restarting"},
	} {
		info := mapContainerState(inspectWith(state))
		if info.State != StateUnknown {
			t.Fatalf("expected unknown for %s, got %s", state.Status, info.State)
		}
	}
}

func TestMapContainerStateMissingState(t *testing.T) {
	info := mapContainerState(inspectWith(nil))
	if info.State != StateUnknown {
		t.Fatalf("expected unknown, got %s", info.State)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0123456789abcdef0123"); got != "0123456789ab" {
		t.Fatalf("unexpected short ID: %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}
