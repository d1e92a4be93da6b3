// Package workbench manages the HHB workbench container lifecycle.
//
// The workbench is a single long-lived development container per
// workspace, built by docker compose from the pinned HHB/Xuantie image
// definition. This package provides:
//   - Docker client lifecycle management with version negotiation
//   - Three-state container resolution (running / stopped / absent)
//   - Container create with UID/GID mapping, bind mounts and labels
//   - Start, stop, remove, attach and log streaming
//   - Label-based discovery of workbench containers
//
// The launcher policy lives in the shell command; this package only
// exposes the primitives it composes.
package workbench

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// Container labels used for workbench discovery. Labels survive daemon
// restarts, so they are the durable link between the CLI and containers
// it created in earlier sessions.
const (
	// LabelWorkbench marks a container as an svthhb workbench.
	LabelWorkbench = "svthhb.workbench"

	// LabelHHBVersion records the HHB version the workbench was created
	// for.
	LabelHHBVersion = "svthhb.hhb_version"

	// LabelWorkspace records the host workspace path the workbench
	// mounts.
	LabelWorkspace = "svthhb.workspace"
)

// stopTimeoutSeconds is the graceful stop window before Docker sends
// SIGKILL. Conversions in flight flush their output within seconds, so a
// short window is enough.
const stopTimeoutSeconds = 10

// Workbench provides Docker operations scoped to one workspace's
// workbench container.
type Workbench struct {
	cli *client.Client
	cfg *config.Config
}

// Summary describes one discovered workbench container for listings.
type Summary struct {
	ContainerID string
	Name        string
	Image       string
	State       State
	Detail      string
	HHBVersion  string
	Workspace   string
	CreatedAt   time.Time
}

// New creates a workbench manager and verifies Docker connectivity.
//
// The Docker client is created from the environment (DOCKER_HOST,
// DOCKER_TLS_VERIFY, DOCKER_CERT_PATH) with API version negotiation, and
// the daemon is pinged with a 5-second timeout so misconfiguration
// surfaces immediately instead of inside the first real operation.
//
// Parameters:
//   - cfg: Application configuration (container name, paths, image)
//
// Returns:
//   - Initialized workbench manager
//   - Error if the Docker daemon is unreachable
func New(cfg *config.Config) (*Workbench, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("Docker daemon is not accessible: %w", err)
	}

	logger.Debug("Docker client initialized for workbench %s", cfg.ContainerName)

	return &Workbench{cli: cli, cfg: cfg}, nil
}

// Status resolves the three-state condition of the workbench container.
//
// Lookup is by exact container name. A name collision with a foreign
// (unlabeled) container is reported as an error rather than adopted,
// because starting or removing someone else's container would be worse
// than failing.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - StateInfo (State is StateAbsent when no container matches)
//   - Error if the Docker query fails or the name is taken by a foreign
//     container
func (w *Workbench) Status(ctx context.Context) (*StateInfo, error) {
	containers, err := w.cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("name", "^/"+w.cfg.ContainerName+"$"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return &StateInfo{State: StateAbsent}, nil
	}

	c := containers[0]
	if c.Labels[LabelWorkbench] == "" {
		return nil, fmt.Errorf("container %s exists but was not created by svthhb; remove or rename it first", w.cfg.ContainerName)
	}

	return InspectContainerState(ctx, w.cli, c.ID)
}

// CreateParams carries the optional knobs of container creation.
type CreateParams struct {
	// UserID and GroupID map the container user onto the host caller so
	// artifacts written into the bind mounts are owned by the operator.
	UserID  int
	GroupID int

	// HHBVersion is recorded as a label.
	HHBVersion string

	// Env is extra environment for the container, KEY=VALUE form.
	Env []string

	// PortSpecs are docker-style port publish specs
	// (e.g., "127.0.0.1:8080:8080") for tools like Netron served from
	// inside the workbench.
	PortSpecs []string
}

// Create creates the workbench container (without starting it).
//
// The container runs an interactive bash with a TTY so it stays alive as
// a development shell target, mounts the workspace at /workspace and the
// data directory at /data, and runs as the provided UID/GID.
//
// Parameters:
//   - ctx: Context for cancellation
//   - params: Creation parameters
//
// Returns:
//   - Created container ID
//   - Error if the image reference is invalid or creation fails
func (w *Workbench) Create(ctx context.Context, params *CreateParams) (string, error) {
	if _, err := reference.ParseNormalizedNamed(w.cfg.Image); err != nil {
		return "", fmt.Errorf("invalid workbench image reference %q: %w", w.cfg.Image, err)
	}

	exposedPorts, portBindings, err := parsePortSpecs(params.PortSpecs)
	if err != nil {
		return "", err
	}

	containerConfig := &container.Config{
		Image:      w.cfg.Image,
		Hostname:   w.cfg.ContainerName,
		User:       fmt.Sprintf("%d:%d", params.UserID, params.GroupID),
		WorkingDir: config.WorkbenchWorkspaceDir,
		Cmd:        []string{"/bin/bash"},
		Tty:        true,
		OpenStdin:  true,
		Env:        params.Env,
		ExposedPorts: exposedPorts,
		Labels: map[string]string{
			LabelWorkbench:  "1",
			LabelHHBVersion: params.HHBVersion,
			LabelWorkspace:  w.cfg.Workspace,
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: w.cfg.Workspace,
				Target: config.WorkbenchWorkspaceDir,
			},
			{
				Type:   mount.TypeBind,
				Source: w.cfg.DataDir,
				Target: config.WorkbenchDataDir,
			},
		},
		// The workbench is an interactive tool, not a service: never
		// restart it behind the operator's back.
		RestartPolicy: container.RestartPolicy{Name: "no"},
	}

	resp, err := w.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, w.cfg.ContainerName)
	if err != nil {
		return "", fmt.Errorf("failed to create workbench container: %w", err)
	}

	logger.Info("Created workbench container %s (ID: %s)", w.cfg.ContainerName, ShortID(resp.ID))
	return resp.ID, nil
}

// parsePortSpecs converts docker-style publish specs into the exposed
// port set and binding map the create API expects.
func parsePortSpecs(specs []string) (nat.PortSet, nat.PortMap, error) {
	if len(specs) == 0 {
		return nil, nil, nil
	}

	exposed, bindings, err := nat.ParsePortSpecs(specs)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid port specification: %w", err)
	}
	return exposed, bindings, nil
}

// Start starts a created or stopped workbench container.
func (w *Workbench) Start(ctx context.Context, containerID string) error {
	logger.Info("Starting workbench container: %s", ShortID(containerID))
	if err := w.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start workbench container: %w", err)
	}
	return nil
}

// Stop gracefully stops the workbench container.
//
// SIGTERM is delivered first; after stopTimeoutSeconds Docker escalates
// to SIGKILL. The container is preserved for inspection and restart.
func (w *Workbench) Stop(ctx context.Context, containerID string) error {
	logger.Info("Stopping workbench container: %s", ShortID(containerID))

	timeout := stopTimeoutSeconds
	if err := w.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop workbench container: %w", err)
	}
	return nil
}

// Remove removes the workbench container and its anonymous volumes.
//
// Force removal is used so a stale container in any state can be cleared
// in one call.
func (w *Workbench) Remove(ctx context.Context, containerID string) error {
	logger.Info("Removing workbench container: %s", ShortID(containerID))

	err := w.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil {
		return fmt.Errorf("failed to remove workbench container: %w", err)
	}
	return nil
}

// Attach opens an interactive shell in the running workbench.
//
// The docker CLI is used with the caller's terminal passed straight
// through: `docker exec -it` negotiates the TTY and window resizes
// natively, which is exactly the behavior an operator expects from a
// development shell.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - nil when the shell exits normally (the shell's own exit status is
//     propagated as the process exit status by the command layer)
//   - Error if docker exec cannot be started
func (w *Workbench) Attach(ctx context.Context) error {
	logger.Debug("Attaching interactive shell to %s", w.cfg.ContainerName)

	cmd := exec.CommandContext(ctx, "docker", "exec", "-it",
		"-w", config.WorkbenchWorkspaceDir, w.cfg.ContainerName, "/bin/bash")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("attach cancelled")
		}
		// A non-zero shell exit (e.g. operator ran `exit 1`) is not an
		// attach failure.
		if _, ok := err.(*exec.ExitError); ok {
			logger.Debug("Workbench shell exited non-zero: %v", err)
			return nil
		}
		return fmt.Errorf("failed to attach to workbench: %w", err)
	}
	return nil
}

// Logs streams container logs to the given writer.
//
// The workbench runs with a TTY, so Docker delivers a single raw stream;
// containers created without a TTY are demultiplexed through stdcopy.
//
// Parameters:
//   - ctx: Context for cancellation
//   - containerID: Container to read logs from
//   - out: Destination writer
//   - follow: Stream new output until cancelled when true
func (w *Workbench) Logs(ctx context.Context, containerID string, out io.Writer, follow bool) error {
	inspect, err := w.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to inspect container: %w", err)
	}

	reader, err := w.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     follow,
		Tail:       "all",
	})
	if err != nil {
		return fmt.Errorf("failed to get container logs: %w", err)
	}
	defer reader.Close()

	if inspect.Config != nil && inspect.Config.Tty {
		_, err = io.Copy(out, reader)
	} else {
		_, err = stdcopy.StdCopy(out, out, reader)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("log stream failed: %w", err)
	}
	return nil
}

// List discovers all workbench containers on the daemon, across
// workspaces.
//
// Discovery is by the workbench label, so containers created from other
// checkouts (or by earlier versions of the CLI) show up too.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - Summaries sorted as returned by the daemon (newest first)
//   - Error if the Docker query fails
func (w *Workbench) List(ctx context.Context) ([]Summary, error) {
	containers, err := w.cli.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", LabelWorkbench),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workbench containers: %w", err)
	}

	summaries := make([]Summary, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			// Docker reports names with a leading slash.
			name = c.Names[0]
			if len(name) > 0 && name[0] == '/' {
				name = name[1:]
			}
		}

		info, err := InspectContainerState(ctx, w.cli, c.ID)
		if err != nil {
			logger.Warn("Failed to inspect container %s: %v", ShortID(c.ID), err)
			info = &StateInfo{State: StateUnknown, Detail: err.Error()}
		}

		summaries = append(summaries, Summary{
			ContainerID: c.ID,
			Name:        name,
			Image:       c.Image,
			State:       info.State,
			Detail:      info.Detail,
			HHBVersion:  c.Labels[LabelHHBVersion],
			Workspace:   c.Labels[LabelWorkspace],
			CreatedAt:   time.Unix(c.Created, 0),
		})
	}

	return summaries, nil
}

// ShortID truncates a container ID to the 12-character form docker
// prints.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
