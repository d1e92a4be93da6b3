// Package toolchain provides host prerequisite detection for the svthhb CLI.
//
// This package handles probing the build host for everything the workflow
// needs before any long operation is started:
//   - Docker CLI presence and daemon liveness
//   - Docker Compose plugin availability
//   - The Xuantie cross-toolchain under TOOLROOT
//   - The cross-built zstd library directory
//
// Probes never fix anything; they produce a report the doctor command
// renders, so the operator sees every missing prerequisite at once rather
// than discovering them serially through failed runs.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
	"github.com/RISCY-SVT/svt-hhb3/internal/logger"
)

// CheckStatus classifies a probe outcome.
type CheckStatus string

const (
	// StatusOK means the prerequisite is present and usable.
	StatusOK CheckStatus = "ok"

	// StatusWarn means the prerequisite is degraded or optional and
	// missing.
	StatusWarn CheckStatus = "warn"

	// StatusFail means a required prerequisite is missing.
	StatusFail CheckStatus = "fail"
)

// Check is the outcome of a single probe.
type Check struct {
	// Name identifies the prerequisite (e.g., "docker daemon").
	Name string

	// Status is the probe outcome.
	Status CheckStatus

	// Detail carries the version string on success or the failure
	// reason otherwise.
	Detail string
}

// Report is the full set of probe outcomes.
type Report struct {
	Checks []Check
}

// Healthy reports whether no probe failed. Warnings do not count as
// failures.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// add appends a probe outcome and logs it.
func (r *Report) add(name string, status CheckStatus, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
	switch status {
	case StatusOK:
		logger.Debug("Check %s: ok (%s)", name, detail)
	case StatusWarn:
		logger.Warn("Check %s: %s", name, detail)
	case StatusFail:
		logger.Debug("Check %s: FAILED (%s)", name, detail)
	}
}

// gccVersionRe extracts the version from `gcc --version` first-line
// output, which for Xuantie toolchains looks like:
//
//	riscv64-unknown-linux-gnu-gcc (Xuantie-900 linux-5.10.4 glibc gcc Toolchain V2.8.1 B-20240115) 10.4.0
var gccVersionRe = regexp.MustCompile(`\(([^)]+)\)\s+([\d.]+)`)

// Probe runs all host checks and returns the report.
//
// Parameters:
//   - ctx: Context bounding every external command invocation
//
// Returns:
//   - Report with one Check per prerequisite
func Probe(ctx context.Context) *Report {
	r := &Report{}

	probeDockerCLI(ctx, r)
	probeDockerDaemon(ctx, r)
	probeComposePlugin(ctx, r)
	probeCrossCompiler(ctx, r)
	probeZstd(r)

	return r
}

// probeDockerCLI checks for the docker binary on PATH.
func probeDockerCLI(ctx context.Context, r *Report) {
	path, err := exec.LookPath("docker")
	if err != nil {
		r.add("docker CLI", StatusFail, "docker not found on PATH")
		return
	}

	out, err := exec.CommandContext(ctx, "docker", "--version").Output()
	if err != nil {
		r.add("docker CLI", StatusFail, fmt.Sprintf("%s exists but --version failed: %v", path, err))
		return
	}
	r.add("docker CLI", StatusOK, strings.TrimSpace(string(out)))
}

// probeDockerDaemon checks daemon liveness through `docker info`.
//
// The CLI is used instead of the SDK here so the probe reflects exactly
// what the rest of the workflow (compose, exec) will experience,
// including DOCKER_HOST and context configuration.
func probeDockerDaemon(ctx context.Context, r *Report) {
	out, err := exec.CommandContext(ctx, "docker", "info", "--format", "{{.ServerVersion}}").Output()
	if err != nil {
		r.add("docker daemon", StatusFail, "daemon not reachable (is dockerd running and are you in the docker group?)")
		return
	}
	r.add("docker daemon", StatusOK, "server version "+strings.TrimSpace(string(out)))
}

// probeComposePlugin checks for the compose v2 plugin.
func probeComposePlugin(ctx context.Context, r *Report) {
	out, err := exec.CommandContext(ctx, "docker", "compose", "version", "--short").Output()
	if err != nil {
		r.add("docker compose", StatusFail, "compose plugin not available (install docker-compose-plugin)")
		return
	}
	r.add("docker compose", StatusOK, "version "+strings.TrimSpace(string(out)))
}

// probeCrossCompiler checks for the Xuantie gcc under TOOLROOT.
//
// The cross compiler is optional on the host: conversions run inside the
// workbench where the toolchain is always present. A missing host
// toolchain is therefore a warning, not a failure.
func probeCrossCompiler(ctx context.Context, r *Report) {
	toolroot := os.Getenv(config.EnvKeyToolRoot)
	if toolroot == "" {
		toolroot = config.DefaultToolRoot
	}

	gcc := filepath.Join(toolroot, "bin", "riscv64-unknown-linux-gnu-gcc")
	if _, err := os.Stat(gcc); err != nil {
		r.add("cross compiler", StatusWarn,
			fmt.Sprintf("not found at %s (host compiles unavailable; workbench compiles unaffected)", gcc))
		return
	}

	out, err := exec.CommandContext(ctx, gcc, "--version").Output()
	if err != nil {
		r.add("cross compiler", StatusWarn, fmt.Sprintf("%s exists but --version failed: %v", gcc, err))
		return
	}

	firstLine := strings.SplitN(string(out), "\n", 2)[0]
	if toolchain, version, ok := ParseGCCVersion(firstLine); ok {
		r.add("cross compiler", StatusOK, fmt.Sprintf("%s (gcc %s)", toolchain, version))
	} else {
		r.add("cross compiler", StatusOK, strings.TrimSpace(firstLine))
	}
}

// probeZstd checks the cross-built zstd library directory.
func probeZstd(r *Report) {
	dir := os.Getenv(config.EnvKeyZstdLibDir)
	if dir == "" {
		r.add("zstd library", StatusWarn, config.EnvKeyZstdLibDir+" not set (static link of generated binaries will fail)")
		return
	}

	lib := filepath.Join(dir, "libzstd.a")
	if info, err := os.Stat(lib); err != nil || info.Size() == 0 {
		r.add("zstd library", StatusFail, fmt.Sprintf("libzstd.a not found in %s", dir))
		return
	}
	r.add("zstd library", StatusOK, lib)
}

// ParseGCCVersion extracts the toolchain banner and gcc version from the
// first line of `gcc --version` output.
//
// Parameters:
//   - line: First version output line
//
// Returns:
//   - Toolchain banner (the parenthesized vendor string)
//   - gcc version number
//   - ok=false when the line doesn't match the expected shape
func ParseGCCVersion(line string) (toolchain, version string, ok bool) {
	m := gccVersionRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}
