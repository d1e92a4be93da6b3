package app

import (
	"path/filepath"
	"testing"

	"github.com/RISCY-SVT/svt-hhb3/internal/config"
)

func TestHostPathFor(t *testing.T) {
	cfg := config.NewConfigWithWorkspace("/home/user/project")

	cases := []struct {
		in   string
		want string
	}{
		{"/workspace/hhb_out", filepath.Join("/home/user/project", "hhb_out")},
		{"/workspace", "/home/user/project"},
		{"/data/calib", filepath.Join(cfg.DataDir, "calib")},
		{"/data", cfg.DataDir},
		{"hhb_out", filepath.Join("/home/user/project", "hhb_out")},
		// Outside both mounts: returned unchanged.
		{"/tmp/elsewhere", "/tmp/elsewhere"},
	}
	for _, c := range cases {
		if got := hostPathFor(cfg, c.in); got != c.want {
			t.Fatalf("hostPathFor(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHostPathForDoesNotMatchPrefixLookalikes(t *testing.T) {
	cfg := config.NewConfigWithWorkspace("/home/user/project")
	if got := hostPathFor(cfg, "/workspace2/out"); got != "/workspace2/out" {
		t.Fatalf("lookalike prefix must not be mapped, got %q", got)
	}
}

func TestEnvIntFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	env, err := config.LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.Set("USER_ID", "1000")
	env.Set("BROKEN", "not-a-number")

	if got := envInt(env, "USER_ID", 0); got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}
	if got := envInt(env, "MISSING", 42); got != 42 {
		t.Fatalf("expected fallback 42, got %d", got)
	}
	if got := envInt(env, "BROKEN", 42); got != 42 {
		t.Fatalf("expected fallback for malformed value, got %d", got)
	}
}

func TestEnvString(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	env, err := config.LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.Set("HHB_VERSION", "2.6.11")
	env.Set("EMPTY", "")

	if got := envString(env, "HHB_VERSION", "x"); got != "2.6.11" {
		t.Fatalf("expected 2.6.11, got %q", got)
	}
	if got := envString(env, "EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("empty value must fall back, got %q", got)
	}
}

func TestFormatShape(t *testing.T) {
	if got := formatShape([]int{1, 3, 640, 640}); got != "1x3x640x640" {
		t.Fatalf("unexpected shape rendering: %q", got)
	}
	if got := formatShape(nil); got != "-" {
		t.Fatalf("expected placeholder for empty shape, got %q", got)
	}
}
