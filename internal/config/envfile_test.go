package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadEnvFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.Keys()) != 0 {
		t.Fatalf("expected empty file, got keys %v", env.Keys())
	}
}

func TestLoadEnvFileGet(t *testing.T) {
	path := writeTempEnv(t, "# identity\nUSER_ID=1000\nGROUP_ID=1000\n\nTOOLROOT=/opt/riscv\n")
	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok := env.Get("USER_ID")
	if !ok || v != "1000" {
		t.Fatalf("expected USER_ID=1000, got %q (%v)", v, ok)
	}
	v, ok = env.Get("TOOLROOT")
	if !ok || v != "/opt/riscv" {
		t.Fatalf("expected TOOLROOT=/opt/riscv, got %q (%v)", v, ok)
	}
	if _, ok := env.Get("MISSING"); ok {
		t.Fatalf("expected MISSING to be absent")
	}
}

func TestEnvFileSetUpdatesInPlace(t *testing.T) {
	path := writeTempEnv(t, "# identity\nUSER_ID=1000\nTOOLROOT=/opt/riscv\n")
	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.Set("USER_ID", "1001")
	if err := env.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	want := "# identity\nUSER_ID=1001\nTOOLROOT=/opt/riscv\n"
	if string(data) != want {
		t.Fatalf("expected in-place update, got:\n%s", data)
	}
}

func TestEnvFileSetAppendsNewKeys(t *testing.T) {
	path := writeTempEnv(t, "USER_ID=1000\n")
	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.Set("GROUP_ID", "1000")
	env.Set("HHB_VERSION", "2.6.11")
	if err := env.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[1] != "GROUP_ID=1000" || lines[2] != "HHB_VERSION=2.6.11" {
		t.Fatalf("expected new keys appended in order, got %q", lines)
	}
}

func TestEnvFileSetDefault(t *testing.T) {
	env, err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.Set("TOOLROOT", "/custom/riscv")
	env.SetDefault("TOOLROOT", "/opt/riscv")
	env.SetDefault("DATA_DIR", "/data")

	if v, _ := env.Get("TOOLROOT"); v != "/custom/riscv" {
		t.Fatalf("SetDefault overwrote an existing value: %q", v)
	}
	if v, _ := env.Get("DATA_DIR"); v != "/data" {
		t.Fatalf("SetDefault did not seed a new key: %q", v)
	}
}

func TestEnvFilePreservesUnknownLines(t *testing.T) {
	content := "# hand edited\nCUSTOM_FLAG=1\nnot an assignment\n"
	path := writeTempEnv(t, content)
	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.Set("USER_ID", "1000")
	if err := env.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.HasPrefix(string(data), content) {
		t.Fatalf("existing lines were not preserved:\n%s", data)
	}
}

func TestEnvFileKeysFileOrder(t *testing.T) {
	path := writeTempEnv(t, "B=2\nA=1\n# comment\nC=3\nA=override\n")
	env, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keys := env.Keys()
	want := []string{"B", "A", "C"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}

	// Duplicate definitions: the last one wins for Get.
	if v, _ := env.Get("A"); v != "override" {
		t.Fatalf("expected last definition to win, got %q", v)
	}
}

func TestParseEnvKey(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"USER_ID=1000", "USER_ID"},
		{"  TOOLROOT = /opt/riscv", "TOOLROOT"},
		{"# USER_ID=1000", ""},
		{"", ""},
		{"=value", ""},
		{"no assignment", ""},
	}
	for _, c := range cases {
		if got := parseEnvKey(c.line); got != c.want {
			t.Fatalf("parseEnvKey(%q) = %q, want %q", c.line, got, c.want)
		}
	}
}
