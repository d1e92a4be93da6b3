package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadProfileOverridesMissing(t *testing.T) {
	cfg := NewConfigWithWorkspace(t.TempDir())
	overrides, err := cfg.LoadProfileOverrides("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overrides != nil {
		t.Fatalf("expected nil overrides for a missing file, got %v", overrides)
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	workspace := t.TempDir()
	content := `version: "1"
profiles:
  - model_id: yolov5n
    quantization: int16_sym
    board: th1520
  - model_id: mobilenet
    model_file: mobilenet/mobilenet_v2.onnx
    input_shape: [1, 3, 224, 224]
    data_mean: [123.675, 116.28, 103.53]
    data_scale: 0.017125
`
	path := filepath.Join(workspace, DefaultProfilesFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg := NewConfigWithWorkspace(workspace)
	overrides, err := cfg.LoadProfileOverrides("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(overrides))
	}
	if overrides[0].ModelID != "yolov5n" || overrides[0].Quantization != "int16_sym" {
		t.Fatalf("unexpected first override: %+v", overrides[0])
	}
	if len(overrides[1].InputShape) != 4 || overrides[1].InputShape[3] != 224 {
		t.Fatalf("unexpected input shape: %v", overrides[1].InputShape)
	}
	if overrides[1].DataScale != 0.017125 {
		t.Fatalf("unexpected data scale: %v", overrides[1].DataScale)
	}
}

func TestLoadProfileOverridesMalformed(t *testing.T) {
	workspace := t.TempDir()
	path := filepath.Join(workspace, DefaultProfilesFileName)
	if err := os.WriteFile(path, []byte("profiles: [\n"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg := NewConfigWithWorkspace(workspace)
	if _, err := cfg.LoadProfileOverrides(""); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadProfileOverridesMissingModelID(t *testing.T) {
	workspace := t.TempDir()
	path := filepath.Join(workspace, DefaultProfilesFileName)
	content := "profiles:\n  - board: c920\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg := NewConfigWithWorkspace(workspace)
	_, err := cfg.LoadProfileOverrides("")
	if err == nil {
		t.Fatalf("expected error for missing model_id")
	}
	if !strings.Contains(err.Error(), "model_id") {
		t.Fatalf("expected model_id in error, got %v", err)
	}
}

func TestNewConfigWithWorkspacePaths(t *testing.T) {
	workspace := t.TempDir()
	cfg := NewConfigWithWorkspace(workspace)

	if cfg.EnvFile != filepath.Join(workspace, DefaultEnvFileName) {
		t.Fatalf("unexpected env file: %s", cfg.EnvFile)
	}
	if cfg.ComposeFile != filepath.Join(workspace, DefaultComposeFileName) {
		t.Fatalf("unexpected compose file: %s", cfg.ComposeFile)
	}
	if cfg.DataDir != filepath.Join(workspace, DefaultDataDirName) {
		t.Fatalf("unexpected data dir: %s", cfg.DataDir)
	}
	if cfg.ContainerName != DefaultContainerName {
		t.Fatalf("unexpected container name: %s", cfg.ContainerName)
	}
}
