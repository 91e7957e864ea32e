package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("SLMAIM_CONFIG")
	defer os.Setenv("SLMAIM_CONFIG", originalEnv)

	os.Setenv("SLMAIM_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidScreenGeometry verifies run fails when the modulator shape
// is not a positive size.
func TestRun_InvalidScreenGeometry(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
instrument:
  serial: test-slm

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 0

screen:
  width: 0
  height: 1080
  fullscreen: false

paths:
  base_patterns: "patterns"
  flatness_corrections: "flatness_corrections"

compute:
  calibration:
    wavelengths: [488]
    scale_factors: [255]

defaults:
  wavelength: 488
  fresnel: 0
  pattern:
    gauss: {}

logging:
  level: info
  format: text
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("SLMAIM_CONFIG")
	defer os.Setenv("SLMAIM_CONFIG", originalEnv)
	os.Setenv("SLMAIM_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with zero screen width")
	}
}

// TestRun_BrokerUnreachable verifies startup fails when no broker answers.
// Nothing should listen on port 19999.
func TestRun_BrokerUnreachable(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
instrument:
  serial: test-slm

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
    tls: false
  qos: 0

screen:
  width: 64
  height: 48
  fullscreen: false

paths:
  base_patterns: "` + filepath.Join(tmpDir, "patterns") + `"
  flatness_corrections: "` + filepath.Join(tmpDir, "flatness_corrections") + `"

compute:
  calibration:
    wavelengths: [488]
    scale_factors: [255]

defaults:
  wavelength: 488
  fresnel: 0
  pattern:
    gauss: {}

logging:
  level: info
  format: text
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("SLMAIM_CONFIG")
	defer os.Setenv("SLMAIM_CONFIG", originalEnv)
	os.Setenv("SLMAIM_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail without a reachable broker")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("SLMAIM_CONFIG")
	defer os.Setenv("SLMAIM_CONFIG", originalEnv)

	os.Unsetenv("SLMAIM_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("SLMAIM_CONFIG")
	defer os.Setenv("SLMAIM_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("SLMAIM_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
