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
	originalEnv := os.Getenv("VOLTMESH_CONFIG")
	defer os.Setenv("VOLTMESH_CONFIG", originalEnv)

	os.Setenv("VOLTMESH_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when the database path
// is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
site:
  id: test-site

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("VOLTMESH_CONFIG")
	defer os.Setenv("VOLTMESH_CONFIG", originalEnv)
	os.Setenv("VOLTMESH_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_StartupAndShutdown runs the daemon with MQTT and InfluxDB
// disabled and verifies it starts and shuts down cleanly when the
// context expires.
func TestRun_StartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")
	dbPath := filepath.Join(tmpDir, "test.db")

	configContent := `
site:
  id: test-site

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

orchestrator:
  tick_interval: 1
  cycle_interval: 2
  horizon_hours: 24
  price_per_kwh: 0.30

mqtt:
  enabled: false

influxdb:
  enabled: false

api:
  host: "127.0.0.1"
  port: 18087
  timeouts:
    read: 5
    write: 5
    idle: 10

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("VOLTMESH_CONFIG")
	defer os.Setenv("VOLTMESH_CONFIG", originalEnv)
	os.Setenv("VOLTMESH_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() = %v, want clean shutdown", err)
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("VOLTMESH_CONFIG")
	defer os.Setenv("VOLTMESH_CONFIG", originalEnv)

	os.Unsetenv("VOLTMESH_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("VOLTMESH_CONFIG")
	defer os.Setenv("VOLTMESH_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("VOLTMESH_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
