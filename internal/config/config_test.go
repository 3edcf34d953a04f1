package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  http_port: 9090

bus:
  name: "/dev/i2c-1"
  scan_interval: 50ms

sensors:
  ht1_pin: "GPIO17"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("http_port = %d, want 9090", cfg.Server.HTTPPort)
	}
	if cfg.Bus.Name != "/dev/i2c-1" {
		t.Errorf("bus name = %q", cfg.Bus.Name)
	}
	if cfg.Bus.ScanInterval != 50*time.Millisecond {
		t.Errorf("scan_interval = %v, want 50ms", cfg.Bus.ScanInterval)
	}
	if cfg.Sensors.HT1Pin != "GPIO17" {
		t.Errorf("ht1_pin = %q", cfg.Sensors.HT1Pin)
	}

	// Unset fields fall back to defaults.
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown_timeout = %v, want default 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Sensors.HT2Pin != "GPIO33" {
		t.Errorf("ht2_pin = %q, want default GPIO33", cfg.Sensors.HT2Pin)
	}
	if cfg.Profiles.Board != "kc868-a16" {
		t.Errorf("board = %q, want default kc868-a16", cfg.Profiles.Board)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}
