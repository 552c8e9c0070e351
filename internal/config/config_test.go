package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DeviceName != "Pi-BLE-UART" {
		t.Errorf("DeviceName = %q, want %q", cfg.DeviceName, "Pi-BLE-UART")
	}
	if cfg.DownloadDir != "./downloads" {
		t.Errorf("DownloadDir = %q, want %q", cfg.DownloadDir, "./downloads")
	}
	if !cfg.ReceiveEnabled {
		t.Error("ReceiveEnabled should default to true")
	}
	if !cfg.AdvertiseOnStart {
		t.Error("AdvertiseOnStart should default to true")
	}
	if cfg.StatusNotify {
		t.Error("StatusNotify should default to false")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
device_name: test-peripheral
download_dir: /tmp/bledrop-test
receive_enabled: false
advertise_on_start: false
status_notify: true
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DeviceName != "test-peripheral" {
		t.Errorf("DeviceName = %q, want %q", cfg.DeviceName, "test-peripheral")
	}
	if cfg.DownloadDir != "/tmp/bledrop-test" {
		t.Errorf("DownloadDir = %q, want %q", cfg.DownloadDir, "/tmp/bledrop-test")
	}
	if cfg.ReceiveEnabled {
		t.Error("ReceiveEnabled = true, want false")
	}
	if cfg.AdvertiseOnStart {
		t.Error("AdvertiseOnStart = true, want false")
	}
	if !cfg.StatusNotify {
		t.Error("StatusNotify = false, want true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("device_name: partial\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DeviceName != "partial" {
		t.Errorf("DeviceName = %q, want %q", cfg.DeviceName, "partial")
	}
	if cfg.DownloadDir != "./downloads" {
		t.Errorf("DownloadDir = %q, want default %q", cfg.DownloadDir, "./downloads")
	}
	if !cfg.ReceiveEnabled {
		t.Error("ReceiveEnabled should keep its default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("device_name: from-yaml\nlog_level: info\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("BLEDROP_DEVICE_NAME", "from-env")
	t.Setenv("BLEDROP_LOG_LEVEL", "warn")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DeviceName != "from-env" {
		t.Errorf("DeviceName = %q, want env override %q", cfg.DeviceName, "from-env")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override %q", cfg.LogLevel, "warn")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("BLEDROP_DOWNLOAD_DIR", "/srv/drops")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.DownloadDir != "/srv/drops" {
		t.Errorf("DownloadDir = %q, want %q", cfg.DownloadDir, "/srv/drops")
	}
	if cfg.DeviceName != "Pi-BLE-UART" {
		t.Errorf("DeviceName = %q, want default", cfg.DeviceName)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of missing file succeeded, want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty device name", func(c *Config) { c.DeviceName = "" }, "device_name"},
		{"empty download dir", func(c *Config) { c.DownloadDir = "" }, "download_dir"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	if got := expandTilde("~/drops"); got != filepath.Join(home, "drops") {
		t.Errorf("expandTilde(~/drops) = %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("expandTilde(/abs/path) = %q", got)
	}
}
