package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "broker.example.org"
    port: 1883
    tls: false
    client_id: "test-bridge"
  topic_prefix: "home/"
  qos: 2
switchbot:
  retry_count: 5
  fetch_device_info: true
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.org" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.example.org")
	}
	if cfg.MQTT.TopicPrefix != "home/" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "home/")
	}
	if cfg.MQTT.QoS != 2 {
		t.Errorf("MQTT.QoS = %d, want 2", cfg.MQTT.QoS)
	}
	if cfg.SwitchBot.RetryCount != 5 {
		t.Errorf("SwitchBot.RetryCount = %d, want 5", cfg.SwitchBot.RetryCount)
	}
	if !cfg.SwitchBot.FetchDeviceInfo {
		t.Error("SwitchBot.FetchDeviceInfo = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "mqtt:\n  broker:\n    host: \"localhost\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true by default")
	}
	if cfg.MQTT.TopicPrefix != "homeassistant/" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "homeassistant/")
	}
	if cfg.SwitchBot.RetryCount != 3 {
		t.Errorf("SwitchBot.RetryCount = %d, want 3", cfg.SwitchBot.RetryCount)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_PasswordWithoutUsername(t *testing.T) {
	content := `
mqtt:
  auth:
    password: "secret"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected error for password without username, got nil")
	}
	if !strings.Contains(err.Error(), "username is required") {
		t.Errorf("Load() error = %v, want mention of missing username", err)
	}
}

func TestLoad_PasswordFile(t *testing.T) {
	tmpDir := t.TempDir()
	passwordPath := filepath.Join(tmpDir, "password")
	if err := os.WriteFile(passwordPath, []byte("hunter2\n"), 0600); err != nil {
		t.Fatalf("failed to write password file: %v", err)
	}

	content := `
mqtt:
  auth:
    username: "bridge"
    password_file: "` + passwordPath + `"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Auth.Password != "hunter2" {
		t.Errorf("MQTT.Auth.Password = %q, want %q (trailing newline stripped)", cfg.MQTT.Auth.Password, "hunter2")
	}
}

func TestLoad_PasswordFileMissing(t *testing.T) {
	content := `
mqtt:
  auth:
    username: "bridge"
    password_file: "/nonexistent/password"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected error for missing password file, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SWITCHBOT_MQTT_HOST", "env-broker")
	t.Setenv("SWITCHBOT_MQTT_PORT", "1884")
	t.Setenv("SWITCHBOT_MQTT_TOPIC_PREFIX", "prefix/")
	t.Setenv("FETCH_DEVICE_INFO", "yes")

	cfg, err := Load(writeConfig(t, "mqtt:\n  broker:\n    host: \"file-broker\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override %q", cfg.MQTT.Broker.Host, "env-broker")
	}
	if cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker.Port = %d, want env override 1884", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.TopicPrefix != "prefix/" {
		t.Errorf("MQTT.TopicPrefix = %q, want env override %q", cfg.MQTT.TopicPrefix, "prefix/")
	}
	if !cfg.SwitchBot.FetchDeviceInfo {
		t.Error("SwitchBot.FetchDeviceInfo = false, want true via FETCH_DEVICE_INFO")
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.MQTT.Broker.Host = "" }},
		{"port too low", func(c *Config) { c.MQTT.Broker.Port = 0 }},
		{"port too high", func(c *Config) { c.MQTT.Broker.Port = 70000 }},
		{"empty client id", func(c *Config) { c.MQTT.Broker.ClientID = "" }},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"zero retry count", func(c *Config) { c.SwitchBot.RetryCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() expected error for %s, got nil", tt.name)
			}
		})
	}
}
