package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for switchbot-bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt"`
	SwitchBot SwitchBotConfig `yaml:"switchbot"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`

	// TopicPrefix is prepended verbatim to every topic the bridge uses.
	// A prefix that wants a separator must carry its own trailing "/".
	// The historic default is "homeassistant/".
	TopicPrefix string `yaml:"topic_prefix"`

	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// PasswordFile, when set, is read at load time with the trailing newline
// stripped and takes precedence over Password.
type MQTTAuthConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// SwitchBotConfig contains device-side settings.
type SwitchBotConfig struct {
	// RetryCount is the maximum number of attempts to send a command to
	// a device before reporting failure.
	RetryCount int `yaml:"retry_count"`

	// FetchDeviceInfo enables the battery/position reports chained after
	// every successful command, plus the request-device-info topics.
	// Can also be enabled by a non-empty FETCH_DEVICE_INFO environment
	// variable.
	FetchDeviceInfo bool `yaml:"fetch_device_info"`

	// DevicePasswordFile is the path to a JSON file mapping device MAC
	// addresses to passwords. Empty means no device uses a password.
	DevicePasswordFile string `yaml:"device_password_file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SWITCHBOT_SECTION_KEY
// For example: SWITCHBOT_MQTT_HOST, SWITCHBOT_MQTT_PASSWORD
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.MQTT.Auth.PasswordFile != "" {
		password, err := readPasswordFile(cfg.MQTT.Auth.PasswordFile)
		if err != nil {
			return nil, err
		}
		cfg.MQTT.Auth.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     8883,
				TLS:      true,
				ClientID: "switchbot-bridge",
			},
			// For historic reasons; deployments that left the home
			// assistant namespace set this to "".
			TopicPrefix: "homeassistant/",
			QoS:         1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		SwitchBot: SwitchBotConfig{
			RetryCount: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SWITCHBOT_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWITCHBOT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SWITCHBOT_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("SWITCHBOT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SWITCHBOT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("SWITCHBOT_MQTT_TOPIC_PREFIX"); v != "" {
		cfg.MQTT.TopicPrefix = v
	}
	// Compatibility with the historic deployment knob: any non-empty
	// value enables device info fetching.
	if v := os.Getenv("FETCH_DEVICE_INFO"); v != "" {
		cfg.SwitchBot.FetchDeviceInfo = true
	}
}

// readPasswordFile loads a credential from a file, stripping a single
// trailing newline (\n or \r\n).
func readPasswordFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading MQTT password file: %w", err)
	}
	password := string(data)
	password = strings.TrimSuffix(password, "\n")
	password = strings.TrimSuffix(password, "\r")
	return password, nil
}

// Validate checks the configuration for errors.
//
// A password supplied without a username is rejected here, at startup,
// rather than surfacing as a broker CONNACK refusal later.
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.Broker.ClientID == "" {
		errs = append(errs, "mqtt.broker.client_id is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Auth.Password != "" && c.MQTT.Auth.Username == "" {
		errs = append(errs, "mqtt.auth.username is required when a password is set")
	}
	if c.SwitchBot.RetryCount < 1 {
		errs = append(errs, "switchbot.retry_count must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
