// Package logging provides structured logging for switchbot-bridge.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//   - *log.Logger adapters for the paho MQTT library's logging hooks
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting bridge", "broker", "localhost:8883")
//	logger.Error("command failed", "mac", mac, "error", err)
//
// # Security
//
// Never log MQTT credentials or device passwords. Log the MAC address a
// password belongs to, never the password itself.
package logging
