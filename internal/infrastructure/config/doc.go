// Package config handles loading and validation of switchbot-bridge
// configuration.
//
// Configuration is loaded from a YAML file with three layers of precedence:
//
//  1. Hardcoded defaults (TLS on port 8883, "homeassistant/" topic prefix)
//  2. YAML file values
//  3. Environment variable overrides (SWITCHBOT_MQTT_HOST, ...)
//
// Secrets can be kept out of the YAML file: the broker password may come
// from a separate file (mqtt.auth.password_file, trailing newline
// stripped) or from SWITCHBOT_MQTT_PASSWORD.
//
// Validation runs once at load time and is fatal. In particular a
// password without a username is rejected here rather than at connect
// time.
package config
