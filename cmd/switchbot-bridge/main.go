// switchbot-bridge - MQTT bridge controlling SwitchBot devices over
// Bluetooth Low Energy.
//
// The bridge subscribes to Home Assistant compatible command topics,
// drives SwitchBot Bots (switches) and Curtain motors over BLE, and
// reports state back as retained MQTT messages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"github.com/mkuiper/switchbot-bridge/internal/actors"
	"github.com/mkuiper/switchbot-bridge/internal/bridge"
	"github.com/mkuiper/switchbot-bridge/internal/infrastructure/config"
	"github.com/mkuiper/switchbot-bridge/internal/infrastructure/logging"
	"github.com/mkuiper/switchbot-bridge/internal/infrastructure/mqtt"
	"github.com/mkuiper/switchbot-bridge/internal/switchbot"
	"github.com/mkuiper/switchbot-bridge/internal/switchbot/ble"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "switchbot-bridge",
	Short: "MQTT bridge controlling SwitchBot devices over Bluetooth LE",
	Long: `switchbot-bridge connects an MQTT broker to SwitchBot Bots and
Curtain motors reachable over Bluetooth Low Energy.

Commands arrive on Home Assistant compatible topics
(switch/switchbot/{MAC}/set, cover/switchbot-curtain/{MAC}/set, ...);
device state is reported back on retained state topics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Cancel on interrupt signals for graceful shutdown
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return run(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to configuration file")
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from the cobra command
// for testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting switchbot-bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Route paho's internal logging into structured output
	pahomqtt.ERROR = log.StdLogger(slog.LevelError)
	pahomqtt.CRITICAL = log.StdLogger(slog.LevelError)
	if strings.ToLower(cfg.Logging.Level) == "debug" {
		pahomqtt.WARN = log.StdLogger(slog.LevelWarn)
		pahomqtt.DEBUG = log.StdLogger(slog.LevelDebug)
	}

	// Load per-device passwords
	passwords, err := switchbot.LoadPasswords(cfg.SwitchBot.DevicePasswordFile)
	if err != nil {
		return fmt.Errorf("loading device passwords: %w", err)
	}
	if len(passwords) > 0 {
		log.Info("device passwords loaded", "devices", len(passwords))
	}

	// Connect to the MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT broker")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error disconnecting from MQTT broker", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT connection lost", "error", err)
	})
	log.Info("connected to MQTT broker",
		"host", cfg.MQTT.Broker.Host,
		"port", cfg.MQTT.Broker.Port,
		"tls", cfg.MQTT.Broker.TLS,
	)

	// Open the BLE driver
	driver := ble.NewDriver()
	driver.SetLogger(log.With("component", "ble"))
	defer func() {
		if closeErr := driver.Close(); closeErr != nil {
			log.Error("error closing BLE device", "error", closeErr)
		}
	}()

	// Assemble the command callback engine
	engine := actors.NewEngine(
		actors.Config{
			TopicPrefix:     cfg.MQTT.TopicPrefix,
			RetryCount:      cfg.SwitchBot.RetryCount,
			FetchDeviceInfo: cfg.SwitchBot.FetchDeviceInfo,
		},
		driver,
		passwords,
		mqttClient,
		log.With("component", "actors"),
	)

	// Start the bridge
	b, err := bridge.New(bridge.Options{
		Config: bridge.Config{
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         byte(cfg.MQTT.QoS),
		},
		MQTTClient: &mqttBridgeAdapter{client: mqttClient},
		Engine:     engine,
		Logger:     log.With("component", "bridge"),
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}

	log.Info("bridge running",
		"topic_prefix", cfg.MQTT.TopicPrefix,
		"fetch_device_info", cfg.SwitchBot.FetchDeviceInfo,
	)

	// Block until shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	b.Stop()
	return nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The difference is the Subscribe handler signature:
// the infrastructure client hands handlers a mqtt.Message and expects an
// error return; the bridge works with plain values.
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

func (a *mqttBridgeAdapter) PublishRetained(topic string, payload []byte) error {
	return a.client.PublishRetained(topic, payload)
}

func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte, retained bool)) error {
	return a.client.Subscribe(topic, qos, func(msg mqtt.Message) error {
		handler(msg.Topic, msg.Payload, msg.Retained)
		return nil
	})
}

func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
