package actors

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mkuiper/switchbot-bridge/internal/switchbot"
	"github.com/mkuiper/switchbot-bridge/internal/topics"
)

// Config carries the deployment-wide settings the engine needs per message.
type Config struct {
	// TopicPrefix is prepended verbatim to every topic.
	TopicPrefix string

	// RetryCount is the retry budget passed to each device handle.
	RetryCount int

	// FetchDeviceInfo chains a telemetry refresh after every successful
	// command and enables the request-device-info subscriptions.
	FetchDeviceInfo bool
}

// Publisher publishes retained messages to the broker. Satisfied by the
// infrastructure MQTT client.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// Logger is the logging surface the engine needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Message is one inbound broker message as seen by the engine.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// Handler processes one inbound message. Handlers never return errors:
// every failure mode is either protocol noise (logged and dropped) or a
// device/publish failure (logged, last retained state stays authoritative).
type Handler func(ctx context.Context, msg Message)

// Binding pairs a broker subscription pattern (MAC placeholder rendered as
// the "+" wildcard) with the handler for messages arriving on it.
type Binding struct {
	Topic   string
	Handler Handler
}

// Engine is the command callback engine: it owns the dispatch table and
// the per-message validation pipeline. Engines are safe for concurrent
// use; all per-message state lives in ephemeral actor values.
type Engine struct {
	cfg       Config
	devices   switchbot.Factory
	passwords switchbot.PasswordStore
	publisher Publisher
	logger    Logger
}

// NewEngine assembles an engine from its collaborators. passwords may be
// nil when no device uses a password.
func NewEngine(cfg Config, devices switchbot.Factory, passwords switchbot.PasswordStore, publisher Publisher, logger Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		devices:   devices,
		passwords: passwords,
		publisher: publisher,
		logger:    logger,
	}
}

// Bindings builds the dispatch table: one entry per topic the bridge
// subscribes to. Command and set-position bindings are unconditional; the
// request-device-info bindings exist only when telemetry fetching is
// enabled. Every pattern is distinct, so each topic is subscribed exactly
// once.
func (e *Engine) Bindings() []Binding {
	bindings := []Binding{
		e.bind(switchCommandPattern, e.handleSwitchCommand),
		e.bind(curtainCommandPattern, e.handleCurtainCommand),
		e.bind(curtainSetPositionPattern, e.handleCurtainSetPosition),
	}
	if e.cfg.FetchDeviceInfo {
		bindings = append(bindings,
			e.bind(switchRequestInfoPattern, e.handleSwitchRequestInfo),
			e.bind(curtainRequestInfoPattern, e.handleCurtainRequestInfo),
		)
	}
	return bindings
}

// bind wraps a per-MAC handler with the validation pipeline shared by all
// callback varieties:
//
//  1. Drop retained messages (stale replay from a previous session).
//  2. Parse the topic against the binding's pattern.
//  3. Validate the bound MAC address.
//
// The wrapped handler runs only when all three steps pass.
func (e *Engine) bind(pattern topics.Pattern, handle func(ctx context.Context, mac string, payload []byte)) Binding {
	return Binding{
		Topic: pattern.SubscribePattern(e.cfg.TopicPrefix),
		Handler: func(ctx context.Context, msg Message) {
			e.logger.Debug("received message", "topic", msg.Topic, "payload", string(msg.Payload))
			if msg.Retained {
				e.logger.Info("ignoring retained message", "topic", msg.Topic)
				return
			}
			mac, err := pattern.Parse(msg.Topic, e.cfg.TopicPrefix)
			if err != nil {
				e.logger.Warn("ignoring message with unexpected topic", "topic", msg.Topic, "error", err)
				return
			}
			if !topics.ValidMACAddress(mac) {
				e.logger.Warn("invalid mac address", "mac", mac)
				return
			}
			handle(ctx, mac, msg.Payload)
		},
	}
}

func (e *Engine) handleSwitchCommand(ctx context.Context, mac string, payload []byte) {
	e.newSwitchActor(mac).ExecuteCommand(ctx, payload)
}

func (e *Engine) handleSwitchRequestInfo(ctx context.Context, mac string, _ []byte) {
	e.newSwitchActor(mac).UpdateAndReportDeviceInfo(ctx)
}

func (e *Engine) handleCurtainCommand(ctx context.Context, mac string, payload []byte) {
	e.newCurtainActor(mac).ExecuteCommand(ctx, payload)
}

func (e *Engine) handleCurtainRequestInfo(ctx context.Context, mac string, _ []byte) {
	e.newCurtainActor(mac).UpdateAndReportDeviceInfo(ctx)
}

func (e *Engine) handleCurtainSetPosition(ctx context.Context, mac string, payload []byte) {
	percent, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		e.logger.Warn("invalid position payload, ignoring message", "mac", mac, "payload", string(payload))
		return
	}
	if percent < 0 || percent > 100 {
		e.logger.Warn("invalid position, ignoring message", "mac", mac, "percent", percent)
		return
	}
	e.newCurtainActor(mac).SetPosition(ctx, percent)
}

func (e *Engine) newSwitchActor(mac string) *switchActor {
	return &switchActor{
		engine: e,
		mac:    mac,
		device: e.devices.Switch(e.deviceOptions(mac)),
	}
}

func (e *Engine) newCurtainActor(mac string) *curtainActor {
	return &curtainActor{
		engine: e,
		mac:    mac,
		device: e.devices.Curtain(e.deviceOptions(mac)),
	}
}

func (e *Engine) deviceOptions(mac string) switchbot.DeviceOptions {
	return switchbot.DeviceOptions{
		MACAddress: mac,
		Password:   e.passwords.Lookup(mac),
		RetryCount: e.cfg.RetryCount,
	}
}

// publish renders the pattern for the given MAC and publishes retained.
// Failures are logged, never escalated: a publish failure must not fail
// the command that triggered it.
func (e *Engine) publish(pattern topics.Pattern, mac string, payload []byte) {
	topic := pattern.Render(e.cfg.TopicPrefix, mac)
	e.logger.Debug("publishing message", "topic", topic, "payload", string(payload))
	if err := e.publisher.PublishRetained(topic, payload); err != nil {
		e.logger.Error("failed to publish MQTT message", "topic", topic, "error", err)
	}
}

// commandFailed logs a device command failure. Bluetooth permission
// failures carry operator remediation guidance and are logged separately
// from ordinary command failures.
func (e *Engine) commandFailed(action, mac string, err error) {
	if errors.Is(err, switchbot.ErrBluetoothPermission) {
		e.logger.Error("insufficient privileges for Bluetooth", "action", action, "mac", mac, "error", err)
		return
	}
	e.logger.Error("device command failed", "action", action, "mac", mac, "error", err)
}
