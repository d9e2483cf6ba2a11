package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkuiper/switchbot-bridge/internal/actors"
)

// Bridge is the run loop: it owns the broker connection's subscriptions,
// announces availability, and forwards every inbound message to the
// command callback engine as an independent task.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	cfg    Config
	mqtt   MQTTClient
	engine *actors.Engine

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context    // Bridge-level context, cancelled on Stop()
	ctxCancel context.CancelFunc // Cancel function for ctx

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// Config holds run loop settings.
type Config struct {
	// TopicPrefix is prepended verbatim to every topic.
	TopicPrefix string

	// QoS is the quality of service level for subscriptions.
	QoS byte
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// PublishRetained sends a retained message to a topic.
	PublishRetained(topic string, payload []byte) error

	// Subscribe registers a handler for a topic pattern. The retained
	// flag reports whether the broker delivered a stored message.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte, retained bool)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// Config is the run loop configuration.
	Config Config

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Engine is the command callback engine.
	Engine *actors.Engine

	// Logger is optional structured logger.
	Logger Logger
}

// New creates a new bridge instance.
// Call Start() to begin operation.
func New(opts Options) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	// Bridge-level context so in-flight handlers observe shutdown
	ctx, ctxCancel := context.WithCancel(context.Background())

	return &Bridge{
		cfg:       opts.Config,
		mqtt:      opts.MQTTClient,
		engine:    opts.Engine,
		done:      make(chan struct{}),
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}, nil
}

// availabilityTopic is the retained topic announcing bridge liveness.
func (b *Bridge) availabilityTopic() string {
	return b.cfg.TopicPrefix + "switchbot-mqtt/status"
}

// Start begins bridge operation: it publishes the "online" birth message
// and subscribes every dispatch table entry. The broker's last will
// (registered at connect time) covers the "offline" side.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.mqtt.IsConnected() {
		return ErrMQTTNotConnected
	}

	if err := b.mqtt.PublishRetained(b.availabilityTopic(), []byte("online")); err != nil {
		b.logError("failed to publish availability", err)
	}

	for _, binding := range b.engine.Bindings() {
		if err := b.subscribeBinding(binding); err != nil {
			return fmt.Errorf("subscribe to %s: %w", binding.Topic, err)
		}
		b.logInfo("subscribed to MQTT topic", "topic", binding.Topic)
	}

	b.logInfo("bridge started", "topic_prefix", b.cfg.TopicPrefix)

	return nil
}

// subscribeBinding registers one dispatch table entry with the broker.
// Each inbound message is handed to the engine in its own goroutine so a
// handler blocked on Bluetooth I/O never delays the next message.
func (b *Bridge) subscribeBinding(binding actors.Binding) error {
	return b.mqtt.Subscribe(binding.Topic, b.cfg.QoS, func(topic string, payload []byte, retained bool) {
		select {
		case <-b.done:
			return
		default:
		}

		msg := actors.Message{
			Topic:    topic,
			Payload:  payload,
			Retained: retained,
		}

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			binding.Handler(b.ctx, msg)
		}()
	})
}

// Stop gracefully shuts down the bridge: it publishes the "offline"
// availability message, cancels in-flight handlers, and waits for them
// to finish.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		if b.mqtt.IsConnected() {
			if err := b.mqtt.PublishRetained(b.availabilityTopic(), []byte("offline")); err != nil {
				b.logError("failed to publish availability", err)
			}
		}

		// Cancel bridge context to abort in-flight commands
		b.ctxCancel()

		// Wait for pending handlers
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// SetLogger sets the logger after construction.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()
	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()
	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
