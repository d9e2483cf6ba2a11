package bridge

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mkuiper/switchbot-bridge/internal/actors"
	"github.com/mkuiper/switchbot-bridge/internal/switchbot"
)

// MockMQTTClient implements MQTTClient for testing.
type MockMQTTClient struct {
	mu            sync.Mutex
	published     []mockPublish
	subscriptions []mockSubscription
	connected     bool
	handlers      map[string]func(topic string, payload []byte, retained bool)
}

type mockPublish struct {
	Topic   string
	Payload []byte
}

type mockSubscription struct {
	Topic string
	QoS   byte
}

func NewMockMQTTClient() *MockMQTTClient {
	return &MockMQTTClient{
		connected: true,
		handlers:  make(map[string]func(topic string, payload []byte, retained bool)),
	}
}

func (m *MockMQTTClient) PublishRetained(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, mockPublish{Topic: topic, Payload: payload})
	return nil
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, handler func(topic string, payload []byte, retained bool)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = append(m.subscriptions, mockSubscription{Topic: topic, QoS: qos})
	m.handlers[topic] = handler
	return nil
}

func (m *MockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockMQTTClient) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *MockMQTTClient) GetPublished() []mockPublish {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockPublish(nil), m.published...)
}

func (m *MockMQTTClient) GetSubscriptions() []mockSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mockSubscription(nil), m.subscriptions...)
}

// SimulateMessage delivers a message to the handler of the first matching
// subscription, the way the broker would.
func (m *MockMQTTClient) SimulateMessage(topic string, payload []byte, retained bool) {
	m.mu.Lock()
	var handler func(topic string, payload []byte, retained bool)
	for pattern, h := range m.handlers {
		if wildcardMatch(pattern, topic) {
			handler = h
			break
		}
	}
	m.mu.Unlock()
	if handler != nil {
		handler(topic, payload, retained)
	}
}

func wildcardMatch(pattern, topic string) bool {
	patternLevels := strings.Split(pattern, "/")
	topicLevels := strings.Split(topic, "/")
	if len(patternLevels) != len(topicLevels) {
		return false
	}
	for i, p := range patternLevels {
		if p != "+" && p != topicLevels[i] {
			return false
		}
	}
	return true
}

// mockSwitch implements switchbot.Switch, recording calls.
type mockSwitch struct {
	mu    sync.Mutex
	calls []string
}

func (d *mockSwitch) record(call string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
	return nil
}

func (d *mockSwitch) TurnOn(ctx context.Context) error  { return d.record("turn_on") }
func (d *mockSwitch) TurnOff(ctx context.Context) error { return d.record("turn_off") }

func (d *mockSwitch) BasicInfo(ctx context.Context) (switchbot.BasicDeviceInfo, error) {
	d.record("basic_info")
	return switchbot.BasicDeviceInfo{Battery: 50}, nil
}

func (d *mockSwitch) callList() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

type mockFactory struct {
	device *mockSwitch
}

func (f *mockFactory) Switch(opts switchbot.DeviceOptions) switchbot.Switch { return f.device }

func (f *mockFactory) Curtain(opts switchbot.DeviceOptions) switchbot.Curtain {
	panic("no curtain in this test")
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...any) {}
func (nopLogger) Info(msg string, keysAndValues ...any)  {}
func (nopLogger) Warn(msg string, keysAndValues ...any)  {}
func (nopLogger) Error(msg string, keysAndValues ...any) {}

func newTestBridge(t *testing.T) (*Bridge, *MockMQTTClient, *mockSwitch) {
	t.Helper()

	mqttClient := NewMockMQTTClient()
	device := &mockSwitch{}
	engine := actors.NewEngine(
		actors.Config{TopicPrefix: "homeassistant/", RetryCount: 3},
		&mockFactory{device: device},
		nil,
		mqttClient,
		nopLogger{},
	)

	b, err := New(Options{
		Config:     Config{TopicPrefix: "homeassistant/", QoS: 1},
		MQTTClient: mqttClient,
		Engine:     engine,
		Logger:     nopLogger{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return b, mqttClient, device
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Options{Engine: &actors.Engine{}}); err == nil {
		t.Error("New() without MQTT client expected error")
	}
	if _, err := New(Options{MQTTClient: NewMockMQTTClient()}); err == nil {
		t.Error("New() without engine expected error")
	}
}

func TestStart_NotConnected(t *testing.T) {
	b, mqttClient, _ := newTestBridge(t)
	mqttClient.SetConnected(false)

	if err := b.Start(context.Background()); err != ErrMQTTNotConnected {
		t.Errorf("Start() error = %v, want ErrMQTTNotConnected", err)
	}
}

func TestStart_SubscribesAndAnnounces(t *testing.T) {
	b, mqttClient, _ := newTestBridge(t)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	subs := mqttClient.GetSubscriptions()
	if len(subs) != 3 {
		t.Fatalf("subscribed to %d topics, want 3: %v", len(subs), subs)
	}
	for _, sub := range subs {
		if sub.QoS != 1 {
			t.Errorf("subscription %q QoS = %d, want 1", sub.Topic, sub.QoS)
		}
	}

	published := mqttClient.GetPublished()
	if len(published) != 1 {
		t.Fatalf("published %d messages on start, want 1: %v", len(published), published)
	}
	if published[0].Topic != "homeassistant/switchbot-mqtt/status" {
		t.Errorf("availability topic = %q", published[0].Topic)
	}
	if string(published[0].Payload) != "online" {
		t.Errorf("availability payload = %q, want %q", published[0].Payload, "online")
	}
}

func TestCommandFlow(t *testing.T) {
	b, mqttClient, device := newTestBridge(t)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	mqttClient.SimulateMessage("homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/set", []byte("ON"), false)

	waitFor(t, func() bool {
		for _, p := range mqttClient.GetPublished() {
			if p.Topic == "homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/state" {
				return string(p.Payload) == "ON"
			}
		}
		return false
	}, "retained state publish")

	if calls := device.callList(); len(calls) != 1 || calls[0] != "turn_on" {
		t.Errorf("device calls = %v, want [turn_on]", calls)
	}
}

func TestRetainedCommandDropped(t *testing.T) {
	b, mqttClient, device := newTestBridge(t)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	mqttClient.SimulateMessage("homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/set", []byte("ON"), true)

	// Stop waits for in-flight handlers, so after it returns the retained
	// message has been fully processed (and dropped).
	b.Stop()

	if calls := device.callList(); len(calls) != 0 {
		t.Errorf("device calls = %v, want none for retained message", calls)
	}
}

func TestStop_AnnouncesOfflineAndIsIdempotent(t *testing.T) {
	b, mqttClient, _ := newTestBridge(t)

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	b.Stop()
	b.Stop() // second call is a no-op

	var offline int
	for _, p := range mqttClient.GetPublished() {
		if p.Topic == "homeassistant/switchbot-mqtt/status" && string(p.Payload) == "offline" {
			offline++
		}
	}
	if offline != 1 {
		t.Errorf("published %d offline messages, want 1", offline)
	}
}
