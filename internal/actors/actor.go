package actors

import (
	"context"

	"github.com/mkuiper/switchbot-bridge/internal/topics"
)

// Actor is the control surface shared by the device kinds. An actor is
// constructed fresh for each inbound message and discarded afterwards; it
// holds no state beyond the MAC address and an open device handle.
type Actor interface {
	// ExecuteCommand interprets a command payload and drives the device.
	// Unrecognized payloads are logged and ignored.
	ExecuteCommand(ctx context.Context, payload []byte)

	// UpdateAndReportDeviceInfo fetches battery (and, for curtains,
	// position) telemetry and publishes it retained. A failed fetch
	// publishes nothing.
	UpdateAndReportDeviceInfo(ctx context.Context)
}

// Topic patterns for SwitchBot Bots exposed as Home Assistant MQTT switches.
var (
	switchCommandPattern     = switchPattern("set")
	switchStatePattern       = switchPattern("state")
	switchRequestInfoPattern = switchPattern("request-device-info")
	switchBatteryPattern     = switchPattern("battery-percentage")
)

// Topic patterns for SwitchBot Curtain motors exposed as Home Assistant
// MQTT covers.
var (
	curtainCommandPattern     = curtainPattern("set")
	curtainStatePattern       = curtainPattern("state")
	curtainRequestInfoPattern = curtainPattern("request-device-info")
	curtainBatteryPattern     = curtainPattern("battery-percentage")
	curtainPositionPattern    = curtainPattern("position")
	curtainSetPositionPattern = curtainPattern("position", "set-percent")
)

func switchPattern(suffix ...string) topics.Pattern {
	return deviceTopic("switch", "switchbot", suffix)
}

func curtainPattern(suffix ...string) topics.Pattern {
	return deviceTopic("cover", "switchbot-curtain", suffix)
}

func deviceTopic(platform, device string, suffix []string) topics.Pattern {
	p := topics.Pattern{topics.Literal(platform), topics.Literal(device), topics.MACAddress}
	for _, s := range suffix {
		p = append(p, topics.Literal(s))
	}
	return p
}
