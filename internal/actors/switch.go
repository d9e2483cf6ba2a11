package actors

import (
	"context"
	"strconv"
	"strings"

	"github.com/mkuiper/switchbot-bridge/internal/switchbot"
)

// switchActor controls a SwitchBot Bot exposed as a Home Assistant MQTT
// switch.
type switchActor struct {
	engine *Engine
	mac    string
	device switchbot.Switch
}

var _ Actor = (*switchActor)(nil)

// ExecuteCommand interprets ON/OFF (case-insensitive) and presses the bot.
// On success it publishes the state retained; on failure it publishes
// nothing so the last retained state stays authoritative.
func (a *switchActor) ExecuteCommand(ctx context.Context, payload []byte) {
	switch strings.ToLower(string(payload)) {
	case "on":
		if err := a.device.TurnOn(ctx); err != nil {
			a.engine.commandFailed("turn on", a.mac, err)
			return
		}
		a.engine.logger.Info("switchbot turned on", "mac", a.mac)
		a.engine.publish(switchStatePattern, a.mac, []byte("ON"))
	case "off":
		if err := a.device.TurnOff(ctx); err != nil {
			a.engine.commandFailed("turn off", a.mac, err)
			return
		}
		a.engine.logger.Info("switchbot turned off", "mac", a.mac)
		a.engine.publish(switchStatePattern, a.mac, []byte("OFF"))
	default:
		a.engine.logger.Warn("unexpected payload, expected ON or OFF", "mac", a.mac, "payload", string(payload))
		return
	}
	if a.engine.cfg.FetchDeviceInfo {
		a.UpdateAndReportDeviceInfo(ctx)
	}
}

// UpdateAndReportDeviceInfo fetches and publishes the battery percentage.
func (a *switchActor) UpdateAndReportDeviceInfo(ctx context.Context) {
	info, err := a.device.BasicInfo(ctx)
	if err != nil {
		a.engine.logger.Error("failed to fetch device info", "mac", a.mac, "error", err)
		return
	}
	a.engine.publish(switchBatteryPattern, a.mac, []byte(strconv.Itoa(info.Battery)))
}
