package actors

import (
	"context"
	"strconv"
	"strings"

	"github.com/mkuiper/switchbot-bridge/internal/switchbot"
)

// curtainActor controls a SwitchBot Curtain motor exposed as a Home
// Assistant MQTT cover.
type curtainActor struct {
	engine *Engine
	mac    string
	device switchbot.Curtain
}

var _ Actor = (*curtainActor)(nil)

// ExecuteCommand interprets OPEN/CLOSE/STOP (case-insensitive).
//
// OPEN and CLOSE optimistically publish "opening"/"closing"; the real
// position is unknown mid-travel, so the position report is deferred to
// the next STOP or explicit refresh. STOP publishes an empty state payload
// rather than a "stopped" string: Home Assistant's cover platform defines
// no stopped state, and an empty retained payload clears the transient
// opening/closing display.
func (a *curtainActor) ExecuteCommand(ctx context.Context, payload []byte) {
	reportInfo, reportPosition := false, false
	switch strings.ToLower(string(payload)) {
	case "open":
		if err := a.device.Open(ctx); err != nil {
			a.engine.commandFailed("open", a.mac, err)
			return
		}
		a.engine.logger.Info("switchbot curtain opening", "mac", a.mac)
		a.engine.publish(curtainStatePattern, a.mac, []byte("opening"))
		reportInfo = a.engine.cfg.FetchDeviceInfo
	case "close":
		if err := a.device.Close(ctx); err != nil {
			a.engine.commandFailed("close", a.mac, err)
			return
		}
		a.engine.logger.Info("switchbot curtain closing", "mac", a.mac)
		a.engine.publish(curtainStatePattern, a.mac, []byte("closing"))
		reportInfo = a.engine.cfg.FetchDeviceInfo
	case "stop":
		if err := a.device.Stop(ctx); err != nil {
			a.engine.commandFailed("stop", a.mac, err)
			return
		}
		a.engine.logger.Info("switchbot curtain stopped", "mac", a.mac)
		a.engine.publish(curtainStatePattern, a.mac, []byte{})
		reportInfo = a.engine.cfg.FetchDeviceInfo
		reportPosition = true
	default:
		a.engine.logger.Warn("unexpected payload, expected OPEN, CLOSE, or STOP", "mac", a.mac, "payload", string(payload))
		return
	}
	if reportInfo {
		a.updateAndReportDeviceInfo(ctx, reportPosition)
	}
}

// SetPosition moves the curtain to the given position. The caller has
// already validated the 0-100 range. Success is log-only: the device
// reports its real position on the next stop or explicit refresh, so no
// optimistic position is published.
func (a *curtainActor) SetPosition(ctx context.Context, percent int) {
	if err := a.device.SetPosition(ctx, percent); err != nil {
		a.engine.commandFailed("set position", a.mac, err)
		return
	}
	a.engine.logger.Info("set curtain position", "mac", a.mac, "percent", percent)
}

// UpdateAndReportDeviceInfo fetches and publishes battery and position.
func (a *curtainActor) UpdateAndReportDeviceInfo(ctx context.Context) {
	a.updateAndReportDeviceInfo(ctx, true)
}

func (a *curtainActor) updateAndReportDeviceInfo(ctx context.Context, reportPosition bool) {
	info, err := a.device.BasicInfo(ctx)
	if err != nil {
		a.engine.logger.Error("failed to fetch device info", "mac", a.mac, "error", err)
		return
	}
	a.engine.publish(curtainBatteryPattern, a.mac, []byte(strconv.Itoa(info.Battery)))
	if reportPosition {
		a.engine.publish(curtainPositionPattern, a.mac, []byte(strconv.Itoa(info.Position)))
	}
}
