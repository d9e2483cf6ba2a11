package switchbot

import "context"

// BasicDeviceInfo is the telemetry snapshot a device reports on demand.
// Position is only meaningful for curtain motors and follows the reversed
// convention: 0 = open, 100 = closed.
type BasicDeviceInfo struct {
	// Battery is the remaining battery charge in percent (0-100).
	Battery int

	// Position is the curtain position in percent (0-100).
	Position int
}

// Switch is the capability of a SwitchBot Bot in switch mode.
type Switch interface {
	// TurnOn presses the bot into its "on" position.
	TurnOn(ctx context.Context) error

	// TurnOff presses the bot into its "off" position.
	TurnOff(ctx context.Context) error

	// BasicInfo fetches battery telemetry from the device.
	BasicInfo(ctx context.Context) (BasicDeviceInfo, error)
}

// Curtain is the capability of a SwitchBot Curtain motor.
type Curtain interface {
	// Open starts moving the curtain fully open.
	Open(ctx context.Context) error

	// Close starts moving the curtain fully closed.
	Close(ctx context.Context) error

	// Stop halts the motor at its current position.
	Stop(ctx context.Context) error

	// SetPosition moves the curtain to the given position in percent.
	// The caller validates the 0-100 range.
	SetPosition(ctx context.Context, percent int) error

	// BasicInfo fetches battery and position telemetry from the device.
	BasicInfo(ctx context.Context) (BasicDeviceInfo, error)
}

// DeviceOptions carries the per-device parameters looked up for each
// inbound command.
type DeviceOptions struct {
	// MACAddress is the Bluetooth hardware address, canonical colon form.
	MACAddress string

	// Password is the device secret, empty when the device has none.
	Password string

	// RetryCount is the maximum number of command attempts before the
	// driver reports failure.
	RetryCount int
}

// Factory opens device handles. Implementations own connection management
// and retry behaviour; handles are cheap to create and are discarded after
// a single command or refresh.
type Factory interface {
	Switch(opts DeviceOptions) Switch
	Curtain(opts DeviceOptions) Curtain
}
