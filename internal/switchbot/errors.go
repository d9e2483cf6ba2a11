package switchbot

import "errors"

// Domain errors for SwitchBot device operations.
var (
	// ErrCommandFailed is returned when the device rejected or did not
	// acknowledge a command after the retry budget was exhausted.
	ErrCommandFailed = errors.New("switchbot: command failed")

	// ErrDeviceInfoUnavailable is returned when a basic-info fetch did not
	// yield a response.
	ErrDeviceInfoUnavailable = errors.New("switchbot: device info unavailable")

	// ErrInvalidDeviceResponse is returned when the device answered with
	// data violating its own contract, e.g. a position outside 0-100.
	// Unlike ErrDeviceInfoUnavailable this indicates a lower-layer bug,
	// not a radio problem.
	ErrInvalidDeviceResponse = errors.New("switchbot: invalid device response")

	// ErrBluetoothPermission is returned when the Bluetooth stack cannot
	// enable low-energy mode because the process lacks the required OS
	// privileges. The wrapped message carries operator remediation steps.
	ErrBluetoothPermission = errors.New(
		"switchbot: insufficient permissions to access the bluetooth stack" +
			" (grant CAP_NET_ADMIN to the binary, e.g." +
			" `sudo setcap cap_net_admin+ep $(command -v switchbot-bridge)`," +
			" or run the container with `--cap-add NET_ADMIN`)")
)
