package ble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"

	"github.com/mkuiper/switchbot-bridge/internal/switchbot"
)

// Driver timing constants.
const (
	// dialTimeout bounds a single connection attempt.
	dialTimeout = 10 * time.Second

	// responseTimeout bounds the wait for a command notification after a
	// successful write.
	responseTimeout = 5 * time.Second

	// retryDelay is the pause between command attempts.
	retryDelay = time.Second
)

// Logger is the narrow logging interface the driver needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Driver opens SwitchBot device handles over Bluetooth Low Energy.
// It implements switchbot.Factory. The underlying HCI device is opened
// lazily on first use and shared by all handles.
//
// Thread Safety: all methods are safe for concurrent use. Concurrent
// commands to the same device are not serialized here and race at the
// radio.
type Driver struct {
	mu  sync.Mutex
	hci ble.Device

	// newDevice is swappable for tests.
	newDevice func() (ble.Device, error)

	logger   Logger
	loggerMu sync.RWMutex
}

// NewDriver creates a BLE driver. Call Close when done to release the
// HCI device.
func NewDriver() *Driver {
	return &Driver{
		newDevice: func() (ble.Device, error) {
			return linux.NewDevice()
		},
	}
}

// SetLogger sets an optional logger for connection debugging.
func (d *Driver) SetLogger(logger Logger) {
	d.loggerMu.Lock()
	d.logger = logger
	d.loggerMu.Unlock()
}

func (d *Driver) getLogger() Logger {
	d.loggerMu.RLock()
	defer d.loggerMu.RUnlock()
	return d.logger
}

// Switch implements switchbot.Factory.
func (d *Driver) Switch(opts switchbot.DeviceOptions) switchbot.Switch {
	return &botHandle{driver: d, opts: opts}
}

// Curtain implements switchbot.Factory.
func (d *Driver) Curtain(opts switchbot.DeviceOptions) switchbot.Curtain {
	// Reversed position convention: 0 = open, 100 = closed.
	return &curtainHandle{driver: d, opts: opts}
}

// Close releases the HCI device. Safe to call without a prior command.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hci == nil {
		return nil
	}
	err := d.hci.Stop()
	d.hci = nil
	return err
}

// hciDevice opens the HCI device on first use.
func (d *Driver) hciDevice() (ble.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hci != nil {
		return d.hci, nil
	}
	dev, err := d.newDevice()
	if err != nil {
		return nil, translatePermissionError(fmt.Errorf("opening hci device: %w", err))
	}
	d.hci = dev
	return dev, nil
}

// exec runs one command round-trip with the handle's retry budget.
// Permission failures abort immediately: retrying cannot succeed until
// the operator fixes the capability setup.
func (d *Driver) exec(ctx context.Context, opts switchbot.DeviceOptions, key []byte) ([]byte, error) {
	attempts := opts.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if logger := d.getLogger(); logger != nil {
				logger.Debug("retrying command",
					"mac_address", opts.MACAddress,
					"attempt", attempt+1,
					"error", lastErr,
				)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		resp, err := d.attempt(ctx, opts, key)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, switchbot.ErrBluetoothPermission) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// attempt performs a single connect → subscribe → write → notify cycle.
func (d *Driver) attempt(ctx context.Context, opts switchbot.DeviceOptions, key []byte) ([]byte, error) {
	hci, err := d.hciDevice()
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	client, err := hci.Dial(dialCtx, ble.NewAddr(opts.MACAddress))
	if err != nil {
		return nil, translatePermissionError(fmt.Errorf("dialing %s: %w", opts.MACAddress, err))
	}
	defer func() {
		_ = client.CancelConnection()
	}()

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		return nil, fmt.Errorf("discovering profile of %s: %w", opts.MACAddress, err)
	}
	cmdChar := profile.FindCharacteristic(ble.NewCharacteristic(ble.MustParse(commandUUID)))
	respChar := profile.FindCharacteristic(ble.NewCharacteristic(ble.MustParse(responseUUID)))
	if cmdChar == nil || respChar == nil {
		return nil, fmt.Errorf("%w: %s does not expose the switchbot service", switchbot.ErrCommandFailed, opts.MACAddress)
	}

	respCh := make(chan []byte, 1)
	if err := client.Subscribe(respChar, false, func(data []byte) {
		select {
		case respCh <- append([]byte(nil), data...):
		default:
		}
	}); err != nil {
		return nil, fmt.Errorf("subscribing to response characteristic of %s: %w", opts.MACAddress, err)
	}
	defer func() {
		_ = client.Unsubscribe(respChar, false)
	}()

	if err := client.WriteCharacteristic(cmdChar, withPassword(key, opts.Password), false); err != nil {
		return nil, fmt.Errorf("writing command to %s: %w", opts.MACAddress, err)
	}

	select {
	case resp := <-respCh:
		return resp, nil
	case <-time.After(responseTimeout):
		return nil, fmt.Errorf("%w: no response from %s", switchbot.ErrCommandFailed, opts.MACAddress)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// execChecked runs a command and verifies the device acknowledged it.
func (d *Driver) execChecked(ctx context.Context, opts switchbot.DeviceOptions, key []byte) error {
	resp, err := d.exec(ctx, opts, key)
	if err != nil {
		return err
	}
	if len(resp) == 0 || resp[0] != statusOK {
		if len(resp) > 0 && resp[0] == statusBusy {
			return fmt.Errorf("%w: device %s busy", switchbot.ErrCommandFailed, opts.MACAddress)
		}
		return fmt.Errorf("%w: device %s answered %x", switchbot.ErrCommandFailed, opts.MACAddress, resp)
	}
	return nil
}

// translatePermissionError turns OS privilege failures from the Bluetooth
// stack into the distinct, actionable permission error. Everything else
// passes through unchanged.
func translatePermissionError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "permission denied") {
		return fmt.Errorf("%w: %s", switchbot.ErrBluetoothPermission, err)
	}
	return err
}

// botHandle drives a SwitchBot Bot in switch mode.
type botHandle struct {
	driver *Driver
	opts   switchbot.DeviceOptions
}

func (h *botHandle) TurnOn(ctx context.Context) error {
	return h.driver.execChecked(ctx, h.opts, keyOn)
}

func (h *botHandle) TurnOff(ctx context.Context) error {
	return h.driver.execChecked(ctx, h.opts, keyOff)
}

func (h *botHandle) BasicInfo(ctx context.Context) (switchbot.BasicDeviceInfo, error) {
	resp, err := h.driver.exec(ctx, h.opts, keyBasicInfo)
	if err != nil {
		return switchbot.BasicDeviceInfo{}, err
	}
	return parseBasicInfo(resp, false)
}

// curtainHandle drives a SwitchBot Curtain motor.
type curtainHandle struct {
	driver *Driver
	opts   switchbot.DeviceOptions
}

func (h *curtainHandle) Open(ctx context.Context) error {
	return h.driver.execChecked(ctx, h.opts, keyCurtainOpen)
}

func (h *curtainHandle) Close(ctx context.Context) error {
	return h.driver.execChecked(ctx, h.opts, keyCurtainClose)
}

func (h *curtainHandle) Stop(ctx context.Context) error {
	return h.driver.execChecked(ctx, h.opts, keyCurtainStop)
}

func (h *curtainHandle) SetPosition(ctx context.Context, percent int) error {
	return h.driver.execChecked(ctx, h.opts, curtainPositionKey(percent))
}

func (h *curtainHandle) BasicInfo(ctx context.Context) (switchbot.BasicDeviceInfo, error) {
	resp, err := h.driver.exec(ctx, h.opts, keyBasicInfo)
	if err != nil {
		return switchbot.BasicDeviceInfo{}, err
	}
	return parseBasicInfo(resp, true)
}
