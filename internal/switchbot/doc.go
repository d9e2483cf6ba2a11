// Package switchbot defines the device capability consumed by the actor
// layer: the operations a SwitchBot Bot (on/off switch) or Curtain motor
// supports, the basic-info snapshot both can report, and the per-device
// password store.
//
// The package deliberately contains no Bluetooth code. The actor layer
// programs against the Switch, Curtain, and Factory interfaces; the
// concrete BLE driver lives in the ble subpackage and is wired in by the
// entry point. Tests substitute their own fakes.
//
// # Failure modes
//
// Device operations return an error on failure; the retry budget lives
// inside the driver, so a returned error means the budget is exhausted.
// ErrBluetoothPermission is a distinct, actionable failure: the OS denied
// the privileges the Bluetooth stack needs, and retrying without fixing
// the capability setup cannot succeed. Callers detect it with errors.Is.
package switchbot
