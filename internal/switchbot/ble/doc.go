// Package ble implements the SwitchBot Bluetooth Low Energy driver behind
// the switchbot device capability.
//
// SwitchBot devices expose a single GATT service; commands are written to
// one characteristic and the device answers with a notification on another.
// This package encodes the vendor command keys (including the CRC-32
// password prefix), manages the connect/write/notify round-trip via
// github.com/go-ble/ble, and retries failed attempts up to the configured
// retry budget.
//
// Opening the HCI device requires CAP_NET_ADMIN on Linux. When the OS
// denies that privilege the driver reports switchbot.ErrBluetoothPermission
// instead of a generic failure so operators get actionable guidance.
package ble
