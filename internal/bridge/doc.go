// Package bridge wires the command callback engine to a live MQTT
// connection.
//
// The bridge subscribes every entry of the engine's dispatch table,
// announces availability on {prefix}switchbot-mqtt/status (retained
// "online" on start, "offline" on stop, with the connection's last will
// covering crashes), and dispatches each inbound message to its handler
// in a separate goroutine. Two commands for the same device may therefore
// run concurrently; serializing access to the radio is the device
// driver's concern, not the bridge's.
//
// The bridge does not reconnect: connection management, backoff, and
// re-subscription after reconnect belong to the infrastructure MQTT
// client it is given.
package bridge
