package bridge

import "errors"

// Domain errors for the bridge package.
var (
	// ErrMQTTNotConnected is returned by Start when the MQTT client is
	// not connected to the broker.
	ErrMQTTNotConnected = errors.New("bridge: MQTT client not connected")
)
