// Package mqtt provides MQTT client connectivity for switchbot-bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for availability reporting
//   - Connection health monitoring
//
// # Architecture
//
// The bridge sits between an MQTT broker (typically the one Home Assistant
// uses) and SwitchBot devices reached over Bluetooth Low Energy:
//
//	Home Assistant ↔ MQTT Broker ↔ switchbot-bridge ↔ BLE devices
//
// Commands arrive on .../set topics; state flows back on retained .../state
// topics. Availability is a retained "online"/"offline" payload on
// {prefix}switchbot-mqtt/status, with "offline" doubling as the LWT so a
// crashed bridge is indistinguishable from a cleanly stopped one.
//
// # Security Considerations
//
//   - TLS is the default (port 8883); disable only for local brokers
//   - Credentials come from config, a password file, or the environment
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe("homeassistant/switch/switchbot/+/set", 1,
//	    func(msg mqtt.Message) error {
//	        log.Printf("Received: %s = %s", msg.Topic, msg.Payload)
//	        return nil
//	    })
package mqtt
