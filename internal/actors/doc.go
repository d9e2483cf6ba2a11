// Package actors translates inbound MQTT commands into SwitchBot device
// actions and device state back into retained MQTT messages.
//
// Two actor kinds exist: the switch (a SwitchBot Bot pressing a button on
// and off) and the curtain (a SwitchBot Curtain motor). Each kind owns a
// fixed table of topic patterns compatible with Home Assistant's MQTT
// Switch and Cover platforms:
//
//	switch/switchbot/{MAC}/set                          command: ON | OFF
//	switch/switchbot/{MAC}/state                        state: ON | OFF
//	switch/switchbot/{MAC}/request-device-info          refresh trigger
//	switch/switchbot/{MAC}/battery-percentage           telemetry
//	cover/switchbot-curtain/{MAC}/set                   command: OPEN | CLOSE | STOP
//	cover/switchbot-curtain/{MAC}/state                 state: opening | closing | ""
//	cover/switchbot-curtain/{MAC}/position/set-percent  command: 0-100
//	cover/switchbot-curtain/{MAC}/position              telemetry: 0-100
//	cover/switchbot-curtain/{MAC}/request-device-info   refresh trigger
//	cover/switchbot-curtain/{MAC}/battery-percentage    telemetry
//
// The Engine is the message-handling state machine. Every inbound message
// passes the same gate before any hardware is touched: retained messages
// are dropped (a stored command replayed on subscribe must not re-trigger
// an action), the topic is parsed against the binding's pattern, and the
// bound MAC address is validated. Only then is an actor constructed, fresh
// per message, with the device password looked up by MAC.
//
// State reporting is optimistic: a successful command publishes the
// expected state retained; a failed command publishes nothing, leaving the
// last retained state authoritative. Publish failures are logged and never
// fail the triggering command.
package actors
