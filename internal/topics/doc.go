// Package topics implements the MQTT topic grammar used by switchbot-bridge.
//
// A topic pattern is an ordered sequence of levels, each either a literal
// string or the MAC address placeholder. Patterns are compile-time constants
// owned by the actor kinds; this package only knows how to render them to
// concrete topic strings and how to parse inbound topics back into
// placeholder bindings.
//
// # Rendering
//
// Render joins the pattern levels with "/" and prepends the configured
// topic prefix verbatim. No separator is inserted, so a prefix that wants
// one must carry its own trailing "/" (the historic default is
// "homeassistant/").
//
//	p := topics.Pattern{topics.Literal("switch"), topics.Literal("switchbot"),
//	    topics.MACAddress, topics.Literal("set")}
//	p.Render("homeassistant/", "aa:bb:cc:dd:ee:ff")
//	// homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/set
//
// For broker subscriptions the placeholder renders as the MQTT single-level
// wildcard "+" instead.
//
// # Parsing
//
// Parse is the inverse of Render: it strips the expected prefix, splits the
// remainder into levels, requires exact arity and literal equality, and
// returns the value bound to the MAC placeholder. Parse performs no MAC
// validation; ValidMACAddress is a separate gate applied by callers.
//
// Both operations are pure functions.
package topics
