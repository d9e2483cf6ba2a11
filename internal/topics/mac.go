package topics

import (
	"regexp"
	"strings"
)

// macAddressRegex matches six colon-separated two-digit lowercase hex
// groups, the canonical textual form of a Bluetooth MAC address.
var macAddressRegex = regexp.MustCompile(`^[0-9a-f]{2}(:[0-9a-f]{2}){5}$`)

// ValidMACAddress reports whether s is a well-formed MAC address.
// Matching is case-insensitive (the input is lower-cased before matching)
// and has no side effects. Callers keep the original casing for
// publishing and use this purely as a gate.
func ValidMACAddress(s string) bool {
	return macAddressRegex.MatchString(strings.ToLower(s))
}
