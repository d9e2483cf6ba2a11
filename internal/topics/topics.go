package topics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTopicMismatch is returned by Parse when a topic does not match the
// expected prefix and pattern. Receiving foreign topics is expected
// background noise on a shared broker, so callers typically log at warning
// level and drop the message.
var ErrTopicMismatch = errors.New("topics: topic does not match pattern")

// Wildcard is the MQTT single-level wildcard substituted for the MAC
// placeholder when rendering subscription patterns.
const Wildcard = "+"

// Level is a single level of a topic pattern: either a literal string or
// the MAC address placeholder.
type Level struct {
	literal     string
	placeholder bool
}

// Literal returns a pattern level matching the given string exactly.
func Literal(s string) Level {
	return Level{literal: s}
}

// MACAddress is the placeholder level bound to a device MAC address.
// A pattern contains at most one placeholder level.
var MACAddress = Level{placeholder: true}

// IsPlaceholder reports whether the level is the MAC address placeholder.
func (l Level) IsPlaceholder() bool {
	return l.placeholder
}

// Pattern is an ordered sequence of topic levels. Patterns are immutable
// once constructed; the actor kinds define them as package-level constants.
type Pattern []Level

// Render joins the pattern levels with "/", substituting mac for the
// placeholder level, and prepends prefix by plain string concatenation.
func (p Pattern) Render(prefix, mac string) string {
	parts := make([]string, len(p))
	for i, level := range p {
		if level.placeholder {
			parts[i] = mac
		} else {
			parts[i] = level.literal
		}
	}
	return prefix + strings.Join(parts, "/")
}

// SubscribePattern renders the pattern with the MAC placeholder replaced by
// the MQTT single-level wildcard, suitable for broker subscription.
func (p Pattern) SubscribePattern(prefix string) string {
	return p.Render(prefix, Wildcard)
}

// Parse matches topic against the pattern under the given prefix and
// returns the value bound to the MAC address placeholder.
//
// It fails with ErrTopicMismatch when the topic does not start with the
// prefix, when the remaining level count differs from the pattern's, or
// when any literal level differs. The bound value is returned verbatim;
// callers validate it separately (see ValidMACAddress).
func (p Pattern) Parse(topic, prefix string) (string, error) {
	if !strings.HasPrefix(topic, prefix) {
		return "", fmt.Errorf("%w: expected prefix %q, got topic %q", ErrTopicMismatch, prefix, topic)
	}
	levels := strings.Split(topic[len(prefix):], "/")
	if len(levels) != len(p) {
		return "", fmt.Errorf("%w: unexpected topic %q", ErrTopicMismatch, topic)
	}
	var mac string
	for i, expected := range p {
		if expected.placeholder {
			mac = levels[i]
			continue
		}
		if levels[i] != expected.literal {
			return "", fmt.Errorf("%w: unexpected topic %q", ErrTopicMismatch, topic)
		}
	}
	return mac, nil
}
