package topics

import (
	"errors"
	"testing"
)

var commandPattern = Pattern{
	Literal("switch"),
	Literal("switchbot"),
	MACAddress,
	Literal("set"),
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		mac    string
		want   string
	}{
		{
			name:   "with prefix",
			prefix: "homeassistant/",
			mac:    "aa:bb:cc:dd:ee:ff",
			want:   "homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/set",
		},
		{
			name:   "empty prefix",
			prefix: "",
			mac:    "aa:bb:cc:dd:ee:ff",
			want:   "switch/switchbot/aa:bb:cc:dd:ee:ff/set",
		},
		{
			name:   "prefix without trailing slash is concatenated verbatim",
			prefix: "home",
			mac:    "aa:bb:cc:dd:ee:ff",
			want:   "homeswitch/switchbot/aa:bb:cc:dd:ee:ff/set",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := commandPattern.Render(tt.prefix, tt.mac)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubscribePattern(t *testing.T) {
	got := commandPattern.SubscribePattern("homeassistant/")
	want := "homeassistant/switch/switchbot/+/set"
	if got != want {
		t.Errorf("SubscribePattern() = %q, want %q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	// Round-trip holds for any bound value, even one that fails MAC
	// validation, which is a separate, later step.
	macs := []string{
		"aa:bb:cc:dd:ee:ff",
		"AA:BB:CC:DD:EE:FF",
		"not-a-mac",
	}
	for _, mac := range macs {
		topic := commandPattern.Render("homeassistant/", mac)
		got, err := commandPattern.Parse(topic, "homeassistant/")
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", topic, err)
		}
		if got != mac {
			t.Errorf("Parse(%q) = %q, want %q", topic, got, mac)
		}
	}
}

func TestParseMismatch(t *testing.T) {
	tests := []struct {
		name   string
		topic  string
		prefix string
	}{
		{
			name:   "wrong prefix",
			topic:  "other/switch/switchbot/aa:bb:cc:dd:ee:ff/set",
			prefix: "homeassistant/",
		},
		{
			name:   "too few levels",
			topic:  "homeassistant/switch/switchbot/set",
			prefix: "homeassistant/",
		},
		{
			name:   "too many levels",
			topic:  "homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/set/extra",
			prefix: "homeassistant/",
		},
		{
			name:   "literal mismatch",
			topic:  "homeassistant/cover/switchbot/aa:bb:cc:dd:ee:ff/set",
			prefix: "homeassistant/",
		},
		{
			name:   "trailing literal mismatch",
			topic:  "homeassistant/switch/switchbot/aa:bb:cc:dd:ee:ff/state",
			prefix: "homeassistant/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commandPattern.Parse(tt.topic, tt.prefix)
			if !errors.Is(err, ErrTopicMismatch) {
				t.Errorf("Parse(%q) error = %v, want ErrTopicMismatch", tt.topic, err)
			}
		})
	}
}

func TestParseEmptyPrefix(t *testing.T) {
	got, err := commandPattern.Parse("switch/switchbot/aa:bb:cc:dd:ee:ff/set", "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("Parse() = %q, want %q", got, "aa:bb:cc:dd:ee:ff")
	}
}
