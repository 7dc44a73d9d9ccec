package generate

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  1. A sensor comprising a light source.  ", "1. A sensor comprising a light source."},
		{"code fence", "```\nA sensor.\n```", "A sensor."},
		{"tagged fence", "```text\nA sensor.\n```", "A sensor."},
		{"preamble", "Here is the section:\nA sensor.", "A sensor."},
		{"cjk kept", "一种便携式光学传感器。", "一种便携式光学传感器。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanContent(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCleanContent_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "```\n\n```"} {
		if _, err := CleanContent(raw); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("raw=%q: expected ErrEmptyContent, got %v", raw, err)
		}
	}
}

func TestCleanContent_Caps(t *testing.T) {
	got, err := CleanContent(strings.Repeat("传", MaxContentRunes+10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(got); n != MaxContentRunes {
		t.Errorf("expected %d runes, got %d", MaxContentRunes, n)
	}
}
