package logic

import (
	"strings"
	"testing"
)

func TestRFIDCheck(t *testing.T) {
	m := NewRFIDMatcher("5A5992")

	tests := []struct {
		token  string
		want   Outcome
		wantOK bool
	}{
		{"5A5992", OutcomeGranted, true},
		{"5a5992", OutcomeDenied, true},
		{"5A59920", OutcomeDenied, true},
		{"5A599", OutcomeDenied, true},
		{"5A5992\r\n", OutcomeGranted, true},
		{"", "", false},
		{"\r\n", "", false},
		{"\x00\x07", "", false},
	}
	for _, tt := range tests {
		got, ok := m.Check(tt.token)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Check(%q): got (%s, %v), want (%s, %v)", tt.token, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5A5992", "5A5992"},
		{"5A5992\r\n", "5A5992"},
		{"5A5992\n", "5A5992"},
		{"5A59\r92", "5A59"},
		{"\x025A5992\x03", "5A5992"},
		{"\r\n", ""},
		{"  5A5992", "  5A5992"},
	}
	for _, tt := range tests {
		if got := CleanToken(tt.in); got != tt.want {
			t.Errorf("CleanToken(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanTokenTruncates(t *testing.T) {
	long := strings.Repeat("A", MaxTokenLen+10)
	got := CleanToken(long)
	if len(got) != MaxTokenLen {
		t.Errorf("expected %d bytes, got %d", MaxTokenLen, len(got))
	}
}
