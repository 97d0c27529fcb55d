package logic

import (
	"strings"
	"unicode"
)

// MaxTokenLen is the longest RFID token considered, in bytes.
const MaxTokenLen = 63

// CleanToken cuts raw at the first CR or LF, drops any remaining control
// characters and truncates the result to MaxTokenLen bytes.
func CleanToken(raw string) string {
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	if len(raw) > MaxTokenLen {
		raw = raw[:MaxTokenLen]
	}
	return raw
}

// RFIDMatcher compares tokens read from the tag reader against a secret tag.
type RFIDMatcher struct {
	secret string
}

// NewRFIDMatcher creates a matcher for the given tag.
func NewRFIDMatcher(secret string) *RFIDMatcher {
	return &RFIDMatcher{secret: secret}
}

// Check cleans token and compares it byte-for-byte (case-sensitive) with the
// secret. Tokens that are empty after cleaning produce no decision (ok=false).
func (m *RFIDMatcher) Check(token string) (outcome Outcome, ok bool) {
	token = CleanToken(token)
	if token == "" {
		return "", false
	}
	if token == m.secret {
		return OutcomeGranted, true
	}
	return OutcomeDenied, true
}
