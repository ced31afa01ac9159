package service

import (
	"errors"
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) (string, error)
		in   string
		ok   bool
	}{
		{"server id", ValidateServerID, "abc-123", true},
		{"server id spaces trimmed", ValidateServerID, "  abc  ", true},
		{"server id bad chars", ValidateServerID, "abc_123", false},
		{"server id empty", ValidateServerID, "", false},
		{"display name", ValidateDisplayName, "EU #1", true},
		{"display name empty", ValidateDisplayName, "   ", false},
		{"display name 50", ValidateDisplayName, strings.Repeat("é", 50), true},
		{"display name 51", ValidateDisplayName, strings.Repeat("a", 51), false},
		{"token", ValidateToken, "0123456789", true},
		{"token short", ValidateToken, "012345678", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("err = %v, want ok=%v", err, tc.ok)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Fatalf("err %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestUpdateFieldPatch(t *testing.T) {
	if _, ok := ParseUpdateField("7"); ok {
		t.Fatal("7 should be rejected")
	}
	if _, ok := ParseUpdateField("12"); ok {
		t.Fatal("12 should be rejected")
	}
	f, ok := ParseUpdateField(" 3 ")
	if !ok || f != FieldAPIToken || f.Label() != "API Token" {
		t.Fatalf("ParseUpdateField(3) = %v %v", f, ok)
	}
	if _, err := f.Patch("short"); err == nil {
		t.Fatal("short token accepted")
	}
	p, err := FieldOnlineListChannel.Patch("123")
	if err != nil || p.OnlineListChannelID == nil || *p.OnlineListChannelID != "123" {
		t.Fatalf("channel patch = %+v, %v", p, err)
	}
	if !FieldRconTerminalChannel.IsChannel() || FieldDisplayName.IsChannel() {
		t.Fatal("IsChannel mismatch")
	}
}
