package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_JSON_IncludesBaseAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "vet-clinic", Writer: &buf})

	l.With(Fields{"request_id": "r-1"}).Info("login ok", Fields{"user_id": "u-1", "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if entry["app"] != "vet-clinic" || entry["request_id"] != "r-1" || entry["user_id"] != "u-1" {
		t.Fatalf("missing fields: %#v", entry)
	}
	if entry["err"] != "boom" {
		t.Fatalf("expected error rendered as string, got %#v", entry["err"])
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Writer: &buf})

	l.Info("hidden", nil)
	l.Warn("shown", Fields{"k": "v"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("got %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
