package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("expected default, got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := ParseIntDefault("x", 7); got != 7 {
		t.Fatalf("expected default on invalid, got %d", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(150, 0, 100); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := ClampInt(-3, 0, 100); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := ClampInt(55, 0, 100); got != 55 {
		t.Fatalf("expected 55, got %d", got)
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(1.2, 0, 1); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := ClampFloat(-0.2, 0, 1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
