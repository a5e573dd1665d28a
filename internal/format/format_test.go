package format

import (
	"testing"
	"time"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1024, "1.0 KiB"},
		{4 * 1024 * 1024 * 1024, "4.0 GiB"},
	}
	for _, tt := range tests {
		if got := Bytes(tt.in); got != tt.want {
			t.Errorf("Bytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRate(t *testing.T) {
	if got := Rate(1536 * 1024); got != "1.5 MiB/s" {
		t.Errorf("Rate = %q, want 1.5 MiB/s", got)
	}
	if got := Rate(-5); got != "0 B/s" {
		t.Errorf("Rate of negative = %q, want 0 B/s", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(42.55); got != "42.5%" && got != "42.6%" {
		t.Errorf("Percent(42.55) = %q", got)
	}
	if got := Percent(0); got != "0.0%" {
		t.Errorf("Percent(0) = %q, want 0.0%%", got)
	}
}

func TestUptime(t *testing.T) {
	tests := []struct {
		seconds uint64
		want    string
	}{
		{59, "0m"},
		{180, "3m"},
		{3 * 3600, "3h 0m"},
		{86400 + 2*3600 + 300, "1d 2h 5m"},
	}
	for _, tt := range tests {
		if got := Uptime(tt.seconds); got != tt.want {
			t.Errorf("Uptime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
		{2 * time.Hour, "2h"},
	}
	for _, tt := range tests {
		if got := Duration(tt.d); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := TruncateWithEllipsis("short", 30); got != "short" {
		t.Errorf("got %q, want unchanged", got)
	}
	if got := TruncateWithEllipsis("AMD Ryzen 9 7950X 16-Core Processor", 20); got != "AMD Ryzen 9 7950X..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("abcdef", 3); got != "abc" {
		t.Errorf("got %q, want hard truncation", got)
	}
	if got := TruncateWithEllipsis("abc", 0); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
