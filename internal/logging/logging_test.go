package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 1") || !strings.Contains(out, "[ERROR] shown 2") {
		t.Errorf("missing expected lines in %q", out)
	}
}

func TestLoggerFieldsSortedAndShared(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: LevelDebug, Output: &buf, Prefix: "test"})
	child := root.WithComponent("bridge").WithField("ext", "acme.go")

	child.Info("hello")
	if !strings.Contains(buf.String(), "test: hello {component=bridge, ext=acme.go}") {
		t.Errorf("unexpected line %q", buf.String())
	}

	buf.Reset()
	root.SetLevel(LevelError)
	child.Info("after")
	if buf.Len() != 0 {
		t.Errorf("child should follow parent's level, got %q", buf.String())
	}
	if child.Enabled(LevelInfo) {
		t.Error("Enabled should report false below the level")
	}
}

func TestNullLogger(t *testing.T) {
	l := Null()
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("null logger should never be enabled")
	}
	var nilLogger *Logger
	nilLogger.Info("no panic")
}
