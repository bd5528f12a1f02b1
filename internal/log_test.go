package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		"Warning": LogLevelWarn,
		" info ":  LogLevelInfo,
		"debug":   LogLevelDebug,
		"TRACE":   LogLevelTrace,
	}
	for in, want := range cases {
		got, ok := ParseLogLevel(in)
		if !ok || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseLogLevel("verbose"); ok {
		t.Error("expected unknown level to be rejected")
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	l := NewLogger(LogLevelInfo)
	l.Info("level %d", 1)
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "[INFO] level 1") {
		t.Errorf("missing info line in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked at info level: %q", out)
	}
	if l.GetLevel().String() != "INFO" {
		t.Errorf("unexpected level name %s", l.GetLevel())
	}
}
