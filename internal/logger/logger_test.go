package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/su1ph3r/effodio/pkg/types"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]hclog.Level{
		"TRACE":   hclog.Trace,
		"DEBUG":   hclog.Debug,
		"INFO":    hclog.Info,
		"":        hclog.Info,
		"WARN":    hclog.Warn,
		"ERROR":   hclog.Error,
		"VERBOSE": hclog.Info,
	}
	for in, expected := range tests {
		if got := parseLogLevel(in); got != expected {
			t.Errorf("parseLogLevel(%q) = %v, expected %v", in, got, expected)
		}
	}
}

func TestDetermineLogLevel_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	if got := determineLogLevel("ERROR"); got != hclog.Debug {
		t.Errorf("determineLogLevel with env = %v, expected Debug", got)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	cfg := types.DefaultConfig()
	cfg.Logger.JSONFormat = true

	var buf bytes.Buffer
	l := newLogger(cfg, "effodio", &buf)
	l.Info("archive analyzed", "endpoints", 3)
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, `"@message":"archive analyzed"`) {
		t.Errorf("expected JSON message, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line emitted at INFO level: %q", out)
	}
}
