package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("expected the console logger to be enabled")
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Warn().Str("file", "BE01_budget.csv").Msg("skipping file")

	out := buf.String()
	if !strings.Contains(out, `"file":"BE01_budget.csv"`) {
		t.Errorf("log output missing field: %s", out)
	}
	if !strings.Contains(out, "skipping file") {
		t.Errorf("log output missing message: %s", out)
	}
}
