package logging

import (
	"errors"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{FatalLevel, "FATAL"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	logger := NewDefaultLoggerNoColor()

	msg := logger.formatMessage(InfoLevel, nil, "render finished", Fields{"events": 11})
	if !strings.Contains(msg, "[INFO]") || !strings.Contains(msg, "render finished") {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "events") {
		t.Errorf("fields missing from %q", msg)
	}

	withErr := logger.formatMessage(ErrorLevel, errors.New("boom"), "stage failed")
	if !strings.Contains(withErr, "boom") {
		t.Errorf("error missing from %q", withErr)
	}
}

func TestWithFieldsMergesAndIsolates(t *testing.T) {
	base := NewDefaultLoggerNoColor()
	derived := base.WithFields(Fields{"run_id": "abc"}).(*DefaultLogger)

	msg := derived.formatMessage(InfoLevel, nil, "x", Fields{"stage": "synthesis"})
	if !strings.Contains(msg, "run_id") || !strings.Contains(msg, "stage") {
		t.Errorf("merged fields missing from %q", msg)
	}

	// The parent keeps its own field set
	if len(base.fields) != 0 {
		t.Errorf("WithFields mutated the parent logger: %v", base.fields)
	}
}

func TestGlobalLoggerSwap(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	noop := NewNoOpLogger()
	SetGlobalLogger(noop)
	if GetGlobalLogger() != noop {
		t.Error("SetGlobalLogger did not take effect")
	}

	// nil falls back to the no-op logger instead of panicking
	SetGlobalLogger(nil)
	GetGlobalLogger().Info("still alive")
}
