package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetDebug(t *testing.T) {
	SetDebug(false)
	if IsEnabled() {
		t.Error("debug should be disabled")
	}
	SetDebug(true)
	if !IsEnabled() {
		t.Error("debug should be enabled")
	}
	SetDebug(false)
}

func TestDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetNoColor(true)
	SetDebug(true)
	defer func() {
		SetDebug(false)
		SetOutput(nil)
	}()

	Debug("scanned %d segments", 3)
	DebugValue("slot", "file-0")
	DebugSection("refresh")

	got := buf.String()
	for _, want := range []string{"[DEBUG]", "scanned 3 segments", "slot = file-0", "=== refresh ==="} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q, got: %s", want, got)
		}
	}
}

func TestDebugDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetDebug(false)
	defer SetOutput(nil)

	Debug("hidden")
	DebugJSON("value", map[string]int{"a": 1})

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
