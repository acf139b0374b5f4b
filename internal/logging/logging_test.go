package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	logger.Warn("shown", "key", "todo_app_tasks")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=todo_app_tasks") {
		t.Errorf("expected warn line with field, got %q", out)
	}
	if !strings.Contains(out, Prefix) {
		t.Errorf("expected prefix %q in %q", Prefix, out)
	}
}

func TestNew_Debug(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}
