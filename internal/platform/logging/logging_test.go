package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"biochar/internal/platform/logging"
)

func TestNewHonoursLevel(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New("info", buf)
	logger.Debug("hidden")
	logger.Info("batch started", "batch_id", "b-1")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
	if !strings.Contains(out, "batch started") || !strings.Contains(out, "batch_id=b-1") {
		t.Fatalf("expected info line with fields, got %s", out)
	}
}

func TestUnknownLevelFallsBackToWarn(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	logger := logging.New("loud", buf)
	logger.Info("skipped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "skipped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	logging.OrNull(nil).Error("discarded")
}
