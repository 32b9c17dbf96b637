package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Error("messages below min level should be filtered")
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Error("messages at or above min level should be logged")
	}
}

func TestLogger_ComponentAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	scoped := logger.WithComponent("vectorindex").WithTraceID("abc-123")
	scoped.Info("loaded", map[string]interface{}{"records": 42})

	out := buf.String()
	if !strings.Contains(out, "[vectorindex]") {
		t.Errorf("expected component in output: %s", out)
	}
	if !strings.Contains(out, "trace=abc-123") {
		t.Errorf("expected trace ID in output: %s", out)
	}
	if !strings.Contains(out, "records=42") {
		t.Errorf("expected field in output: %s", out)
	}
}

func TestLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.SearchCompleted("semantic", "job", 3, 5*time.Millisecond)
	logger.Indexed(10, time.Millisecond)
	logger.RequestCompleted("GET", "/v1/search", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"search_completed", "indexed", "request_completed", "hits=3", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output: %s", want, out)
		}
	}
}
