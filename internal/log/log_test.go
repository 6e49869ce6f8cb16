package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	for _, want := range []string{"ts=", "level=info", "msg=hello", "user=test"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line, got %q", want, line)
		}
	}
}

func TestRequestIDIsAppended(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "req-42")
	Warn(ctx, "slow provider", "provider", "usda")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "level=warn") {
		t.Fatalf("expected warn level, got %q", line)
	}
	if !strings.Contains(line, "request_id=req-42") {
		t.Fatalf("expected request id in log line, got %q", line)
	}
	if got := RequestID(ctx); got != "req-42" {
		t.Fatalf("RequestID() = %q, want req-42", got)
	}
}

func TestRequestIDSurvivesWith(t *testing.T) {
	buf := captureLogs(t)

	l := Logger().With("component", "store")
	l.InfoContext(WithRequestID(context.Background(), "abc"), "query")

	line := buf.String()
	if !strings.Contains(line, "component=store") || !strings.Contains(line, "request_id=abc") {
		t.Fatalf("expected component and request id, got %q", line)
	}
}

func TestSetLevel(t *testing.T) {
	buf := captureLogs(t)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "INFO"},
		{level: "warn"},
		{level: " error "},
		{level: ""},
		{level: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		err := SetLevel(tt.level)
		if (err != nil) != tt.wantErr {
			t.Fatalf("SetLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
		}
	}

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) returned %v", err)
	}
	Warn(context.TODO(), "hidden")
	Error(context.TODO(), "shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("warn record should be filtered at error level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Fatalf("expected error record, got %q", out)
	}
}
