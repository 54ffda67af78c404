package stderr

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/strongdm/ai-eventsink/pkg/eventsink/report"
)

func TestStderrSink_ImplementsSinkInterface(t *testing.T) {
	var _ report.Sink = NewStderrSink()
}

func captureStderr(fn func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	os.Stderr = old
	return buf.String()
}

func TestStderrSink_Write_FormatsOutput(t *testing.T) {
	sink := NewStderrSink()
	contextID := uint64(12345)

	failure := report.Failure{
		ID:          "f-123",
		Timestamp:   time.Date(2025, 1, 26, 15, 4, 5, 0, time.UTC),
		Fingerprint: "abc123def456",
		Severity:    report.SeverityError,
		Kind:        report.KindError,
		ErrorType:   "*net.OpError",
		Message:     "dial tcp: connection refused",
		Source:      "orders",
		ContextID:   &contextID,
	}

	output := captureStderr(func() {
		sink.Write(context.Background(), failure)
	})

	for _, want := range []string{
		"[EVENTSINK]",
		"2025-01-26T15:04:05Z",
		"ERROR",
		"*net.OpError",
		"(source: orders)",
		"Message: dial tcp: connection refused",
		"Fingerprint: abc123def456",
		"Context: 12345",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q, got:\n%s", want, output)
		}
	}
}

func TestStderrSink_WithWriter(t *testing.T) {
	var buf bytes.Buffer
	sink := NewStderrSink(WithWriter(&buf))

	output := captureStderr(func() {
		sink.Write(context.Background(), report.Failure{Severity: report.SeverityWarning, Kind: report.KindError})
	})

	if output != "" {
		t.Errorf("Nothing should reach stderr, got %q", output)
	}
	if !strings.Contains(buf.String(), "WARNING") {
		t.Errorf("Writer should receive the failure, got %q", buf.String())
	}
}

func TestStderrSink_StackTraceOnlyWhenVerbose(t *testing.T) {
	failure := report.Failure{
		Severity:   report.SeverityCrash,
		Kind:       report.KindPanic,
		Message:    "panic: boom",
		StackTrace: "goroutine 1 [running]:\nmain.main()\n\t/app/main.go:10",
	}

	tests := []struct {
		name    string
		opts    []StderrSinkOption
		wantSTK bool
	}{
		{"verbose", []StderrSinkOption{WithVerbose()}, true},
		{"quiet", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewStderrSink(append(tt.opts, WithWriter(&buf))...)
			if err := sink.Write(context.Background(), failure); err != nil {
				t.Fatalf("Write returned error: %v", err)
			}
			if got := strings.Contains(buf.String(), "main.main()"); got != tt.wantSTK {
				t.Errorf("stack trace present = %v, want %v", got, tt.wantSTK)
			}
		})
	}
}

func TestStderrSink_SeverityFormatting(t *testing.T) {
	tests := []struct {
		severity report.Severity
		want     string
	}{
		{report.SeverityWarning, "WARNING"},
		{report.SeverityError, "ERROR"},
		{report.SeverityCrash, "CRASH"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewStderrSink(WithWriter(&buf))
			sink.Write(context.Background(), report.Failure{Severity: tt.severity})
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Output should contain %q for severity %q", tt.want, tt.severity)
			}
		})
	}
}

func TestStderrSink_FlushAndClose(t *testing.T) {
	sink := NewStderrSink()
	if err := sink.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
