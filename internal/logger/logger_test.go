package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, LogConfig{Level: "INFO", Format: "json"}); err != nil {
		t.Fatalf("init: %v", err)
	}

	Trade(context.Background(), "AAPL", "BUY", 1, 189.5, "SIM-1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "Trade executed" {
		t.Errorf("unexpected msg %v", line["msg"])
	}
	if line["symbol"] != "AAPL" || line["order_id"] != "SIM-1" {
		t.Errorf("missing trade fields: %v", line)
	}
	if _, ok := line["trace_id"]; ok {
		t.Error("trace_id should be absent while tracing is disabled")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, LogConfig{Level: "ERROR", Format: "text"}); err != nil {
		t.Fatalf("init: %v", err)
	}

	Info(context.Background(), "quiet")
	Warn(context.Background(), "quiet too")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below ERROR, got %q", buf.String())
	}

	ErrorWithErrSkip(context.Background(), 1, "loud", errors.New("boom"))
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("expected error text in output, got %q", buf.String())
	}
}

func TestDebugRequiresDetailedLogging(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, LogConfig{Level: "DEBUG", Format: "text"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written without LOG_DETAILED: %q", buf.String())
	}

	buf.Reset()
	_ = InitWithWriter(&buf, LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true})
	DebugSkip(context.Background(), 0, "shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) || !bytes.Contains(buf.Bytes(), []byte("source")) {
		t.Errorf("expected debug line with source, got %q", buf.String())
	}
}

func TestOperationTimer(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !IsDebugEnabled() {
		t.Fatal("detailed logging should be on")
	}
	if IsTracingEnabled() {
		t.Fatal("tracing should be off")
	}

	ctx := context.Background()
	op := StartOperation(ctx, "marketdata.Lookup", "symbol", "AAPL")
	if op.GetContext() == nil {
		t.Fatal("operation context is nil")
	}
	op.End("resolved", true)
	out := buf.String()
	for _, want := range []string{"Operation started", "Operation completed", "symbol=AAPL", "resolved=true", "duration_ms="} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}

	buf.Reset()
	op = StartOperation(ctx, "engine.RunCycle")
	op.EndWithError(errors.New("quote timeout"), "kind", "transient")
	out = buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "quote timeout") || !strings.Contains(out, "kind=transient") {
		t.Errorf("expected an error line for the failed operation, got %q", out)
	}
}

func TestWarnSkipAndDebugFlag(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, LogConfig{Level: "WARN", Format: "text"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if IsDebugEnabled() {
		t.Error("detailed logging should be off")
	}

	WarnSkip(context.Background(), 0, "lookup degraded", "symbol", "MSFT")
	if !strings.Contains(buf.String(), "lookup degraded") || !strings.Contains(buf.String(), "symbol=MSFT") {
		t.Errorf("expected warning line, got %q", buf.String())
	}

	buf.Reset()
	op := StartOperation(context.Background(), "quiet.Op")
	op.End()
	if buf.Len() != 0 {
		t.Errorf("successful operations log at debug only, got %q", buf.String())
	}
}
