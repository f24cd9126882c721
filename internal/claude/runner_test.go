package claude

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

// writeStub crea un binario falso que imita al CLI en los tests.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func newTestRunner(t *testing.T, stubScript string, timeout time.Duration) *CLIRunner {
	t.Helper()
	bin := writeStub(t, stubScript)
	return NewCLIRunner(bin, timeout, 50, nil, zap.NewNop())
}

func TestRunParsesResultMessage(t *testing.T) {
	r := newTestRunner(t, `
echo '{"type":"system","subtype":"init"}'
echo 'this line is not json and must be skipped'
echo '{"type":"assistant"}'
echo '{"type":"result","subtype":"success","result":"hello there","session_id":"sess-abc","cost_usd":0.0042,"duration_ms":1200,"num_turns":1,"is_error":false}'
`, 10*time.Second)

	res, err := r.Run(context.Background(), Request{Prompt: "Say hello", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Content != "hello there" {
		t.Fatalf("unexpected content: %q", res.Content)
	}
	if res.SessionID != "sess-abc" {
		t.Fatalf("unexpected session id: %q", res.SessionID)
	}
	if res.Cost != 0.0042 || res.DurationMS != 1200 {
		t.Fatalf("unexpected usage: %+v", res)
	}
	if r.ActiveProcesses() != 0 {
		t.Fatalf("process still tracked after completion")
	}
}

func TestRunTimeoutKillsProcess(t *testing.T) {
	r := newTestRunner(t, "sleep 30", 100*time.Millisecond)

	start := time.Now()
	_, err := r.Run(context.Background(), Request{Prompt: "slow", WorkDir: t.TempDir()})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed > 10*time.Second {
		t.Fatalf("run did not return promptly after timeout: %s", elapsed)
	}
	if r.ActiveProcesses() != 0 {
		t.Fatalf("timed out process still tracked")
	}
}

func TestRunClassifiesAuthFailure(t *testing.T) {
	r := newTestRunner(t, `
echo "Error: not authenticated. Run claude setup-token." >&2
exit 1
`, 10*time.Second)

	_, err := r.Run(context.Background(), Request{Prompt: "hi", WorkDir: t.TempDir()})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestRunClassifiesInvalidSession(t *testing.T) {
	r := newTestRunner(t, `
echo "Error: could not resume session sess-old" >&2
exit 1
`, 10*time.Second)

	_, err := r.Run(context.Background(), Request{Prompt: "hi", ResumeSessionID: "sess-old", WorkDir: t.TempDir()})
	if !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestRunNoResultMessage(t *testing.T) {
	r := newTestRunner(t, `echo '{"type":"assistant"}'`, 10*time.Second)

	_, err := r.Run(context.Background(), Request{Prompt: "hi", WorkDir: t.TempDir()})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := NewCLIRunner(filepath.Join(t.TempDir(), "does-not-exist"), time.Second, 50, nil, zap.NewNop())

	_, err := r.Run(context.Background(), Request{Prompt: "hi", WorkDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error for missing binary")
	}
}
