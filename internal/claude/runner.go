package claude

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request describe un turno a ejecutar contra el CLI.
type Request struct {
	Prompt          string
	ResumeSessionID string
	WorkDir         string
}

// Result es la salida tipada de una invocacion exitosa.
type Result struct {
	Content    string
	SessionID  string
	Cost       float64
	DurationMS int64
	NumTurns   int
}

// Runner ejecuta un turno contra el CLI externo.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

const (
	// El stream-json puede traer lineas grandes; el scanner arranca en 64KB
	// y crece hasta este limite.
	initialLineBuffer = 64 * 1024
	maxLineBuffer     = 1024 * 1024

	killGracePeriod = 5 * time.Second
)

// CLIRunner implementa Runner lanzando exactamente un subproceso por turno.
// Los procesos vivos quedan registrados para poder matarlos en el shutdown.
type CLIRunner struct {
	binaryPath   string
	timeout      time.Duration
	maxTurns     int
	allowedTools []string
	logger       *zap.Logger

	mu     sync.Mutex
	active map[string]*exec.Cmd
}

// NewCLIRunner construye el runner para un binario concreto.
func NewCLIRunner(binaryPath string, timeout time.Duration, maxTurns int, allowedTools []string, logger *zap.Logger) *CLIRunner {
	return &CLIRunner{
		binaryPath:   binaryPath,
		timeout:      timeout,
		maxTurns:     maxTurns,
		allowedTools: allowedTools,
		logger:       logger,
		active:       make(map[string]*exec.Cmd),
	}
}

func (r *CLIRunner) Run(ctx context.Context, req Request) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := buildArgs(req.Prompt, req.ResumeSessionID, r.maxTurns, r.allowedTools)

	cmd := exec.CommandContext(runCtx, r.binaryPath, args...)
	cmd.Dir = req.WorkDir
	// Si el kill del contexto no alcanza, Wait no puede quedarse colgado.
	cmd.WaitDelay = killGracePeriod

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.binaryPath, err)
	}

	processID := uuid.NewString()
	r.track(processID, cmd)
	defer r.untrack(processID)

	r.logger.Info("claude process started",
		zap.String("process_id", processID),
		zap.String("work_dir", req.WorkDir),
		zap.Bool("resume", req.ResumeSessionID != ""),
	)

	var result *streamMessage
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineBuffer)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg streamMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			r.logger.Warn("skipping unparseable stream line",
				zap.String("process_id", processID),
				zap.Error(err),
			)
			continue
		}
		if msg.Type == "result" {
			captured := msg
			result = &captured
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()

	switch runCtx.Err() {
	case context.DeadlineExceeded:
		r.logger.Error("claude process timed out",
			zap.String("process_id", processID),
			zap.Duration("timeout", r.timeout),
		)
		return nil, &TimeoutError{Limit: r.timeout}
	case context.Canceled:
		return nil, fmt.Errorf("claude invocation canceled: %w", context.Canceled)
	}

	if scanErr != nil {
		return nil, fmt.Errorf("read claude output: %w", scanErr)
	}

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		failure := classifyFailure(exitCode, stderr.String())
		r.logger.Error("claude process failed",
			zap.String("process_id", processID),
			zap.Int("exit_code", exitCode),
			zap.Error(failure),
		)
		return nil, failure
	}

	if result == nil {
		return nil, ErrNoResult
	}

	parsed, err := parseResult(result)
	if err != nil {
		return nil, err
	}

	r.logger.Info("claude process completed",
		zap.String("process_id", processID),
		zap.String("session_id", parsed.SessionID),
		zap.Float64("cost", parsed.Cost),
		zap.Int64("duration_ms", parsed.DurationMS),
		zap.Int("num_turns", parsed.NumTurns),
	)

	return parsed, nil
}

func (r *CLIRunner) track(id string, cmd *exec.Cmd) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = cmd
}

func (r *CLIRunner) untrack(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// ActiveProcesses devuelve cuantos subprocesos siguen vivos.
func (r *CLIRunner) ActiveProcesses() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Shutdown mata todos los subprocesos vivos. Los Run en vuelo reciben el
// fallo por su propio Wait.
func (r *CLIRunner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("killing active claude processes", zap.Int("count", len(r.active)))
	for id, cmd := range r.active {
		if cmd.Process == nil {
			continue
		}
		if err := cmd.Process.Kill(); err != nil {
			r.logger.Warn("failed to kill claude process",
				zap.String("process_id", id),
				zap.Error(err),
			)
		}
	}
	r.active = make(map[string]*exec.Cmd)
}
