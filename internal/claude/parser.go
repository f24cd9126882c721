package claude

import (
	"fmt"
	"regexp"
	"strings"
)

// streamMessage es una linea del stream-json del CLI. Solo el mensaje con
// type "result" alimenta la respuesta; el resto se ignora.
type streamMessage struct {
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Result       string   `json:"result"`
	SessionID    string   `json:"session_id"`
	CostUSD      *float64 `json:"cost_usd"`
	TotalCostUSD *float64 `json:"total_cost_usd"`
	DurationMS   int64    `json:"duration_ms"`
	NumTurns     int      `json:"num_turns"`
	IsError      bool     `json:"is_error"`
}

// parseResult convierte el mensaje result en un Result tipado. Un result con
// is_error es un fallo de ejecucion, nunca un exito degradado.
func parseResult(msg *streamMessage) (*Result, error) {
	if msg.IsError {
		detail := msg.Result
		if msg.Subtype != "" {
			detail = fmt.Sprintf("%s: %s", msg.Subtype, msg.Result)
		}
		return nil, &ExecError{Detail: strings.TrimSpace(detail)}
	}

	cost := 0.0
	switch {
	case msg.CostUSD != nil:
		cost = *msg.CostUSD
	case msg.TotalCostUSD != nil:
		// Versiones nuevas del CLI renombraron el campo.
		cost = *msg.TotalCostUSD
	}

	return &Result{
		Content:    msg.Result,
		SessionID:  msg.SessionID,
		Cost:       cost,
		DurationMS: msg.DurationMS,
		NumTurns:   msg.NumTurns,
	}, nil
}

var usageResetPattern = regexp.MustCompile(`(?i)reset at (\d+[apm]+)`)

// classifyFailure mapea stderr de una salida no-cero a la taxonomia de
// errores. Las frases vienen del comportamiento observado del CLI.
func classifyFailure(exitCode int, stderr string) error {
	lowered := strings.ToLower(stderr)

	for _, phrase := range []string{
		"not authenticated",
		"authentication failed",
		"setup-token",
		"no valid token found",
	} {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("%w: %s", ErrAuthRequired, truncate(stderr))
		}
	}

	for _, phrase := range []string{
		"session not found",
		"invalid session",
		"session expired",
		"could not resume",
	} {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("%w: %s", ErrSessionInvalid, truncate(stderr))
		}
	}

	if strings.Contains(lowered, "usage limit reached") {
		resetAt := ""
		if m := usageResetPattern.FindStringSubmatch(stderr); m != nil {
			resetAt = m[1]
		}
		return &UsageLimitError{ResetAt: resetAt}
	}

	return &ExecError{ExitCode: exitCode, Detail: truncate(stderr)}
}

const maxDetailLen = 2000

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDetailLen {
		return s
	}
	return s[:maxDetailLen] + "..."
}
