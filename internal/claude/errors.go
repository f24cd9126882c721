package claude

import (
	"errors"
	"fmt"
	"time"
)

// Errores centinela del invoker. El handler HTTP los distingue con errors.Is
// para que el operador pueda diferenciar fallos del CLI entre si.
var (
	// ErrAuthRequired indica que el binario no tiene credenciales validas.
	ErrAuthRequired = errors.New("claude cli is not authenticated")

	// ErrSessionInvalid indica que el CLI rechazo el id de continuacion.
	ErrSessionInvalid = errors.New("claude session is no longer available")

	// ErrNoResult indica que el proceso termino sin emitir un mensaje result.
	ErrNoResult = errors.New("claude cli produced no result message")
)

// TimeoutError indica que la invocacion supero el limite configurado y el
// proceso fue terminado.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("claude cli timed out after %s", e.Limit)
}

// UsageLimitError indica que el CLI alcanzo su limite de uso.
type UsageLimitError struct {
	ResetAt string
}

func (e *UsageLimitError) Error() string {
	if e.ResetAt == "" {
		return "claude usage limit reached"
	}
	return fmt.Sprintf("claude usage limit reached, resets at %s", e.ResetAt)
}

// ExecError indica salida no-cero o un result con is_error del CLI.
type ExecError struct {
	ExitCode int
	Detail   string
}

func (e *ExecError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("claude cli exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("claude cli exited with code %d: %s", e.ExitCode, e.Detail)
}
