package claude

import (
	"context"
	"sync"
)

// MockRunner permite tests sin invocar el binario real. Registra cada
// Request recibido.
type MockRunner struct {
	Result *Result
	Err    error

	mu    sync.Mutex
	calls []Request
}

func (m *MockRunner) Run(_ context.Context, req Request) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	res := *m.Result
	return &res, nil
}

// Calls devuelve una copia de los requests recibidos.
func (m *MockRunner) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

// LastCall devuelve el ultimo request, si hubo alguno.
func (m *MockRunner) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}
