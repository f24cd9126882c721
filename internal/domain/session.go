package domain

import "time"

// Session guarda el estado de continuacion de una conversacion con el CLI.
// SessionID es siempre el ultimo id emitido por el CLI; puede rotar en cada
// turno.
type Session struct {
	SessionID    string    `json:"session_id"`
	UserID       UserID    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastUsedAt   time.Time `json:"last_used_at"`
	TotalCost    float64   `json:"total_cost"`
	TotalTurns   int       `json:"total_turns"`
	MessageCount int       `json:"message_count"`
}

// NewSession crea el registro inicial para un id recien emitido por el CLI.
func NewSession(sessionID string, userID UserID) Session {
	now := time.Now().UTC()
	return Session{
		SessionID:  sessionID,
		UserID:     userID,
		CreatedAt:  now,
		LastUsedAt: now,
	}
}

// Touch acumula el uso de un turno sobre la sesion.
func (s *Session) Touch(cost float64, turns int) {
	s.LastUsedAt = time.Now().UTC()
	s.TotalCost += cost
	s.TotalTurns += turns
	s.MessageCount++
}
