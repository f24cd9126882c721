package domain

import (
	"encoding/json"
	"errors"
)

// UserID identifica al caller de forma opaca; acepta string o numero en JSON.
type UserID string

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("user_id must be a string or a number")
	}
	*u = UserID(n.String())
	return nil
}

func (u UserID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(u))
}

// ChatRequest es el cuerpo de POST /api/v1/chat.
type ChatRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	SessionID string `json:"session_id"`
	UserID    UserID `json:"user_id" binding:"required"`
}

// ChatResponse es la respuesta de un turno; SessionID es el id a reenviar
// en el proximo turno, aunque difiera del enviado.
type ChatResponse struct {
	Content    string  `json:"content"`
	SessionID  string  `json:"session_id"`
	Cost       float64 `json:"cost"`
	DurationMS int64   `json:"duration_ms"`
}
