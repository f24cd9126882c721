package domain

import (
	"encoding/json"
	"testing"
)

func TestUserIDUnmarshalString(t *testing.T) {
	var req ChatRequest
	if err := json.Unmarshal([]byte(`{"prompt":"hi","user_id":"abc-123"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.UserID != "abc-123" {
		t.Fatalf("expected abc-123, got %q", req.UserID)
	}
}

func TestUserIDUnmarshalNumber(t *testing.T) {
	var req ChatRequest
	if err := json.Unmarshal([]byte(`{"prompt":"hi","user_id":42}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.UserID != "42" {
		t.Fatalf("expected 42, got %q", req.UserID)
	}
}

func TestUserIDUnmarshalRejectsObject(t *testing.T) {
	var req ChatRequest
	if err := json.Unmarshal([]byte(`{"prompt":"hi","user_id":{"a":1}}`), &req); err == nil {
		t.Fatalf("expected error for object user_id")
	}
}

func TestSessionTouchAccumulatesUsage(t *testing.T) {
	sess := NewSession("sess-1", "u1")
	sess.Touch(0.25, 3)
	sess.Touch(0.5, 1)

	if sess.TotalCost != 0.75 {
		t.Fatalf("expected total cost 0.75, got %v", sess.TotalCost)
	}
	if sess.TotalTurns != 4 {
		t.Fatalf("expected 4 turns, got %d", sess.TotalTurns)
	}
	if sess.MessageCount != 2 {
		t.Fatalf("expected 2 messages, got %d", sess.MessageCount)
	}
	if sess.LastUsedAt.Before(sess.CreatedAt) {
		t.Fatalf("last_used_at should not precede created_at")
	}
}
