package registry

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"claude-gateway/internal/domain"
)

// MemoryStore guarda sesiones en memoria acotadas por tamaño y TTL. Una
// sesion desalojada simplemente arranca de cero en su proximo request.
type MemoryStore struct {
	cache *expirable.LRU[string, domain.Session]
}

// NewMemoryStore crea el registro en memoria. maxEntries <= 0 significa sin
// limite de tamaño; ttl 0 significa sin expiracion.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: expirable.NewLRU[string, domain.Session](maxEntries, nil, ttl),
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (domain.Session, bool, error) {
	sess, ok := s.cache.Get(sessionID)
	return sess, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, session domain.Session) error {
	if session.SessionID == "" {
		return errors.New("session id cannot be empty")
	}
	s.cache.Add(session.SessionID, session)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

// Len devuelve cuantas sesiones hay registradas.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
