package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"claude-gateway/internal/claude"
	"claude-gateway/internal/domain"
	"claude-gateway/internal/registry"
)

// ChatService orquesta un turno: resuelve la sesion en el registro, invoca
// el runner exactamente una vez y registra el id rotado. Es el unico que
// muta el registro.
type ChatService struct {
	logger   *zap.Logger
	runner   claude.Runner
	store    registry.Store
	workRoot string
}

func NewChatService(logger *zap.Logger, runner claude.Runner, store registry.Store, workRoot string) *ChatService {
	return &ChatService{
		logger:   logger,
		runner:   runner,
		store:    store,
		workRoot: workRoot,
	}
}

// Chat ejecuta un turno para el usuario. Un session_id desconocido arranca
// una sesion nueva en vez de fallar; el session_id devuelto es siempre el
// que hay que reenviar en el proximo turno.
func (s *ChatService) Chat(ctx context.Context, userID domain.UserID, sessionID, prompt string) (domain.ChatResponse, error) {
	workDir, err := s.ensureWorkDir(userID)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("prepare work dir: %w", err)
	}

	resumeID := ""
	var prev *domain.Session
	if sessionID != "" {
		sess, ok, err := s.store.Get(ctx, sessionID)
		switch {
		case err != nil:
			// El registro caido no bloquea el turno; se pierde la continuacion.
			s.logger.Warn("session lookup failed, starting fresh",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		case ok:
			resumeID = sess.SessionID
			prev = &sess
		default:
			s.logger.Info("unknown session id, starting fresh",
				zap.String("session_id", sessionID),
			)
		}
	}

	result, err := s.runner.Run(ctx, claude.Request{
		Prompt:          prompt,
		ResumeSessionID: resumeID,
		WorkDir:         workDir,
	})
	if err != nil {
		if errors.Is(err, claude.ErrSessionInvalid) && resumeID != "" {
			// Sin reintento: se descarta la entrada para que el proximo
			// request arranque limpio.
			if delErr := s.store.Delete(ctx, resumeID); delErr != nil {
				s.logger.Warn("failed to drop invalid session",
					zap.String("session_id", resumeID),
					zap.Error(delErr),
				)
			} else {
				s.logger.Info("dropped invalid session",
					zap.String("session_id", resumeID),
				)
			}
		}
		return domain.ChatResponse{}, err
	}

	sess := s.recordTurn(ctx, userID, prev, result)

	return domain.ChatResponse{
		Content:    result.Content,
		SessionID:  sess.SessionID,
		Cost:       result.Cost,
		DurationMS: result.DurationMS,
	}, nil
}

// recordTurn actualiza el registro con el resultado; el CLI puede rotar el
// session_id en cada turno y el registro guarda siempre el ultimo.
func (s *ChatService) recordTurn(ctx context.Context, userID domain.UserID, prev *domain.Session, result *claude.Result) domain.Session {
	var sess domain.Session
	if prev != nil {
		sess = *prev
	} else {
		sess = domain.NewSession(result.SessionID, userID)
	}
	sess.Touch(result.Cost, result.NumTurns)

	if result.SessionID != "" && result.SessionID != sess.SessionID {
		if prev != nil {
			if err := s.store.Delete(ctx, prev.SessionID); err != nil {
				s.logger.Warn("failed to drop rotated session",
					zap.String("session_id", prev.SessionID),
					zap.Error(err),
				)
			}
		}
		sess.SessionID = result.SessionID
	}

	if sess.SessionID == "" {
		s.logger.Warn("cli returned no session id, nothing to register")
		return sess
	}

	if err := s.store.Put(ctx, sess); err != nil {
		s.logger.Warn("failed to save session",
			zap.String("session_id", sess.SessionID),
			zap.Error(err),
		)
	}
	return sess
}

// ensureWorkDir crea el directorio de trabajo por usuario bajo el root
// configurado.
func (s *ChatService) ensureWorkDir(userID domain.UserID) (string, error) {
	dir := filepath.Join(s.workRoot, "user_"+sanitizeID(string(userID)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// sanitizeID reduce un id opaco a un nombre de directorio seguro.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}
