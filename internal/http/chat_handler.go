package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"claude-gateway/internal/claude"
	"claude-gateway/internal/domain"
	"claude-gateway/internal/service"
)

// ChatHandler mantiene dependencias para el endpoint de chat.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chat: chat}
}

// Chat maneja POST /api/v1/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}

	h.logger.Info("processing chat request",
		zap.String("user_id", string(req.UserID)),
		zap.Bool("has_session", req.SessionID != ""),
	)

	resp, err := h.chat.Chat(c.Request.Context(), req.UserID, req.SessionID, req.Prompt)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("chat request completed",
		zap.String("user_id", string(req.UserID)),
		zap.String("session_id", resp.SessionID),
		zap.Float64("cost", resp.Cost),
		zap.Int64("duration_ms", resp.DurationMS),
	)

	c.JSON(http.StatusOK, resp)
}

// respondError mapea la taxonomia del invoker a respuestas distinguibles
// para el operador; ningun fallo se degrada a exito.
func (h *ChatHandler) respondError(c *gin.Context, err error) {
	var (
		timeoutErr *claude.TimeoutError
		usageErr   *claude.UsageLimitError
		execErr    *claude.ExecError
	)

	switch {
	case errors.Is(err, claude.ErrAuthRequired):
		h.logger.Error("claude cli not authenticated", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "claude cli not authenticated",
			"detail": "authenticate the claude binary (claude setup-token) or set ANTHROPIC_API_KEY",
		})
	case errors.As(err, &timeoutErr):
		h.logger.Error("claude invocation timed out", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error":  "claude invocation timed out",
			"detail": timeoutErr.Error(),
		})
	case errors.Is(err, claude.ErrSessionInvalid):
		h.logger.Warn("session no longer available", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{
			"error":  "session no longer available",
			"detail": "retry without session_id to start a new session",
		})
	case errors.As(err, &usageErr):
		h.logger.Warn("claude usage limit reached", zap.Error(err))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":  "claude usage limit reached",
			"detail": usageErr.Error(),
		})
	case errors.As(err, &execErr):
		h.logger.Error("claude invocation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "claude invocation failed",
			"detail": execErr.Error(),
		})
	case errors.Is(err, claude.ErrNoResult):
		h.logger.Error("claude produced no result", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "claude invocation failed",
			"detail": err.Error(),
		})
	default:
		h.logger.Error("chat request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "request failed",
			"detail": err.Error(),
		})
	}
}
