package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/dto"
	"github.com/SscSPs/currency_swapper/internal/middleware"
	"github.com/SscSPs/currency_swapper/internal/platform/config"
	"github.com/SscSPs/currency_swapper/internal/utils"
	"github.com/gin-gonic/gin"
)

// sessionHandler opens swap sessions and issues their tokens.
type sessionHandler struct {
	sessions portssvc.SessionRegistrySvc
	cfg      *config.Config
}

func registerSessionRoutes(rg *gin.RouterGroup, cfg *config.Config, sessions portssvc.SessionRegistrySvc) {
	h := &sessionHandler{sessions: sessions, cfg: cfg}
	rg.POST("/sessions", h.createSession)
}

// createSession godoc
// @Summary Open a swap session
// @Description Creates an idle swap form and returns the token that addresses it
// @Tags sessions
// @Produce  json
// @Success 201 {object} dto.CreateSessionResponse
// @Failure 500 {object} map[string]string "Failed to issue session token"
// @Router /sessions [post]
func (h *sessionHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	session := h.sessions.Create()
	token, expiresAt, err := utils.GenerateSessionToken(session.ID(), h.cfg.JWTSecret, h.cfg.JWTExpiryDuration, h.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign session token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	logger.Info("Swap session opened", slog.String("session_id", session.ID()))
	c.JSON(http.StatusCreated, dto.CreateSessionResponse{
		SessionID: session.ID(),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
