package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/currency_swapper/internal/core/domain"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/dto"
	"github.com/SscSPs/currency_swapper/internal/middleware"
	"github.com/gin-gonic/gin"
)

// defaultKeepAlive is how often an idle event stream is pinged.
const defaultKeepAlive = 15 * time.Second

// swapHandler handles HTTP requests against the caller's swap session.
type swapHandler struct {
	events    portssvc.NotificationSubscriber
	keepAlive time.Duration
}

// newSwapHandler creates a new swapHandler.
func newSwapHandler(events portssvc.NotificationSubscriber) *swapHandler {
	return &swapHandler{
		events:    events,
		keepAlive: defaultKeepAlive,
	}
}

// registerSwapRoutes registers routes for the session-scoped swap form.
// submitLimit guards the submit route.
func registerSwapRoutes(rg *gin.RouterGroup, events portssvc.NotificationSubscriber, submitLimit gin.HandlerFunc) {
	h := newSwapHandler(events)

	swap := rg.Group("/swap")
	{
		swap.GET("", h.getSession)
		swap.PATCH("/form", h.updateForm)
		swap.POST("/submit", submitLimit, h.submitSwap)
		swap.POST("/reset", h.resetForm)
		swap.GET("/events", h.streamEvents)
	}
}

// session returns the session resolved by the auth middleware.
func (h *swapHandler) session(c *gin.Context) (portssvc.SwapSessionSvc, bool) {
	session, ok := middleware.GetSessionFromContext(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Error("Swap session not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return session, true
}

// getSession godoc
// @Summary Get the swap form
// @Description Returns the form, its state, loading flag, last result and field errors
// @Tags swap
// @Produce  json
// @Success 200 {object} dto.SessionViewResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /swap [get]
func (h *swapHandler) getSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionViewResponse(session.View()))
}

// updateForm godoc
// @Summary Update the swap form
// @Description Sets the amount and/or currency selections. Changing a selection clears a displayed result.
// @Tags swap
// @Accept  json
// @Produce  json
// @Param   form body dto.UpdateFormRequest true "Fields to change"
// @Success 200 {object} dto.SessionViewResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Unknown currency or invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A swap is being processed"
// @Security BearerAuth
// @Router /swap/form [patch]
func (h *swapHandler) updateForm(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req dto.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateForm", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	view, err := session.UpdateForm(req.ToFormPatch())
	if err != nil {
		respondError(c, logger, err, "Failed to update form")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionViewResponse(view))
}

// submitSwap godoc
// @Summary Submit the swap
// @Description Validates the form and, when valid, waits for the swap to settle and returns the converted amount
// @Tags swap
// @Produce  json
// @Success 200 {object} dto.SubmitSwapResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Field errors"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A swap is already being processed"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Failed to process swap"
// @Security BearerAuth
// @Router /swap/submit [post]
func (h *swapHandler) submitSwap(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Submit(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to process swap")
		return
	}

	c.JSON(http.StatusOK, dto.SubmitSwapResponse{
		Message: domain.SettlementMessage,
		Result:  dto.ToSwapResultResponse(result),
		Session: dto.ToSessionViewResponse(session.View()),
	})
}

// resetForm godoc
// @Summary Reset the swap form
// @Description Clears the form and result
// @Tags swap
// @Produce  json
// @Success 200 {object} dto.SessionViewResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A swap is being processed"
// @Security BearerAuth
// @Router /swap/reset [post]
func (h *swapHandler) resetForm(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	session, ok := h.session(c)
	if !ok {
		return
	}

	view, err := session.Reset()
	if err != nil {
		respondError(c, logger, err, "Failed to reset form")
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionViewResponse(view))
}

// streamEvents godoc
// @Summary Stream settlement notifications
// @Description Server-Sent Events stream; emits a "settled" event each time a swap of this session settles. The token may be passed as the "token" query parameter.
// @Tags swap
// @Produce  text/event-stream
// @Param   token query string false "Session token, for clients that cannot set headers"
// @Success 200 {object} dto.NotificationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /swap/events [get]
func (h *swapHandler) streamEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	session, ok := h.session(c)
	if !ok {
		return
	}

	notifications, unsubscribe := h.events.Subscribe(session.ID())
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"sessionID": session.ID()})
	c.Writer.Flush()
	logger.Info("Event stream opened")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			logger.Info("Event stream closed by client")
			return
		case n, open := <-notifications:
			if !open {
				return
			}
			c.SSEvent("settled", dto.ToNotificationResponse(n))
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
		}
		c.Writer.Flush()
	}
}
