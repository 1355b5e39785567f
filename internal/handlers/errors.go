package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	"github.com/SscSPs/currency_swapper/internal/dto"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors to HTTP responses. fallback is the message
// used for unexpected failures, which are never echoed to the client.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var verr *apperrors.ValidationErrors
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &verr):
		logger.Warn("Validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Error: "Validation failed", Fields: verr.Fields})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrSwapInFlight):
		logger.Info("Swap already in flight", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "A swap is already being processed"})
	case errors.Is(err, apperrors.ErrCatalogUnavailable):
		logger.Error("Price catalog unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Price feed is unavailable"})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("Request ended before the swap settled", slog.String("error", err.Error()))
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Request ended before the swap settled"})
	case errors.As(err, &appErr):
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
