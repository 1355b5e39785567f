package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/currency_swapper/internal/apperrors"
	portssvc "github.com/SscSPs/currency_swapper/internal/core/ports/services"
	"github.com/SscSPs/currency_swapper/internal/dto"
	"github.com/SscSPs/currency_swapper/internal/middleware"
	"github.com/gin-gonic/gin"
)

// catalogHandler handles HTTP requests related to the price catalog.
type catalogHandler struct {
	catalogService portssvc.CatalogSvcFacade
}

// newCatalogHandler creates a new catalogHandler.
func newCatalogHandler(cs portssvc.CatalogSvcFacade) *catalogHandler {
	return &catalogHandler{
		catalogService: cs,
	}
}

// registerCatalogRoutes registers routes related to the price catalog.
func registerCatalogRoutes(rg *gin.RouterGroup, catalogService portssvc.CatalogSvcFacade) {
	h := newCatalogHandler(catalogService)

	catalog := rg.Group("/catalog")
	{
		catalog.GET("", h.getCatalog)
		catalog.POST("/reload", h.reloadCatalog)
	}
}

// getCatalog godoc
// @Summary Get the price catalog
// @Description Returns the selectable currencies and the catalog load state
// @Tags catalog
// @Produce  json
// @Success 200 {object} dto.CatalogResponse
// @Router /catalog [get]
func (h *catalogHandler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToCatalogResponse(h.catalogService.Snapshot()))
}

// reloadCatalog godoc
// @Summary Reload the price catalog
// @Description Fetches the price feed again and replaces the catalog. This is the manual retry after a failed load.
// @Tags catalog
// @Produce  json
// @Success 200 {object} dto.CatalogResponse
// @Failure 502 {object} dto.CatalogResponse "Price feed unavailable; catalog is empty and failed"
// @Failure 500 {object} map[string]string "Failed to reload catalog"
// @Router /catalog/reload [post]
func (h *catalogHandler) reloadCatalog(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	logger.Info("Received request to reload price catalog")

	if _, err := h.catalogService.Load(c.Request.Context()); err != nil {
		if errors.Is(err, apperrors.ErrCatalogUnavailable) {
			logger.Error("Price catalog reload failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, dto.ToCatalogResponse(h.catalogService.Snapshot()))
			return
		}
		respondError(c, logger, err, "Failed to reload catalog")
		return
	}

	snapshot := h.catalogService.Snapshot()
	logger.Info("Price catalog reloaded", slog.Int("options", len(snapshot.Options)))
	c.JSON(http.StatusOK, dto.ToCatalogResponse(snapshot))
}
