package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/internal/service"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/response"
)

type catalogService interface {
	ListSlots(ctx context.Context) ([]models.SlotDefinition, error)
	CreateSlot(ctx context.Context, req service.CreateSlotRequest) (*models.SlotDefinition, error)
	UpdateSlot(ctx context.Context, key string, req service.UpdateSlotRequest) (*models.SlotDefinition, error)
	ListInstances(ctx context.Context, weekStart string) ([]models.DayShiftInstance, error)
}

// CatalogHandler exposes the slot catalog endpoints.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListSlots godoc
// @Summary List slot definitions
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/slots [get]
func (h *CatalogHandler) ListSlots(c *gin.Context) {
	slots, err := h.service.ListSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// CreateSlot godoc
// @Summary Create a slot definition
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /catalog/slots [post]
func (h *CatalogHandler) CreateSlot(c *gin.Context) {
	var req service.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.service.CreateSlot(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateSlot godoc
// @Summary Update a slot definition
// @Tags Catalog
// @Accept json
// @Produce json
// @Param key path string true "Slot key"
// @Param payload body service.UpdateSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalog/slots/{key} [put]
func (h *CatalogHandler) UpdateSlot(c *gin.Context) {
	var req service.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.service.UpdateSlot(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// ListInstances godoc
// @Summary List per-day slot overrides for a week
// @Tags Catalog
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week}/slots [get]
func (h *CatalogHandler) ListInstances(c *gin.Context) {
	instances, err := h.service.ListInstances(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instances, nil)
}
