package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rotaboard/rota-api/internal/dto"
	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/internal/service"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/response"
)

type coverageMatcher interface {
	Match(ctx context.Context, weekStart string) (*models.MatchResult, error)
}

type coverageLedger interface {
	GetWeek(ctx context.Context, weekStart string) ([]models.Assignment, error)
	Publish(ctx context.Context, weekStart string, assignments []models.Assignment) error
	Confirm(ctx context.Context, assignmentID string) error
	RequestSwap(ctx context.Context, assignmentID, reason string) error
	ResolveSwap(ctx context.Context, assignmentID string, approve bool) error
}

type coverageOverrides interface {
	ToggleCell(ctx context.Context, weekStart string, day models.Weekday, slotKey, personID string, confirmOverload bool) (*models.AssignmentDelta, error)
	ToggleLongShift(ctx context.Context, weekStart string, day models.Weekday, slotKey, personID string, enabled bool) (*models.Assignment, error)
	CancelSlot(ctx context.Context, weekStart string, day models.Weekday, slotKey string) (*models.DayShiftInstance, error)
}

// CoverageHandler exposes the weekly coverage resolution and ledger endpoints.
type CoverageHandler struct {
	matcher   coverageMatcher
	ledger    coverageLedger
	overrides coverageOverrides
	metrics   *service.MetricsService
}

// NewCoverageHandler constructs the handler. Metrics may be nil.
func NewCoverageHandler(matcher coverageMatcher, ledger coverageLedger, overrides coverageOverrides, metrics *service.MetricsService) *CoverageHandler {
	return &CoverageHandler{matcher: matcher, ledger: ledger, overrides: overrides, metrics: metrics}
}

// AutoAssign godoc
// @Summary Run coverage resolution for a week
// @Description Computes a draft assignment set from preferences. Nothing is persisted until publish.
// @Tags Coverage
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weeks/{week}/auto-assign [post]
func (h *CoverageHandler) AutoAssign(c *gin.Context) {
	start := time.Now()
	result, err := h.matcher.Match(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		kinds := map[string]int{}
		for _, conflict := range result.Conflicts {
			kinds[string(conflict.Kind)]++
		}
		h.metrics.ObserveMatcherRun(time.Since(start), kinds)
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// GetWeek godoc
// @Summary Get the published ledger for a week
// @Tags Coverage
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week}/assignments [get]
func (h *CoverageHandler) GetWeek(c *gin.Context) {
	assignments, err := h.ledger.GetWeek(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Publish godoc
// @Summary Publish the assignment set for a week
// @Description Replaces the week's ledger wholesale. Republishing is idempotent.
// @Tags Coverage
// @Accept json
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param payload body dto.PublishWeekRequest true "Assignment set"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weeks/{week}/publish [post]
func (h *CoverageHandler) Publish(c *gin.Context) {
	var req dto.PublishWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid publish payload"))
		return
	}

	week := c.Param("week")
	if err := h.ledger.Publish(c.Request.Context(), week, req.Assignments); err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordAssignments("publish", len(req.Assignments))
	}

	assignments, err := h.ledger.GetWeek(c.Request.Context(), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ToggleCell godoc
// @Summary Toggle one assignment cell
// @Description Removes the assignment when held, inserts it otherwise.
// @Tags Coverage
// @Accept json
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param payload body dto.ToggleCellRequest true "Cell to toggle"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /weeks/{week}/assignments/toggle [post]
func (h *CoverageHandler) ToggleCell(c *gin.Context) {
	var req dto.ToggleCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}

	delta, err := h.overrides.ToggleCell(c.Request.Context(), c.Param("week"), req.Day, req.SlotKey, req.PersonID, req.ConfirmOverload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil && delta.Action == models.DeltaAdded {
		h.metrics.RecordAssignments("override", 1)
	}
	response.JSON(c, http.StatusOK, delta, nil)
}

// ToggleLongShift godoc
// @Summary Toggle extended hours on an assignment
// @Tags Coverage
// @Accept json
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param payload body dto.ToggleLongShiftRequest true "Cell and desired state"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /weeks/{week}/long-shift [post]
func (h *CoverageHandler) ToggleLongShift(c *gin.Context) {
	var req dto.ToggleLongShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid long-shift payload"))
		return
	}

	assignment, err := h.overrides.ToggleLongShift(c.Request.Context(), c.Param("week"), req.Day, req.SlotKey, req.PersonID, req.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// CancelSlot godoc
// @Summary Toggle cancellation for a day's slot
// @Tags Coverage
// @Accept json
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param key path string true "Slot key"
// @Param payload body dto.CancelSlotRequest true "Day to void"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week}/slots/{key}/cancel [post]
func (h *CoverageHandler) CancelSlot(c *gin.Context) {
	var req dto.CancelSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancel payload"))
		return
	}

	inst, err := h.overrides.CancelSlot(c.Request.Context(), c.Param("week"), req.Day, c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inst, nil)
}

// Confirm godoc
// @Summary Confirm an assignment
// @Tags Coverage
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/confirm [post]
func (h *CoverageHandler) Confirm(c *gin.Context) {
	if err := h.ledger.Confirm(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RequestSwap godoc
// @Summary Request a swap on an assignment
// @Tags Coverage
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.SwapRequestPayload true "Swap reason"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/swap-request [post]
func (h *CoverageHandler) RequestSwap(c *gin.Context) {
	var req dto.SwapRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "swap reason is required"))
		return
	}
	if err := h.ledger.RequestSwap(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResolveSwap godoc
// @Summary Resolve a pending swap request
// @Description Both approval and decline return the assignment to the assigned state.
// @Tags Coverage
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.SwapResolvePayload true "Resolution"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/swap-resolve [post]
func (h *CoverageHandler) ResolveSwap(c *gin.Context) {
	var req dto.SwapResolvePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	if err := h.ledger.ResolveSwap(c.Request.Context(), c.Param("id"), req.Approve); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
