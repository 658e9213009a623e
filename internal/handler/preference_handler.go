package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/internal/service"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, personID, weekStart string) (*service.PreferenceView, error)
	ListWeek(ctx context.Context, weekStart string) ([]service.PreferenceView, error)
	Submit(ctx context.Context, weekStart string, req *service.SubmitPreferenceRequest) (*service.PreferenceView, error)
}

// PreferenceHandler exposes preference submission endpoints.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: svc}
}

// ListWeek godoc
// @Summary List a week's preference submissions
// @Tags Preferences
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /weeks/{week}/preferences [get]
func (h *PreferenceHandler) ListWeek(c *gin.Context) {
	views, err := h.service.ListWeek(c.Request.Context(), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Get godoc
// @Summary Get one person's submission for a week
// @Tags Preferences
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param person_id query string true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /weeks/{week}/preferences/mine [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	personID := strings.TrimSpace(c.Query("person_id"))
	if personID == "" {
		if claims := claimsFromContext(c); claims != nil && claims.PersonID != nil {
			personID = *claims.PersonID
		}
	}
	if personID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "person_id is required"))
		return
	}

	view, err := h.service.Get(c.Request.Context(), personID, c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Submit godoc
// @Summary Submit weekly preferences
// @Description Re-submission overwrites the previous submission for the week.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param payload body service.SubmitPreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weeks/{week}/preferences [post]
func (h *PreferenceHandler) Submit(c *gin.Context) {
	var req service.SubmitPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}

	// Members may only submit for their own roster entry.
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleMember {
		if claims.PersonID == nil || *claims.PersonID != req.PersonID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "members may only submit their own preferences"))
			return
		}
	}

	view, err := h.service.Submit(c.Request.Context(), c.Param("week"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
