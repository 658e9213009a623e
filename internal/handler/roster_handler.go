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

type rosterService interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, error)
	Get(ctx context.Context, id string) (*models.Person, error)
	Create(ctx context.Context, req *service.CreatePersonRequest) (*models.Person, error)
	Update(ctx context.Context, id string, req *service.UpdatePersonRequest) (*models.Person, error)
}

// RosterHandler exposes the personnel roster endpoints.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc rosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// List godoc
// @Summary List roster entries
// @Tags Roster
// @Produce json
// @Param mission query string false "Mission filter"
// @Param active query bool false "Active filter"
// @Param search query string false "Name search"
// @Success 200 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) List(c *gin.Context) {
	filter := models.PersonFilter{Search: strings.TrimSpace(c.Query("search"))}
	if mission := strings.TrimSpace(c.Query("mission")); mission != "" {
		m := models.Mission(mission)
		filter.Mission = &m
	}
	if active := c.Query("active"); active != "" {
		v := active == "true" || active == "1"
		filter.Active = &v
	}

	persons, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, persons, nil)
}

// Get godoc
// @Summary Get one roster entry
// @Tags Roster
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roster/{id} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	person, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Create godoc
// @Summary Create a roster entry
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.CreatePersonRequest true "Person payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /roster [post]
func (h *RosterHandler) Create(c *gin.Context) {
	var req service.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid person payload"))
		return
	}
	person, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, person)
}

// Update godoc
// @Summary Update a roster entry
// @Tags Roster
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param payload body service.UpdatePersonRequest true "Person payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roster/{id} [put]
func (h *RosterHandler) Update(c *gin.Context) {
	var req service.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid person payload"))
		return
	}
	person, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}
