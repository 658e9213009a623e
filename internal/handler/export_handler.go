package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rotaboard/rota-api/internal/service"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
	"github.com/rotaboard/rota-api/pkg/response"
)

type exportService interface {
	ExportWeek(ctx context.Context, weekStart string, format service.ExportFormat) (*service.ExportResult, error)
	Download(token string) (string, []byte, error)
}

// ExportHandler exposes week export endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ExportWeek godoc
// @Summary Render a week export
// @Description Renders the week grid and returns a signed download token.
// @Tags Export
// @Produce json
// @Param week path string true "Week start (Sunday, YYYY-MM-DD)"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /weeks/{week}/export [post]
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	if format == "" {
		format = service.FormatCSV
	}

	result, err := h.service.ExportWeek(c.Request.Context(), c.Param("week"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a rendered export
// @Tags Export
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	filename, data, err := h.service.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "application/octet-stream"
	switch filepath.Ext(filename) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(filename))
	c.Data(http.StatusOK, contentType, data)
}
