package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rotaboard/rota-api/internal/models"
	appErrors "github.com/rotaboard/rota-api/pkg/errors"
)

type coverageMatcherMock struct {
	result *models.MatchResult
	err    error
}

func (m *coverageMatcherMock) Match(_ context.Context, weekStart string) (*models.MatchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		m.result = &models.MatchResult{WeekStart: weekStart}
	}
	return m.result, nil
}

type coverageLedgerMock struct {
	published     []models.Assignment
	week          []models.Assignment
	confirmedID   string
	swapID        string
	swapReason    string
	resolveID     string
	resolveChoice bool
	err           error
}

func (m *coverageLedgerMock) GetWeek(_ context.Context, _ string) ([]models.Assignment, error) {
	return m.week, m.err
}

func (m *coverageLedgerMock) Publish(_ context.Context, _ string, assignments []models.Assignment) error {
	m.published = assignments
	m.week = assignments
	return m.err
}

func (m *coverageLedgerMock) Confirm(_ context.Context, id string) error {
	m.confirmedID = id
	return m.err
}

func (m *coverageLedgerMock) RequestSwap(_ context.Context, id, reason string) error {
	m.swapID, m.swapReason = id, reason
	return m.err
}

func (m *coverageLedgerMock) ResolveSwap(_ context.Context, id string, approve bool) error {
	m.resolveID, m.resolveChoice = id, approve
	return m.err
}

type coverageOverridesMock struct {
	delta      *models.AssignmentDelta
	assignment *models.Assignment
	instance   *models.DayShiftInstance
	err        error
}

func (m *coverageOverridesMock) ToggleCell(_ context.Context, _ string, _ models.Weekday, _, _ string, _ bool) (*models.AssignmentDelta, error) {
	return m.delta, m.err
}

func (m *coverageOverridesMock) ToggleLongShift(_ context.Context, _ string, _ models.Weekday, _, _ string, _ bool) (*models.Assignment, error) {
	return m.assignment, m.err
}

func (m *coverageOverridesMock) CancelSlot(_ context.Context, _ string, _ models.Weekday, _ string) (*models.DayShiftInstance, error) {
	return m.instance, m.err
}

func newCoverageContext(t *testing.T, method, path string, body []byte, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c, w
}

func TestCoverageAutoAssign(t *testing.T) {
	matcher := &coverageMatcherMock{}
	handler := NewCoverageHandler(matcher, &coverageLedgerMock{}, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/2026-01-04/auto-assign", nil,
		gin.Params{{Key: "week", Value: "2026-01-04"}})

	handler.AutoAssign(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestCoverageAutoAssignPropagatesErrors(t *testing.T) {
	matcher := &coverageMatcherMock{err: appErrors.ErrValidation}
	handler := NewCoverageHandler(matcher, &coverageLedgerMock{}, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/not-a-week/auto-assign", nil,
		gin.Params{{Key: "week", Value: "not-a-week"}})

	handler.AutoAssign(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCoveragePublish(t *testing.T) {
	ledger := &coverageLedgerMock{}
	handler := NewCoverageHandler(&coverageMatcherMock{}, ledger, &coverageOverridesMock{}, nil)
	body := []byte(`{"assignments":[{"person_id":"p1","day":"monday","slot_key":"front-morning","start_time":"08:00","end_time":"13:00"}]}`)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/2026-01-04/publish", body,
		gin.Params{{Key: "week", Value: "2026-01-04"}})

	handler.Publish(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ledger.published, 1)
	require.Equal(t, "p1", ledger.published[0].PersonID)
}

func TestCoveragePublishRejectsMalformedPayload(t *testing.T) {
	handler := NewCoverageHandler(&coverageMatcherMock{}, &coverageLedgerMock{}, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/2026-01-04/publish", []byte(`{`),
		gin.Params{{Key: "week", Value: "2026-01-04"}})

	handler.Publish(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCoverageToggleCell(t *testing.T) {
	overrides := &coverageOverridesMock{delta: &models.AssignmentDelta{Action: models.DeltaAdded}}
	handler := NewCoverageHandler(&coverageMatcherMock{}, &coverageLedgerMock{}, overrides, nil)
	body := []byte(`{"day":"monday","slot_key":"front-morning","person_id":"p1"}`)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/2026-01-04/assignments/toggle", body,
		gin.Params{{Key: "week", Value: "2026-01-04"}})

	handler.ToggleCell(c)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestCoverageToggleCellOverloadStatus(t *testing.T) {
	overrides := &coverageOverridesMock{err: appErrors.ErrOverloadConfirmation}
	handler := NewCoverageHandler(&coverageMatcherMock{}, &coverageLedgerMock{}, overrides, nil)
	body := []byte(`{"day":"monday","slot_key":"front-morning","person_id":"p1"}`)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/2026-01-04/assignments/toggle", body,
		gin.Params{{Key: "week", Value: "2026-01-04"}})

	handler.ToggleCell(c)

	require.Equal(t, appErrors.ErrOverloadConfirmation.Status, w.Code)
}

func TestCoverageConfirm(t *testing.T) {
	ledger := &coverageLedgerMock{}
	handler := NewCoverageHandler(&coverageMatcherMock{}, ledger, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/assignments/a1/confirm", nil,
		gin.Params{{Key: "id", Value: "a1"}})

	handler.Confirm(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "a1", ledger.confirmedID)
}

func TestCoverageRequestSwap(t *testing.T) {
	ledger := &coverageLedgerMock{}
	handler := NewCoverageHandler(&coverageMatcherMock{}, ledger, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/assignments/a1/swap-request", []byte(`{"reason":"family event"}`),
		gin.Params{{Key: "id", Value: "a1"}})

	handler.RequestSwap(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "family event", ledger.swapReason)
}

func TestCoverageRequestSwapRequiresReason(t *testing.T) {
	handler := NewCoverageHandler(&coverageMatcherMock{}, &coverageLedgerMock{}, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/assignments/a1/swap-request", []byte(`{}`),
		gin.Params{{Key: "id", Value: "a1"}})

	handler.RequestSwap(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCoverageResolveSwap(t *testing.T) {
	ledger := &coverageLedgerMock{}
	handler := NewCoverageHandler(&coverageMatcherMock{}, ledger, &coverageOverridesMock{}, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/assignments/a1/swap-resolve", []byte(`{"approve":true}`),
		gin.Params{{Key: "id", Value: "a1"}})

	handler.ResolveSwap(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "a1", ledger.resolveID)
	require.True(t, ledger.resolveChoice)
}

func TestCoverageCancelSlot(t *testing.T) {
	overrides := &coverageOverridesMock{instance: &models.DayShiftInstance{Cancelled: true}}
	handler := NewCoverageHandler(&coverageMatcherMock{}, &coverageLedgerMock{}, overrides, nil)
	c, w := newCoverageContext(t, http.MethodPost, "/weeks/2026-01-04/slots/front-morning/cancel", []byte(`{"day":"monday"}`),
		gin.Params{{Key: "week", Value: "2026-01-04"}, {Key: "key", Value: "front-morning"}})

	handler.CancelSlot(c)

	require.Equal(t, http.StatusOK, w.Code)
}
