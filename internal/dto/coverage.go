package dto

import "github.com/rotaboard/rota-api/internal/models"

// PublishWeekRequest carries the full assignment set to persist for a week.
type PublishWeekRequest struct {
	Assignments []models.Assignment `json:"assignments" binding:"required"`
}

// ToggleCellRequest identifies one assignment cell to flip.
type ToggleCellRequest struct {
	Day             models.Weekday `json:"day" binding:"required"`
	SlotKey         string         `json:"slot_key" binding:"required"`
	PersonID        string         `json:"person_id" binding:"required"`
	ConfirmOverload bool           `json:"confirm_overload"`
}

// ToggleLongShiftRequest switches extended hours on or off for one cell.
type ToggleLongShiftRequest struct {
	Day      models.Weekday `json:"day" binding:"required"`
	SlotKey  string         `json:"slot_key" binding:"required"`
	PersonID string         `json:"person_id" binding:"required"`
	Enabled  bool           `json:"enabled"`
}

// CancelSlotRequest names the day whose slot instance should be voided.
type CancelSlotRequest struct {
	Day models.Weekday `json:"day" binding:"required"`
}

// SwapRequestPayload carries the reason a holder wants out of a shift.
type SwapRequestPayload struct {
	Reason string `json:"reason" binding:"required"`
}

// SwapResolvePayload approves or declines a pending swap request.
type SwapResolvePayload struct {
	Approve bool `json:"approve"`
}
