package models

import "time"

// AssignmentStatus is the lifecycle state of a published assignment.
type AssignmentStatus string

const (
	StatusAssigned      AssignmentStatus = "assigned"
	StatusConfirmed     AssignmentStatus = "confirmed"
	StatusSwapRequested AssignmentStatus = "swap_requested"
	StatusCompleted     AssignmentStatus = "completed"
)

// Assignment binds a person to one slot on one day with resolved times.
// Uniqueness holds on (person_id, week_start, day, slot_key); a person may
// hold several assignments on the same day across different slots.
type Assignment struct {
	ID          string           `db:"id" json:"id"`
	PersonID    string           `db:"person_id" json:"person_id"`
	WeekStart   string           `db:"week_start" json:"week_start"`
	Day         Weekday          `db:"day" json:"day"`
	SlotKey     string           `db:"slot_key" json:"slot_key"`
	StartTime   string           `db:"start_time" json:"start_time"`
	EndTime     string           `db:"end_time" json:"end_time"`
	Status      AssignmentStatus `db:"status" json:"status"`
	IsLongShift bool             `db:"is_long_shift" json:"is_long_shift"`
	SwapReason  *string          `db:"swap_reason" json:"swap_reason,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// CellKey identifies the cell an assignment occupies within its week.
func (a *Assignment) CellKey() AssignmentCell {
	return AssignmentCell{PersonID: a.PersonID, Day: a.Day, SlotKey: a.SlotKey}
}

// AssignmentCell is the in-week uniqueness key for assignments.
type AssignmentCell struct {
	PersonID string
	Day      Weekday
	SlotKey  string
}

// ConflictKind classifies a non-fatal placement problem.
type ConflictKind string

const (
	ConflictDuplicate       ConflictKind = "duplicate"
	ConflictOverload        ConflictKind = "overload"
	ConflictCancelledSlot   ConflictKind = "cancelled_slot"
	ConflictMissionMismatch ConflictKind = "mission_mismatch"
)

// ConflictRecord reports one failed or flagged placement. Conflicts are
// collected and returned alongside partial success, never thrown.
type ConflictRecord struct {
	Kind     ConflictKind `json:"kind"`
	PersonID string       `json:"person_id"`
	Day      Weekday      `json:"day"`
	SlotKey  string       `json:"slot_key"`
	Message  string       `json:"message"`
}

// SlotCoverage summarises one (day, slot) cell after matching. Over-assignment
// is informational: every stated preference is honoured unless it directly
// conflicts.
type SlotCoverage struct {
	Day           Weekday `json:"day"`
	SlotKey       string  `json:"slot_key"`
	RequiredCount int     `json:"required_count"`
	AssignedCount int     `json:"assigned_count"`
	OverAssigned  bool    `json:"over_assigned"`
	UnderAssigned bool    `json:"under_assigned"`
	Cancelled     bool    `json:"cancelled"`
}

// MatchResult is the coverage matcher's full output for one week.
type MatchResult struct {
	WeekStart      string           `json:"week_start"`
	Assignments    []Assignment     `json:"assignments"`
	Conflicts      []ConflictRecord `json:"conflicts"`
	UnassignedPool []string         `json:"unassigned_pool"`
	Coverage       []SlotCoverage   `json:"coverage"`
}

// DeltaAction distinguishes toggle outcomes.
type DeltaAction string

const (
	DeltaAdded   DeltaAction = "added"
	DeltaRemoved DeltaAction = "removed"
)

// AssignmentDelta describes the single-cell effect of a manual toggle.
type AssignmentDelta struct {
	Action     DeltaAction `json:"action"`
	Assignment Assignment  `json:"assignment"`
}
