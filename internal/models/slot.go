package models

import "time"

// Mission partitions the roster and the catalog: a person assigned to one
// mission may only fill slots carrying the same mission.
type Mission string

// SlotDefinition is a named, timed shift type with a required headcount.
type SlotDefinition struct {
	Key           string    `db:"key" json:"key"`
	Mission       Mission   `db:"mission" json:"mission"`
	Name          string    `db:"name" json:"name"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	RequiredCount int       `db:"required_count" json:"required_count"`
	IsLong        bool      `db:"is_long" json:"is_long"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DayShiftInstance materializes a SlotDefinition for one day of one week.
// Identity is (week_start, day, slot_key); rows only exist where a day
// deviates from the definition (override or cancellation).
type DayShiftInstance struct {
	ID              string    `db:"id" json:"id"`
	WeekStart       string    `db:"week_start" json:"week_start"`
	Day             Weekday   `db:"day" json:"day"`
	SlotKey         string    `db:"slot_key" json:"slot_key"`
	RequiredCount   *int      `db:"required_count" json:"required_count,omitempty"`
	CustomStartTime *string   `db:"custom_start_time" json:"custom_start_time,omitempty"`
	CustomEndTime   *string   `db:"custom_end_time" json:"custom_end_time,omitempty"`
	Cancelled       bool      `db:"cancelled" json:"cancelled"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SlotCatalog bundles the definitions with one week's instance overrides for
// in-memory resolution.
type SlotCatalog struct {
	Definitions map[string]SlotDefinition
	Instances   map[InstanceKey]DayShiftInstance
}

// InstanceKey identifies one day-cell of the week grid.
type InstanceKey struct {
	Day     Weekday
	SlotKey string
}

// NewSlotCatalog indexes definitions and instances for lookup.
func NewSlotCatalog(defs []SlotDefinition, instances []DayShiftInstance) *SlotCatalog {
	c := &SlotCatalog{
		Definitions: make(map[string]SlotDefinition, len(defs)),
		Instances:   make(map[InstanceKey]DayShiftInstance, len(instances)),
	}
	for _, def := range defs {
		c.Definitions[def.Key] = def
	}
	for _, inst := range instances {
		c.Instances[InstanceKey{Day: inst.Day, SlotKey: inst.SlotKey}] = inst
	}
	return c
}

// Definition returns the SlotDefinition for a key.
func (c *SlotCatalog) Definition(slotKey string) (SlotDefinition, bool) {
	def, ok := c.Definitions[slotKey]
	return def, ok
}

// Cancelled reports whether the given cell has been voided for the week.
func (c *SlotCatalog) Cancelled(day Weekday, slotKey string) bool {
	inst, ok := c.Instances[InstanceKey{Day: day, SlotKey: slotKey}]
	return ok && inst.Cancelled
}

// RequiredCount resolves the headcount for a cell, honouring any per-day override.
func (c *SlotCatalog) RequiredCount(day Weekday, slotKey string) int {
	if inst, ok := c.Instances[InstanceKey{Day: day, SlotKey: slotKey}]; ok && inst.RequiredCount != nil {
		return *inst.RequiredCount
	}
	if def, ok := c.Definitions[slotKey]; ok {
		return def.RequiredCount
	}
	return 0
}

// Times resolves the wall-clock window for a cell, honouring per-day overrides.
func (c *SlotCatalog) Times(day Weekday, slotKey string) (start, end string) {
	def := c.Definitions[slotKey]
	start, end = def.StartTime, def.EndTime
	if inst, ok := c.Instances[InstanceKey{Day: day, SlotKey: slotKey}]; ok {
		if inst.CustomStartTime != nil && *inst.CustomStartTime != "" {
			start = *inst.CustomStartTime
		}
		if inst.CustomEndTime != nil && *inst.CustomEndTime != "" {
			end = *inst.CustomEndTime
		}
	}
	return start, end
}
