package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PreferenceSubmission records one person's desired slots for one week.
// At most one submission is current per (person, week): re-submission
// overwrites, last write wins by UpdatedAt.
type PreferenceSubmission struct {
	ID            string         `db:"id" json:"id"`
	PersonID      string         `db:"person_id" json:"person_id"`
	WeekStart     string         `db:"week_start" json:"week_start"`
	Days          types.JSONText `db:"days" json:"days"`
	LongShiftDays types.JSONText `db:"long_shift_days" json:"long_shift_days"`
	Notes         string         `db:"notes" json:"notes"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// PreferenceDays is the decoded day map: desired slot keys per weekday.
type PreferenceDays map[Weekday][]string

// LongShiftOptIns is the decoded per-day long-shift opt-in map.
type LongShiftOptIns map[Weekday]bool

// DecodeDays unmarshals and normalises the day map: every weekday present,
// slot keys de-duplicated and sorted. Missing or null payloads decode to an
// empty map rather than failing; the store is schemaless at the edges.
func (p *PreferenceSubmission) DecodeDays() (PreferenceDays, error) {
	raw := map[string][]string{}
	if len(p.Days) > 0 {
		if err := json.Unmarshal(p.Days, &raw); err != nil {
			return nil, err
		}
	}
	return NormalizeDays(raw), nil
}

// DecodeLongShiftDays unmarshals the opt-in map, defaulting absent days to false.
func (p *PreferenceSubmission) DecodeLongShiftDays() (LongShiftOptIns, error) {
	raw := map[string]bool{}
	if len(p.LongShiftDays) > 0 {
		if err := json.Unmarshal(p.LongShiftDays, &raw); err != nil {
			return nil, err
		}
	}
	out := LongShiftOptIns{}
	for _, day := range WeekDays {
		out[day] = false
	}
	for name, opted := range raw {
		if day, err := ParseWeekday(name); err == nil {
			out[day] = opted
		}
	}
	return out, nil
}

// NormalizeDays fills every weekday, drops unknown day names and duplicate
// slot keys, and sorts each day's keys for deterministic iteration.
func NormalizeDays(raw map[string][]string) PreferenceDays {
	out := PreferenceDays{}
	for _, day := range WeekDays {
		out[day] = []string{}
	}
	for name, keys := range raw {
		day, err := ParseWeekday(name)
		if err != nil {
			continue
		}
		seen := map[string]struct{}{}
		for _, key := range keys {
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out[day] = append(out[day], key)
		}
		sort.Strings(out[day])
	}
	return out
}

// EncodeDays marshals a normalised day map back into the stored form.
func EncodeDays(days PreferenceDays) (types.JSONText, error) {
	raw := map[string][]string{}
	for day, keys := range days {
		raw[string(day)] = keys
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return types.JSONText(data), nil
}

// EncodeLongShiftDays marshals the opt-in map into the stored form.
func EncodeLongShiftDays(optIns LongShiftOptIns) (types.JSONText, error) {
	raw := map[string]bool{}
	for day, opted := range optIns {
		raw[string(day)] = opted
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return types.JSONText(data), nil
}
