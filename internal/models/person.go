package models

import "time"

// Person is a roster entry eligible for shift assignment. WeeklyShiftCount is
// derived by counting a week's Assignments and is never stored.
type Person struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Mission   Mission   `db:"mission" json:"mission"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PersonFilter captures filtering criteria for listing the roster.
type PersonFilter struct {
	Mission *Mission
	Active  *bool
	Search  string
}
