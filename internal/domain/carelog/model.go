// Package carelog stores the daily care entries caregivers write per
// patient, grouped into day slots.
package carelog

import (
	"time"

	"github.com/google/uuid"
)

// Day slots a care entry can belong to.
const (
	SlotMorning   = "morning"
	SlotNoon      = "noon"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// CareLog maps to the care_logs table.
type CareLog struct {
	ID         int64      `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Slot       string     `db:"slot" json:"slot"`
	Title      *string    `db:"title" json:"title,omitempty"`
	Details    *string    `db:"details" json:"details,omitempty"`
	Mood       *string    `db:"mood" json:"mood,omitempty"`
	Completed  bool       `db:"completed" json:"completed"`
	OccurredAt time.Time  `db:"occurred_at" json:"occurred_at"`
	RecordedBy *uuid.UUID `db:"recorded_by" json:"recorded_by,omitempty"`
}
