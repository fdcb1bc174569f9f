// Package task tracks per-patient care tasks through a small open,
// in-progress, done lifecycle.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task maps to the tasks table.
type Task struct {
	ID         int64      `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	AssignedTo *uuid.UUID `db:"assigned_to" json:"assigned_to,omitempty"`
	Title      string     `db:"title" json:"title"`
	DueAt      *time.Time `db:"due_at" json:"due_at,omitempty"`
	Status     string     `db:"status" json:"status"`
	CreatedBy  *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
