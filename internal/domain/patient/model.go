// Package patient holds the patient roster and the access edges that decide
// which patients each signed-in user can see.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedBy   *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CustomerPatientAccess maps to the customer_patient_access table. Each row
// grants one customer visibility of one patient.
type CustomerPatientAccess struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CustomerID uuid.UUID `db:"customer_id" json:"customer_id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CaregiverAssignment maps to the caregiver_assignments table. An
// assignment is active while EndDate is unset or has not yet passed; the
// date comparison is by calendar day, so an assignment ending today is
// still active today.
type CaregiverAssignment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	CaregiverID uuid.UUID  `db:"caregiver_id" json:"caregiver_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ActiveOn reports whether the assignment is active on the given day.
func (a *CaregiverAssignment) ActiveOn(day time.Time) bool {
	if a.EndDate == nil {
		return true
	}
	y1, m1, d1 := a.EndDate.Date()
	y2, m2, d2 := day.Date()
	end := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !end.Before(today)
}
