package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type VitalRepository interface {
	Create(ctx context.Context, v *Vital) error
	// ListByPatient returns measurements taken at or after since, oldest
	// first so charts can plot them directly.
	ListByPatient(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Vital, error)
	Delete(ctx context.Context, id int64) error
}
