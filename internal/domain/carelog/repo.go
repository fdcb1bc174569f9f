package carelog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CareLogRepository interface {
	Create(ctx context.Context, l *CareLog) error
	// ListByPatient returns entries at or after since, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*CareLog, error)
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
}
