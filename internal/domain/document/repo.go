package document

import (
	"context"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id int64) (*Document, error)
	// ListByPatient returns a patient's documents, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Document, error)
	Delete(ctx context.Context, id int64) error
}
