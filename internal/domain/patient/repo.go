package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListAll returns every patient ordered by display name.
	ListAll(ctx context.Context) ([]*Patient, error)
	// ListByIDs returns the patients whose IDs are in the set, ordered by
	// display name. Unknown IDs are silently skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Patient, error)
}

type AccessRepository interface {
	Grant(ctx context.Context, customerID, patientID uuid.UUID) error
	Revoke(ctx context.Context, customerID, patientID uuid.UUID) error
	// PatientIDsForCustomer returns the patient IDs a customer has been
	// granted, duplicates included if the store holds any.
	PatientIDsForCustomer(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error)
	HasAccess(ctx context.Context, customerID, patientID uuid.UUID) (bool, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *CaregiverAssignment) error
	End(ctx context.Context, id uuid.UUID, endDate time.Time) error
	// ActivePatientIDsForCaregiver returns the patient IDs of assignments
	// active on the given day.
	ActivePatientIDsForCaregiver(ctx context.Context, caregiverID uuid.UUID, on time.Time) ([]uuid.UUID, error)
	HasActiveAssignment(ctx context.Context, caregiverID, patientID uuid.UUID, on time.Time) (bool, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*CaregiverAssignment, error)
}
