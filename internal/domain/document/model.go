// Package document manages uploaded patient documents: metadata rows over a
// blob store, plus short-lived signed download URLs so files can be fetched
// by plain browser navigation.
package document

import (
	"time"

	"github.com/google/uuid"
)

// Document maps to the documents table. Path is the identifier of the
// stored blob.
type Document struct {
	ID        int64      `db:"id" json:"id"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	OwnerID   *uuid.UUID `db:"owner_id" json:"owner_id,omitempty"`
	Path      string     `db:"path" json:"path"`
	Label     *string    `db:"label" json:"label,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
