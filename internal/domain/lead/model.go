// Package lead captures inquiries submitted through the public marketing
// site, from families looking for care and from caregivers looking for work.
package lead

import (
	"time"

	"github.com/google/uuid"
)

// LeadType distinguishes the two inquiry forms on the landing page.
type LeadType string

const (
	LeadTypeCustomer  LeadType = "customer"
	LeadTypeCaregiver LeadType = "caregiver"
)

func (t LeadType) Valid() bool {
	return t == LeadTypeCustomer || t == LeadTypeCaregiver
}

type Lead struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Type      LeadType  `db:"type" json:"type"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Message   *string   `db:"message" json:"message,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
