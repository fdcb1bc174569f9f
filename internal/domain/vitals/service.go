package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	vitals VitalRepository

	now func() time.Time
}

func NewService(vitals VitalRepository) *Service {
	return &Service{vitals: vitals, now: time.Now}
}

var validVitalTypes = map[string]bool{
	TypeBloodPressure:    true,
	TypeHeartRate:        true,
	TypeBloodGlucose:     true,
	TypeTemperature:      true,
	TypeOxygenSaturation: true,
}

func (s *Service) RecordVital(ctx context.Context, v *Vital) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if !validVitalTypes[v.Type] {
		return fmt.Errorf("invalid vital type: %s", v.Type)
	}
	if v.Type == TypeBloodPressure {
		if v.Systolic == nil || v.Diastolic == nil {
			return fmt.Errorf("blood pressure requires systolic and diastolic")
		}
	} else if v.Value == nil {
		return fmt.Errorf("%s requires a value", v.Type)
	}
	if v.MeasuredAt.IsZero() {
		v.MeasuredAt = s.now()
	}
	return s.vitals.Create(ctx, v)
}

// ListVitals returns the last N days of measurements, oldest first.
func (s *Service) ListVitals(ctx context.Context, patientID uuid.UUID, days int) ([]*Vital, error) {
	if days <= 0 || days > 90 {
		days = 90
	}
	since := s.now().AddDate(0, 0, -days)
	return s.vitals.ListByPatient(ctx, patientID, since)
}

func (s *Service) DeleteVital(ctx context.Context, id int64) error {
	return s.vitals.Delete(ctx, id)
}
