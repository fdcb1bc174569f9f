// Package vitals stores patient measurements (blood pressure, pulse,
// glucose, temperature, oxygen saturation) for the dashboard charts.
package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Vital types recorded by caregivers.
const (
	TypeBloodPressure    = "blood_pressure"
	TypeHeartRate        = "heart_rate"
	TypeBloodGlucose     = "blood_glucose"
	TypeTemperature      = "temperature"
	TypeOxygenSaturation = "oxygen_saturation"
)

// Vital maps to the vitals table. Blood pressure uses the systolic and
// diastolic pair; every other type uses the single value column.
type Vital struct {
	ID         int64      `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Type       string     `db:"type" json:"type"`
	Systolic   *float64   `db:"systolic" json:"systolic,omitempty"`
	Diastolic  *float64   `db:"diastolic" json:"diastolic,omitempty"`
	Value      *float64   `db:"value" json:"value,omitempty"`
	MeasuredAt time.Time  `db:"measured_at" json:"measured_at"`
	RecordedBy *uuid.UUID `db:"recorded_by" json:"recorded_by,omitempty"`
}
