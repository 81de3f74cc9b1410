package model

import (
	"fmt"
	"time"
)

// BloodPressureMeasurement is an embedded blood-pressure observation.
// A measurement must carry complete magnitude/unit pairs for both the
// systolic and diastolic values; a visit without a measurement is
// valid.
type BloodPressureMeasurement struct {
	Date               string  `json:"date,omitempty"`
	SystolicMagnitude  float64 `json:"systolicMagnitude"`
	SystolicUnit       string  `json:"systolicUnit"`
	DiastolicMagnitude float64 `json:"diastolicMagnitude"`
	DiastolicUnit      string  `json:"diastolicUnit"`
	Location           string  `json:"location,omitempty"`
	MeasuredBy         string  `json:"measuredBy,omitempty"`
}

func (m *BloodPressureMeasurement) Validate() error {
	if m.SystolicMagnitude <= 0 || m.SystolicUnit == "" {
		return fmt.Errorf("systolic value requires both magnitude and unit")
	}
	if m.DiastolicMagnitude <= 0 || m.DiastolicUnit == "" {
		return fmt.Errorf("diastolic value requires both magnitude and unit")
	}
	return nil
}

// VisitRequest is the client's create payload.
type VisitRequest struct {
	PatientNationalID        string                    `json:"patientNationalId"`
	PractitionerNationalID   string                    `json:"practitionerNationalId"`
	VisitDate                string                    `json:"visitDate,omitempty"`
	BloodPressureMeasurement *BloodPressureMeasurement `json:"bloodPressureMeasurement,omitempty"`
}

// VisitResponse is the backend's flat DTO for a stored visit.
type VisitResponse struct {
	VisitUUID                  string `json:"visitUuid"`
	PatientNationalID          string `json:"patientNationalId"`
	PractitionerNationalID     string `json:"practitionerNationalId"`
	PractitionerName           string `json:"practitionerName"`
	VisitDate                  string `json:"visitDate"`
	BloodPressureCompositionID string `json:"bloodPressureCompositionId,omitempty"`
	EHRID                      string `json:"ehrId,omitempty"`
}

// Visit is the cached form, with the wire date parsed.
type Visit struct {
	UUID                       string
	PatientNationalID          string
	PractitionerNationalID     string
	PractitionerName           string
	Date                       time.Time
	BloodPressureCompositionID string
	EHRID                      string
	Measurement                *BloodPressureMeasurement
}

func (r VisitResponse) ToVisit() (*Visit, error) {
	v := &Visit{
		UUID:                       r.VisitUUID,
		PatientNationalID:          r.PatientNationalID,
		PractitionerNationalID:     r.PractitionerNationalID,
		PractitionerName:           r.PractitionerName,
		BloodPressureCompositionID: r.BloodPressureCompositionID,
		EHRID:                      r.EHRID,
	}
	if r.VisitDate != "" {
		parsed, err := time.Parse(time.RFC3339, r.VisitDate)
		if err != nil {
			return nil, fmt.Errorf("malformed visit date %q: %w", r.VisitDate, err)
		}
		v.Date = parsed
	}
	return v, nil
}
