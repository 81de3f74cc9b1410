package model

import (
	"encoding/json"
	"fmt"
)

// Patient is the parsed clinical document for one patient.
type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier" validate:"min=1,dive"`
	Name         []HumanName  `json:"name" validate:"min=1,dive"`
	Gender       Gender       `json:"gender" validate:"oneof=male female other unknown"`
	BirthDate    string       `json:"birthDate,omitempty"`
	Text         *Narrative   `json:"text,omitempty"`
}

// NationalID is the business key: the value of the first identifier.
func (p *Patient) NationalID() string {
	if len(p.Identifier) == 0 {
		return ""
	}
	return p.Identifier[0].Value
}

// Normalize fills defaults the backend tolerates being absent.
func (p *Patient) Normalize() {
	if p.ResourceType == "" {
		p.ResourceType = "Patient"
	}
	if !p.Gender.Valid() {
		p.Gender = GenderUnknown
	}
	if p.Text == nil && len(p.Name) > 0 {
		p.Text = generatedNarrative(p.Name[0], p.NationalID(), p.Gender, p.BirthDate)
	}
}

// PatientEnvelope is the transport wrapper the backend stores a
// patient in: flat lookup metadata plus the serialized document.
type PatientEnvelope struct {
	ID         json.Number `json:"id,omitempty"`
	NationalID string      `json:"nationalId"`
	FHIRID     string      `json:"fhirId,omitempty"`
	EHRID      string      `json:"ehrId,omitempty"`
	Resource   string      `json:"resourcePatientJson"`
}

// PatientRecord is the cached form: envelope bookkeeping plus the
// parsed document.
type PatientRecord struct {
	LocalID    string
	NationalID string
	FHIRID     string
	EHRID      string
	Patient    Patient
}

func (r *PatientRecord) Key() string { return r.NationalID }

// DecodePatientEnvelope parses one envelope into a record. The
// envelope's national id is authoritative: a document without an
// identifier gets it backfilled, a document disagreeing with it is a
// parse failure.
func DecodePatientEnvelope(raw []byte) (*PatientRecord, error) {
	var env PatientEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed patient envelope: %w", err)
	}
	return env.Decode()
}

func (env *PatientEnvelope) Decode() (*PatientRecord, error) {
	if env.NationalID == "" || env.NationalID == "N/A" {
		return nil, fmt.Errorf("patient envelope has no national id")
	}
	var doc Patient
	if err := json.Unmarshal([]byte(env.Resource), &doc); err != nil {
		return nil, fmt.Errorf("malformed patient document for %s: %w", env.NationalID, err)
	}
	if doc.ID == "" && env.FHIRID != "" {
		doc.ID = env.FHIRID
	}
	if len(doc.Identifier) == 0 {
		doc.Identifier = []Identifier{{System: "national", Value: env.NationalID}}
	} else if doc.Identifier[0].Value != env.NationalID {
		return nil, fmt.Errorf("patient document identifier %q disagrees with envelope %q",
			doc.Identifier[0].Value, env.NationalID)
	}
	doc.Normalize()
	return &PatientRecord{
		LocalID:    env.ID.String(),
		NationalID: env.NationalID,
		FHIRID:     env.FHIRID,
		EHRID:      env.EHRID,
		Patient:    doc,
	}, nil
}
