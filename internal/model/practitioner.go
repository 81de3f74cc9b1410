package model

import (
	"encoding/json"
	"fmt"
)

// Qualification is a coded professional qualification clause.
type Qualification struct {
	Code CodeableConcept `json:"code"`
}

// Practitioner is the parsed clinical document for one care
// professional. The identifier is the national id, not a license
// number.
type Practitioner struct {
	ResourceType  string          `json:"resourceType"`
	ID            string          `json:"id,omitempty"`
	Meta          *Meta           `json:"meta,omitempty"`
	Identifier    []Identifier    `json:"identifier" validate:"min=1,dive"`
	Name          []HumanName     `json:"name" validate:"min=1,dive"`
	Gender        Gender          `json:"gender,omitempty" validate:"omitempty,oneof=male female other unknown"`
	BirthDate     string          `json:"birthDate,omitempty"`
	Qualification []Qualification `json:"qualification,omitempty"`
}

func (p *Practitioner) NationalID() string {
	if len(p.Identifier) == 0 {
		return ""
	}
	return p.Identifier[0].Value
}

func (p *Practitioner) FullName() string {
	if len(p.Name) == 0 {
		return ""
	}
	return p.Name[0].String()
}

func (p *Practitioner) Normalize() {
	if p.ResourceType == "" {
		p.ResourceType = "Practitioner"
	}
}

// PractitionerEnvelope mirrors the backend DTO for a stored
// practitioner document.
type PractitionerEnvelope struct {
	ID         json.Number `json:"id,omitempty"`
	NationalID string      `json:"nationalId"`
	FHIRID     string      `json:"fhirId,omitempty"`
	Resource   string      `json:"fhirPractitionerJson"`
}

type PractitionerRecord struct {
	LocalID      string
	NationalID   string
	FHIRID       string
	Practitioner Practitioner
}

func (r *PractitionerRecord) Key() string { return r.NationalID }

func DecodePractitionerEnvelope(raw []byte) (*PractitionerRecord, error) {
	var env PractitionerEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed practitioner envelope: %w", err)
	}
	return env.Decode()
}

func (env *PractitionerEnvelope) Decode() (*PractitionerRecord, error) {
	if env.NationalID == "" || env.NationalID == "N/A" {
		return nil, fmt.Errorf("practitioner envelope has no national id")
	}
	var doc Practitioner
	if err := json.Unmarshal([]byte(env.Resource), &doc); err != nil {
		return nil, fmt.Errorf("malformed practitioner document for %s: %w", env.NationalID, err)
	}
	if doc.ID == "" && env.FHIRID != "" {
		doc.ID = env.FHIRID
	}
	if len(doc.Identifier) == 0 {
		doc.Identifier = []Identifier{{System: "national", Value: env.NationalID}}
	} else if doc.Identifier[0].Value != env.NationalID {
		return nil, fmt.Errorf("practitioner document identifier %q disagrees with envelope %q",
			doc.Identifier[0].Value, env.NationalID)
	}
	doc.Normalize()
	return &PractitionerRecord{
		LocalID:      env.ID.String(),
		NationalID:   env.NationalID,
		FHIRID:       env.FHIRID,
		Practitioner: doc,
	}, nil
}
