package model

import "fmt"

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// Identifier is a coded identifier on a clinical document. The first
// identifier carries the national id used as the business key.
type Identifier struct {
	System string `json:"system" validate:"required"`
	Value  string `json:"value" validate:"required"`
	Use    string `json:"use,omitempty"`
}

// HumanName follows the FHIR shape: one family name, at least one
// given name.
type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family" validate:"required"`
	Given  []string `json:"given" validate:"min=1,dive,required"`
}

func (n HumanName) String() string {
	full := ""
	for _, g := range n.Given {
		if full != "" {
			full += " "
		}
		full += g
	}
	if n.Family != "" {
		if full != "" {
			full += " "
		}
		full += n.Family
	}
	return full
}

type Meta struct {
	Profile []string `json:"profile,omitempty"`
}

// Narrative is the generated human-readable rendering embedded in a
// document.
type Narrative struct {
	Status string `json:"status"`
	Div    string `json:"div"`
}

// Coding is a single coded concept entry.
type Coding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding"`
}

func generatedNarrative(name HumanName, nationalID string, gender Gender, birthDate string) *Narrative {
	return &Narrative{
		Status: "generated",
		Div: fmt.Sprintf(`<div xmlns="http://www.w3.org/1999/xhtml"><p>Name: %s</p><p>Identifier: %s</p><p>Gender: %s</p><p>Birth date: %s</p></div>`,
			name.String(), nationalID, gender, birthDate),
	}
}
