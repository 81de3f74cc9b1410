package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePatient() Patient {
	return Patient{
		ResourceType: "Patient",
		Identifier:   []Identifier{{System: "national", Value: "12345678D"}},
		Name:         []HumanName{{Family: "Fajardo", Given: []string{"Juan"}}},
		Gender:       GenderMale,
		BirthDate:    "1980-04-12",
	}
}

func TestPatientRoundTrip(t *testing.T) {
	original := samplePatient()
	data, err := json.Marshal(&original)
	require.NoError(t, err)

	var parsed Patient
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, original.Identifier, parsed.Identifier)
	assert.Equal(t, original.Name, parsed.Name)
	assert.Equal(t, original.Gender, parsed.Gender)
	assert.Equal(t, original.BirthDate, parsed.BirthDate)
}

func TestDecodePatientEnvelopeBackfillsFromEnvelope(t *testing.T) {
	doc := `{"resourceType":"Patient","name":[{"family":"Fajardo","given":["Juan"]}],"gender":"male","birthDate":"1980-04-12"}`
	env := PatientEnvelope{
		ID:         "3",
		NationalID: "12345678D",
		FHIRID:     "fhir-9",
		EHRID:      "ehr-1",
		Resource:   doc,
	}
	raw, err := json.Marshal(envelopeMap(env))
	require.NoError(t, err)

	rec, err := DecodePatientEnvelope(raw)
	require.NoError(t, err)

	assert.Equal(t, "12345678D", rec.NationalID)
	assert.Equal(t, "ehr-1", rec.EHRID)
	// The document had no id and no identifier; both come from the
	// envelope.
	assert.Equal(t, "fhir-9", rec.Patient.ID)
	require.Len(t, rec.Patient.Identifier, 1)
	assert.Equal(t, "12345678D", rec.Patient.Identifier[0].Value)
}

func TestDecodePatientEnvelopeKeepsDocumentIdentifier(t *testing.T) {
	doc := `{"resourceType":"Patient","id":"kept","identifier":[{"system":"national","value":"12345678D"}],"name":[{"family":"F","given":["G"]}],"gender":"female"}`
	raw := []byte(`{"id":1,"nationalId":"12345678D","fhirId":"other","resourcePatientJson":` + mustQuote(doc) + `}`)

	rec, err := DecodePatientEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, "kept", rec.Patient.ID)
}

func TestDecodePatientEnvelopeRejectsMismatch(t *testing.T) {
	doc := `{"resourceType":"Patient","identifier":[{"system":"national","value":"OTHER"}],"name":[{"family":"F","given":["G"]}]}`
	raw := []byte(`{"id":1,"nationalId":"12345678D","resourcePatientJson":` + mustQuote(doc) + `}`)

	_, err := DecodePatientEnvelope(raw)
	assert.Error(t, err)
}

func TestDecodePatientEnvelopeRejectsMissingNationalID(t *testing.T) {
	raw := []byte(`{"id":1,"nationalId":"N/A","resourcePatientJson":"{}"}`)
	_, err := DecodePatientEnvelope(raw)
	assert.Error(t, err)
}

func TestValidateDocumentRequiresIdentifier(t *testing.T) {
	doc := samplePatient()
	doc.Identifier = nil

	fields := ValidateDocument(&doc)
	require.NotEmpty(t, fields)
	assert.Contains(t, fields[0], "identifier")
	assert.Contains(t, fields[0], "required")
}

func TestValidateDocumentRequiresCompleteName(t *testing.T) {
	doc := samplePatient()
	doc.Name = []HumanName{{Family: "Solo"}}

	fields := ValidateDocument(&doc)
	assert.NotEmpty(t, fields)
}

func TestNormalizeGeneratesNarrative(t *testing.T) {
	doc := samplePatient()
	doc.Normalize()

	require.NotNil(t, doc.Text)
	assert.Equal(t, "generated", doc.Text.Status)
	assert.Contains(t, doc.Text.Div, "Juan Fajardo")
	assert.Contains(t, doc.Text.Div, "12345678D")
}

func envelopeMap(env PatientEnvelope) map[string]any {
	return map[string]any{
		"id":                  3,
		"nationalId":          env.NationalID,
		"fhirId":              env.FHIRID,
		"ehrId":               env.EHRID,
		"resourcePatientJson": env.Resource,
	}
}

func mustQuote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(data)
}
