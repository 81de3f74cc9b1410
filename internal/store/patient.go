package store

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/transport"
)

// PatientStore is the synchronized cache of patient documents, keyed
// by national id.
type PatientStore struct {
	*Cache[*model.PatientRecord]
}

func NewPatientStore(gw *transport.Gateway, log zerolog.Logger) *PatientStore {
	codec := Codec[*model.PatientRecord]{
		Decode: func(raw json.RawMessage) (*model.PatientRecord, error) {
			return model.DecodePatientEnvelope(raw)
		},
		Key: func(rec *model.PatientRecord) string {
			return rec.NationalID
		},
		Validate: func(rec *model.PatientRecord) []string {
			return model.ValidateDocument(&rec.Patient)
		},
		Encode: func(rec *model.PatientRecord) (any, error) {
			rec.Patient.Normalize()
			return &rec.Patient, nil
		},
	}
	return &PatientStore{
		Cache: newCache("patient", "/patients", "", gw, log, codec),
	}
}

// CreatePatient wraps a bare document into a record and creates it.
func (s *PatientStore) CreatePatient(ctx context.Context, doc model.Patient) (*model.PatientRecord, error) {
	return s.Create(ctx, &model.PatientRecord{
		NationalID: doc.NationalID(),
		Patient:    doc,
	})
}

// UpdatePatient replaces the document stored under key.
func (s *PatientStore) UpdatePatient(ctx context.Context, key string, doc model.Patient) (*model.PatientRecord, error) {
	return s.Update(ctx, key, &model.PatientRecord{
		NationalID: key,
		Patient:    doc,
	})
}

// EHRID returns the cached EHR record id for a patient, if known.
func (s *PatientStore) EHRID(nationalID string) (string, bool) {
	rec, ok := s.Get(nationalID)
	if !ok || rec.EHRID == "" {
		return "", false
	}
	return rec.EHRID, true
}
