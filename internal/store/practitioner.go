package store

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/transport"
)

// PractitionerStore is the synchronized cache of practitioner
// documents, keyed by national id. The backend takes the key as a
// query parameter on create and the document as a raw JSON string.
type PractitionerStore struct {
	*Cache[*model.PractitionerRecord]
}

func NewPractitionerStore(gw *transport.Gateway, log zerolog.Logger) *PractitionerStore {
	codec := Codec[*model.PractitionerRecord]{
		Decode: func(raw json.RawMessage) (*model.PractitionerRecord, error) {
			return model.DecodePractitionerEnvelope(raw)
		},
		Key: func(rec *model.PractitionerRecord) string {
			return rec.NationalID
		},
		Validate: func(rec *model.PractitionerRecord) []string {
			return model.ValidateDocument(&rec.Practitioner)
		},
		Encode: func(rec *model.PractitionerRecord) (any, error) {
			rec.Practitioner.Normalize()
			data, err := json.Marshal(&rec.Practitioner)
			if err != nil {
				return nil, err
			}
			return string(data), nil
		},
	}
	return &PractitionerStore{
		Cache: newCache("practitioner", "/practitioners", "nationalId", gw, log, codec),
	}
}

func (s *PractitionerStore) CreatePractitioner(ctx context.Context, doc model.Practitioner) (*model.PractitionerRecord, error) {
	return s.Create(ctx, &model.PractitionerRecord{
		NationalID:   doc.NationalID(),
		Practitioner: doc,
	})
}

func (s *PractitionerStore) UpdatePractitioner(ctx context.Context, key string, doc model.Practitioner) (*model.PractitionerRecord, error) {
	return s.Update(ctx, key, &model.PractitionerRecord{
		NationalID:   key,
		Practitioner: doc,
	})
}
