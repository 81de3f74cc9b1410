package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/apierror"
)

const (
	ehrIDMemoTTL     = 15 * time.Minute
	ehrIDMemoCleanup = 30 * time.Minute
)

// BloodPressureStore reads flattened blood-pressure compositions from
// the EHR. It is also the cross-entity correlator: a composition read
// needs the owning patient's EHR record id, resolved through the
// patient store and memoized with a TTL.
type BloodPressureStore struct {
	tracker

	gw       *transport.Gateway
	patients *PatientStore
	log      zerolog.Logger
	ehrIDs   *gocache.Cache
}

func NewBloodPressureStore(gw *transport.Gateway, patients *PatientStore, log zerolog.Logger) *BloodPressureStore {
	return &BloodPressureStore{
		gw:       gw,
		patients: patients,
		log:      log.With().Str("store", "blood_pressure").Logger(),
		ehrIDs:   gocache.New(ehrIDMemoTTL, ehrIDMemoCleanup),
	}
}

// resolveEHRID finds the patient's EHR record id: memo first, then the
// patient cache, then a remote fetch. ok is false when the id cannot
// be established.
func (s *BloodPressureStore) resolveEHRID(ctx context.Context, nationalID string) (string, bool) {
	if cached, hit := s.ehrIDs.Get(nationalID); hit {
		return cached.(string), true
	}

	rec, ok := s.patients.Get(nationalID)
	if !ok {
		fetched, err := s.patients.GetByKey(ctx, nationalID)
		if err != nil || fetched == nil {
			return "", false
		}
		rec = fetched
	}
	if rec.EHRID == "" {
		return "", false
	}
	s.ehrIDs.Set(nationalID, rec.EHRID, gocache.DefaultExpiration)
	return rec.EHRID, true
}

// FetchMeasurement reads the flattened composition for a patient. A
// missing composition id, an unresolvable patient record id, or an
// absent composition all degrade to (nil, nil) with a warning; the
// visit stays usable without its measurement detail.
func (s *BloodPressureStore) FetchMeasurement(ctx context.Context, compositionID, patientNationalID string) (*model.BloodPressureMeasurement, error) {
	if compositionID == "" {
		return nil, nil
	}

	ehrID, ok := s.resolveEHRID(ctx, patientNationalID)
	if !ok {
		s.log.Warn().Str("patient", patientNationalID).Str("composition", compositionID).
			Msg("no EHR record id for patient, skipping measurement fetch")
		return nil, nil
	}

	s.begin()
	defer s.end()

	var flat model.BloodPressureFlat
	err := s.gw.Get(ctx, "/blood-pressure/"+compositionID,
		map[string]string{"ehrId": ehrID}, &flat,
		"failed to fetch blood pressure measurement")
	if apierror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		s.fail(errMessage(err))
		return nil, err
	}

	measurement := flat.ToMeasurement()
	if err := measurement.Validate(); err != nil {
		parseErr := apierror.Parse(err, "blood pressure composition is incomplete")
		s.fail(parseErr.Message)
		return nil, parseErr
	}
	return measurement, nil
}
