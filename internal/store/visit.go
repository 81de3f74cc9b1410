package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/apierror"
)

// VisitStore synchronizes clinical visits. A visit references its
// patient and practitioner by national id; when a stored visit carries
// a blood-pressure composition id, fetching the visit also tries to
// attach the measurement detail through the blood-pressure store.
type VisitStore struct {
	tracker

	gw  *transport.Gateway
	bp  *BloodPressureStore
	log zerolog.Logger

	cacheMu sync.RWMutex
	visits  map[string]*model.Visit
	order   []string
	current *model.Visit
}

func NewVisitStore(gw *transport.Gateway, bp *BloodPressureStore, log zerolog.Logger) *VisitStore {
	return &VisitStore{
		gw:     gw,
		bp:     bp,
		log:    log.With().Str("store", "visit").Logger(),
		visits: make(map[string]*model.Visit),
	}
}

func validateVisitRequest(req *model.VisitRequest) []string {
	var fields []string
	if req.PatientNationalID == "" || req.PatientNationalID == "N/A" {
		fields = append(fields, "patient national id is required")
	}
	if req.PractitionerNationalID == "" {
		fields = append(fields, "practitioner national id is required")
	}
	if req.BloodPressureMeasurement != nil {
		if err := req.BloodPressureMeasurement.Validate(); err != nil {
			fields = append(fields, err.Error())
		}
	}
	return fields
}

// Create stores a new visit, optionally with an embedded
// blood-pressure measurement the backend turns into a composition.
func (s *VisitStore) Create(ctx context.Context, req model.VisitRequest) (*model.Visit, error) {
	s.begin()
	defer s.end()

	if fields := validateVisitRequest(&req); len(fields) > 0 {
		err := apierror.Validation(fields)
		s.fail(err.Message)
		return nil, err
	}

	if !s.acquire(req.PatientNationalID) {
		err := apierror.Conflict(req.PatientNationalID)
		s.fail(err.Message)
		return nil, err
	}
	defer s.release(req.PatientNationalID)

	var resp model.VisitResponse
	if err := s.gw.Post(ctx, "/visits", nil, req, &resp, "failed to create visit"); err != nil {
		s.fail(errMessage(err))
		return nil, err
	}

	visit, err := resp.ToVisit()
	if err != nil {
		parseErr := apierror.Parse(err, "visit created, but its record could not be processed")
		s.fail(parseErr.Message)
		return nil, parseErr
	}
	visit.Measurement = req.BloodPressureMeasurement

	s.put(visit)
	return visit, nil
}

// GetByUUID fetches one visit. Absence returns (nil, nil). When the
// visit references a composition, the measurement detail is attached
// best-effort: a failed correlation logs a warning and leaves the
// visit without it.
func (s *VisitStore) GetByUUID(ctx context.Context, uuid string) (*model.Visit, error) {
	if uuid == "" {
		err := apierror.Validation([]string{"visit uuid is required"})
		s.fail(err.Message)
		return nil, err
	}

	s.begin()
	defer s.end()

	var resp model.VisitResponse
	err := s.gw.Get(ctx, "/visits/"+uuid, nil, &resp, "failed to fetch visit")
	if apierror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		s.fail(errMessage(err))
		return nil, err
	}

	visit, convErr := resp.ToVisit()
	if convErr != nil {
		parseErr := apierror.Parse(convErr, "failed to process visit record")
		s.fail(parseErr.Message)
		return nil, parseErr
	}

	if visit.BloodPressureCompositionID != "" {
		measurement, mErr := s.bp.FetchMeasurement(ctx, visit.BloodPressureCompositionID, visit.PatientNationalID)
		if mErr != nil {
			s.log.Warn().Err(mErr).Str("visit", uuid).
				Msg("could not attach blood pressure detail")
		} else {
			visit.Measurement = measurement
		}
	}

	s.put(visit)
	return visit, nil
}

// ListByPatient replaces the cached visit list with the patient's
// visits.
func (s *VisitStore) ListByPatient(ctx context.Context, patientNationalID string) ([]*model.Visit, error) {
	if patientNationalID == "" || patientNationalID == "N/A" {
		err := apierror.Validation([]string{"patient national id is required"})
		s.fail(err.Message)
		return nil, err
	}

	s.begin()
	defer s.end()

	var resps []model.VisitResponse
	if err := s.gw.Get(ctx, "/visits/patient/"+patientNationalID, nil, &resps,
		"failed to fetch patient visits"); err != nil {
		s.fail(errMessage(err))
		return nil, err
	}

	visits := make(map[string]*model.Visit, len(resps))
	order := make([]string, 0, len(resps))
	out := make([]*model.Visit, 0, len(resps))
	for _, resp := range resps {
		visit, err := resp.ToVisit()
		if err != nil {
			s.log.Warn().Err(err).Msg("dropping unparseable visit record")
			continue
		}
		if _, dup := visits[visit.UUID]; !dup {
			order = append(order, visit.UUID)
			out = append(out, visit)
		}
		visits[visit.UUID] = visit
	}

	s.cacheMu.Lock()
	s.visits = visits
	s.order = order
	s.cacheMu.Unlock()
	return out, nil
}

// Current returns the most recently created or fetched visit.
func (s *VisitStore) Current() *model.Visit {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.current
}

// Visits returns the cached visits in load order.
func (s *VisitStore) Visits() []*model.Visit {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	out := make([]*model.Visit, 0, len(s.order))
	for _, uuid := range s.order {
		out = append(out, s.visits[uuid])
	}
	return out
}

func (s *VisitStore) put(visit *model.Visit) {
	s.cacheMu.Lock()
	if _, exists := s.visits[visit.UUID]; !exists {
		s.order = append(s.order, visit.UUID)
	}
	s.visits[visit.UUID] = visit
	s.current = visit
	s.cacheMu.Unlock()
}
