package fakeserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JFR35/pdaw-client/internal/model"
)

func (s *Server) createVisit(c *gin.Context) {
	var req model.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed visit request"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patient, ok := s.patients[req.PatientNationalID]
	if !ok {
		c.JSON(http.StatusBadRequest, errorBody("unknown patient"))
		return
	}
	practitioner, ok := s.practitioners[req.PractitionerNationalID]
	if !ok {
		c.JSON(http.StatusBadRequest, errorBody("unknown practitioner"))
		return
	}

	practitionerName := ""
	var doc model.Practitioner
	if err := json.Unmarshal([]byte(practitioner.Resource), &doc); err == nil {
		practitionerName = doc.FullName()
	}

	visitDate := req.VisitDate
	if visitDate == "" {
		visitDate = time.Now().UTC().Format(time.RFC3339)
	}

	resp := model.VisitResponse{
		VisitUUID:              uuid.NewString(),
		PatientNationalID:      req.PatientNationalID,
		PractitionerNationalID: req.PractitionerNationalID,
		PractitionerName:       practitionerName,
		VisitDate:              visitDate,
		EHRID:                  patient.EHRID,
	}

	if m := req.BloodPressureMeasurement; m != nil {
		compositionID := uuid.NewString()
		resp.BloodPressureCompositionID = compositionID

		flat := make(map[string]any)
		flat["blood_pressure/category|code"] = "433"
		flat["blood_pressure/category|value"] = "event"
		flat["blood_pressure/context/start_time"] = visitDate
		flat["blood_pressure/context/setting|value"] = "other care"
		flat["blood_pressure/blood_pressure/any_event:0/systolic|magnitude"] = m.SystolicMagnitude
		flat["blood_pressure/blood_pressure/any_event:0/systolic|unit"] = m.SystolicUnit
		flat["blood_pressure/blood_pressure/any_event:0/diastolic|magnitude"] = m.DiastolicMagnitude
		flat["blood_pressure/blood_pressure/any_event:0/diastolic|unit"] = m.DiastolicUnit
		flat["blood_pressure/blood_pressure/any_event:0/time"] = visitDate
		flat["blood_pressure/blood_pressure/location_of_measurement|value"] = m.Location
		flat["blood_pressure/composer|name"] = m.MeasuredBy
		flat["blood_pressure/_uid"] = compositionID + "::1"

		s.compositions[compositionID] = composition{EHRID: patient.EHRID, Flat: flat}
	}

	s.visits[resp.VisitUUID] = resp
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) getVisit(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visit, ok := s.visits[c.Param("uuid")]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("visit not found"))
		return
	}
	c.JSON(http.StatusOK, visit)
}

func (s *Server) listVisitsByPatient(c *gin.Context) {
	key := c.Param("key")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.VisitResponse, 0)
	for _, visit := range s.visits {
		if visit.PatientNationalID == key {
			out = append(out, visit)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getBloodPressure(c *gin.Context) {
	compositionID := c.Param("compositionId")
	ehrID := c.Query("ehrId")

	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.compositions[compositionID]
	if !ok || comp.EHRID != ehrID {
		c.JSON(http.StatusNotFound, errorBody("composition not found"))
		return
	}
	c.JSON(http.StatusOK, comp.Flat)
}
