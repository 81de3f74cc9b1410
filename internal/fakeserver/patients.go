package fakeserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JFR35/pdaw-client/internal/model"
)

func (s *Server) listPatients(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, 0, len(s.patientOrder))
	for _, key := range s.patientOrder {
		out = append(out, s.patients[key].patientEnvelope())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPatient(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.patients[c.Param("key")]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("patient not found"))
		return
	}
	c.JSON(http.StatusOK, entry.patientEnvelope())
}

func (s *Server) createPatient(c *gin.Context) {
	var doc model.Patient
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed patient document"))
		return
	}
	nationalID := doc.NationalID()
	if nationalID == "" {
		c.JSON(http.StatusBadRequest, errorBody("patient document has no identifier"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patients[nationalID]; exists {
		c.JSON(http.StatusConflict, errorBody("patient already exists"))
		return
	}
	doc.ID = uuid.NewString()
	s.nextLocalID++
	entry := &documentEntry{
		LocalID:    s.nextLocalID,
		NationalID: nationalID,
		FHIRID:     doc.ID,
		EHRID:      uuid.NewString(),
		Resource:   marshalDocument(&doc),
	}
	s.patients[nationalID] = entry
	s.patientOrder = append(s.patientOrder, nationalID)
	c.JSON(http.StatusCreated, entry.patientEnvelope())
}

func (s *Server) updatePatient(c *gin.Context) {
	var doc model.Patient
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed patient document"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.patients[c.Param("key")]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("patient not found"))
		return
	}
	if doc.ID == "" {
		doc.ID = entry.FHIRID
	}
	entry.Resource = marshalDocument(&doc)
	c.JSON(http.StatusOK, entry.patientEnvelope())
}

func (s *Server) deletePatient(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := c.Param("key")
	if _, ok := s.patients[key]; !ok {
		c.JSON(http.StatusNotFound, errorBody("patient not found"))
		return
	}
	delete(s.patients, key)
	for i, k := range s.patientOrder {
		if k == key {
			s.patientOrder = append(s.patientOrder[:i], s.patientOrder[i+1:]...)
			break
		}
	}
	c.Status(http.StatusNoContent)
}
