package fakeserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/JFR35/pdaw-client/internal/model"
)

func (s *Server) listPractitioners(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, 0, len(s.practOrder))
	for _, key := range s.practOrder {
		out = append(out, s.practitioners[key].practitionerEnvelope())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPractitioner(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.practitioners[c.Param("key")]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("practitioner not found"))
		return
	}
	c.JSON(http.StatusOK, entry.practitionerEnvelope())
}

// getPractitionerProfile answers the session manager's profile check:
// 200 with the profile when the practitioner account has one, 404
// otherwise. The key here is the account's user id, not a national id.
func (s *Server) getPractitionerProfile(c *gin.Context) {
	userID := c.Param("key")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.ID == userID {
			if !acc.HasProfile {
				break
			}
			c.JSON(http.StatusOK, gin.H{"userId": acc.ID, "complete": true})
			return
		}
	}
	c.JSON(http.StatusNotFound, errorBody("practitioner profile not found"))
}

// createPractitioner takes the national id as a query parameter and
// the document as a raw JSON string body, matching the backend's
// historical contract for this entity.
func (s *Server) createPractitioner(c *gin.Context) {
	nationalID := c.Query("nationalId")
	if nationalID == "" {
		c.JSON(http.StatusBadRequest, errorBody("nationalId query parameter is required"))
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("unreadable request body"))
		return
	}
	var doc model.Practitioner
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed practitioner document"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.practitioners[nationalID]; exists {
		c.JSON(http.StatusConflict, errorBody("practitioner already exists"))
		return
	}
	doc.ID = uuid.NewString()
	s.nextLocalID++
	entry := &documentEntry{
		LocalID:    s.nextLocalID,
		NationalID: nationalID,
		FHIRID:     doc.ID,
		Resource:   marshalDocument(&doc),
	}
	s.practitioners[nationalID] = entry
	s.practOrder = append(s.practOrder, nationalID)
	c.JSON(http.StatusCreated, entry.practitionerEnvelope())
}

func (s *Server) updatePractitioner(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("unreadable request body"))
		return
	}
	var doc model.Practitioner
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed practitioner document"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.practitioners[c.Param("key")]
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("practitioner not found"))
		return
	}
	if doc.ID == "" {
		doc.ID = entry.FHIRID
	}
	entry.Resource = marshalDocument(&doc)
	c.JSON(http.StatusOK, entry.practitionerEnvelope())
}

func (s *Server) deletePractitioner(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := c.Param("key")
	if _, ok := s.practitioners[key]; !ok {
		c.JSON(http.StatusNotFound, errorBody("practitioner not found"))
		return
	}
	delete(s.practitioners, key)
	for i, k := range s.practOrder {
		if k == key {
			s.practOrder = append(s.practOrder[:i], s.practOrder[i+1:]...)
			break
		}
	}
	c.Status(http.StatusNoContent)
}
