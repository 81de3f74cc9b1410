// Package fakeserver is an in-memory stand-in for the clinical-records
// backend. Tests run it under httptest; cmd/pdaw-mockserver runs it
// standalone for local development against the CLI.
package fakeserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/JFR35/pdaw-client/internal/model"
)

type account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         model.Role
	HasProfile   bool
}

type documentEntry struct {
	LocalID    int64
	NationalID string
	FHIRID     string
	EHRID      string
	Resource   string
}

type userEntry struct {
	User model.User
	// objectRoles renders roles as {"name": ...} objects instead of
	// bare strings, mirroring the backend's two historical shapes.
	objectRoles bool
}

type composition struct {
	EHRID string
	Flat  map[string]any
}

type Server struct {
	mu sync.Mutex

	jwtSecret    []byte
	loginLimiter *rate.Limiter

	accounts      map[string]*account // by email
	patients      map[string]*documentEntry
	patientOrder  []string
	practitioners map[string]*documentEntry
	practOrder    []string
	users         []*userEntry
	visits        map[string]model.VisitResponse
	compositions  map[string]composition

	nextLocalID int64
	nextUserID  int64
}

func New() *Server {
	return &Server{
		jwtSecret:     []byte("fakeserver-secret"),
		loginLimiter:  rate.NewLimiter(rate.Limit(50), 100),
		accounts:      make(map[string]*account),
		patients:      make(map[string]*documentEntry),
		practitioners: make(map[string]*documentEntry),
		visits:        make(map[string]model.VisitResponse),
		compositions:  make(map[string]composition),
		nextUserID:    1,
	}
}

// Handler builds the gin engine with the full API surface mounted
// under /api.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.requireAuth())
	{
		authed.GET("/patients", s.listPatients)
		authed.GET("/patients/:key", s.getPatient)
		authed.POST("/patients", s.createPatient)
		authed.PUT("/patients/:key", s.updatePatient)
		authed.DELETE("/patients/:key", s.deletePatient)

		authed.GET("/practitioners", s.listPractitioners)
		authed.GET("/practitioners/:key", s.getPractitioner)
		authed.GET("/practitioners/:key/profile", s.getPractitionerProfile)
		authed.POST("/practitioners", s.createPractitioner)
		authed.PUT("/practitioners/:key", s.updatePractitioner)
		authed.DELETE("/practitioners/:key", s.deletePractitioner)

		authed.GET("/users", s.listUsers)
		authed.POST("/users", s.createUser)
		authed.PUT("/users/:id", s.updateUser)
		authed.DELETE("/users/:id", s.deleteUser)

		authed.POST("/visits", s.createVisit)
		authed.GET("/visits/:uuid", s.getVisit)
		authed.GET("/visits/patient/:key", s.listVisitsByPatient)

		authed.GET("/blood-pressure/:compositionId", s.getBloodPressure)
	}

	return r
}

// SeedAccount registers a login. Returns the generated user id.
func (s *Server) SeedAccount(email, password string, role model.Role, hasProfile bool) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.accounts[email] = &account{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		HasProfile:   hasProfile,
	}
	return id
}

// SeedCorruptPatient stores an envelope whose embedded document is not
// valid JSON, for partial-failure tests.
func (s *Server) SeedCorruptPatient(nationalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLocalID++
	s.patients[nationalID] = &documentEntry{
		LocalID:    s.nextLocalID,
		NationalID: nationalID,
		FHIRID:     uuid.NewString(),
		EHRID:      uuid.NewString(),
		Resource:   `{"resourceType": "Patient", "identifier": [`,
	}
	s.patientOrder = append(s.patientOrder, nationalID)
}

func (e *documentEntry) patientEnvelope() gin.H {
	return gin.H{
		"id":                  e.LocalID,
		"nationalId":          e.NationalID,
		"fhirId":              e.FHIRID,
		"ehrId":               e.EHRID,
		"resourcePatientJson": e.Resource,
	}
}

func (e *documentEntry) practitionerEnvelope() gin.H {
	return gin.H{
		"id":                   e.LocalID,
		"nationalId":           e.NationalID,
		"fhirId":               e.FHIRID,
		"fhirPractitionerJson": e.Resource,
	}
}

func errorBody(msg string) gin.H {
	return gin.H{"message": msg}
}

func marshalDocument(doc any) string {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("document marshal: %v", err))
	}
	return string(data)
}
