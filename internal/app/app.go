// Package app wires the client stack: config, logger, session storage,
// session manager, gateway, and the entity stores. It is the single
// construction point the binaries share.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/internal/config"
	"github.com/JFR35/pdaw-client/internal/session"
	"github.com/JFR35/pdaw-client/internal/store"
	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/logger"
	"github.com/JFR35/pdaw-client/pkg/metrics"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *prometheus.Registry

	Sessions      *session.Manager
	Gateway       *transport.Gateway
	Patients      *store.PatientStore
	Practitioners *store.PractitionerStore
	Users         *store.UserStore
	Visits        *store.VisitStore
	BloodPressure *store.BloodPressureStore
}

// New builds the full client. The session manager is constructed
// before the gateway because the gateway draws its bearer token from
// it; any persisted session is restored before the first request.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{Level: cfg.Log.Level})

	storage, err := session.NewStorage(cfg.Session.Dir)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(storage, log)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics("pdaw", registry)

	gw := transport.New(cfg.API.BaseURL, cfg.API.Timeout(), sessions, log, m)
	sessions.SetGateway(gw)
	sessions.Initialize()

	patients := store.NewPatientStore(gw, log)
	bp := store.NewBloodPressureStore(gw, patients, log)

	return &App{
		Config:        cfg,
		Logger:        log,
		Registry:      registry,
		Sessions:      sessions,
		Gateway:       gw,
		Patients:      patients,
		Practitioners: store.NewPractitionerStore(gw, log),
		Users:         store.NewUserStore(gw, log),
		Visits:        store.NewVisitStore(gw, bp, log),
		BloodPressure: bp,
	}, nil
}
