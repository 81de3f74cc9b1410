package store_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JFR35/pdaw-client/internal/fakeserver"
	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/session"
	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/logger"
)

type testEnv struct {
	srv *fakeserver.Server
	ts  *httptest.Server
	gw  *transport.Gateway
}

// newTestEnv stands up the in-memory backend and a gateway holding an
// authenticated admin session.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	srv := fakeserver.New()
	srv.SeedAccount("admin@pdaw.local", "admin123!", model.RoleAdmin, false)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	storage, err := session.NewStorage(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(storage, logger.Nop())
	gw := transport.New(ts.URL+"/api", 5*time.Second, sessions, logger.Nop(), nil)
	sessions.SetGateway(gw)
	require.True(t, sessions.Login(context.Background(), "admin@pdaw.local", "admin123!"))

	return &testEnv{srv: srv, ts: ts, gw: gw}
}

func testPatient(nationalID string) model.Patient {
	return model.Patient{
		ResourceType: "Patient",
		Identifier: []model.Identifier{{
			System: "http://www.spain.es/dni",
			Value:  nationalID,
			Use:    "official",
		}},
		Name: []model.HumanName{{
			Use:    "official",
			Family: "García López",
			Given:  []string{"María"},
		}},
		Gender:    model.GenderFemale,
		BirthDate: "1984-03-12",
	}
}

func testPractitioner(nationalID string) model.Practitioner {
	return model.Practitioner{
		ResourceType: "Practitioner",
		Identifier: []model.Identifier{{
			System: "http://www.spain.es/dni",
			Value:  nationalID,
			Use:    "official",
		}},
		Name: []model.HumanName{{
			Use:    "official",
			Family: "Ruiz Sanz",
			Given:  []string{"Ana"},
		}},
		Gender: model.GenderFemale,
	}
}
