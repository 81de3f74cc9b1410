package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFR35/pdaw-client/internal/app"
	"github.com/JFR35/pdaw-client/internal/session"
	"github.com/JFR35/pdaw-client/pkg/logger"
)

func setSessionRole(t *testing.T, role string) {
	t.Helper()
	storage, err := session.NewStorage(t.TempDir())
	require.NoError(t, err)
	if role != "" {
		require.NoError(t, storage.Save("token-123", role, "user-1"))
	}
	sessions := session.NewManager(storage, logger.Nop())
	sessions.Initialize()
	client = &app.App{Sessions: sessions}
	t.Cleanup(func() { client = nil })
}

func TestPatientMutationsBelongToPractitioners(t *testing.T) {
	setSessionRole(t, "ROLE_PRACTITIONER")
	assert.NoError(t, requireRoute(practitionerRoute()))
	assert.NoError(t, requireRoute(dashboardRoute()))
	assert.Error(t, requireRoute(adminRoute()))

	// An admin is redirected away from the clinical area, so patient
	// mutations and visit reads are refused.
	setSessionRole(t, "ROLE_ADMIN")
	assert.Error(t, requireRoute(practitionerRoute()))
	assert.NoError(t, requireRoute(adminRoute()))
	assert.NoError(t, requireRoute(dashboardRoute()))
}

func TestCommandsRefusedWhenLoggedOut(t *testing.T) {
	setSessionRole(t, "")
	assert.Error(t, requireRoute(dashboardRoute()))
	assert.Error(t, requireRoute(practitionerRoute()))
	assert.Error(t, requireRoute(adminRoute()))
}
