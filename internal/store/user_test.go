package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/store"
	"github.com/JFR35/pdaw-client/pkg/apierror"
	"github.com/JFR35/pdaw-client/pkg/logger"
)

func testUser(first, email string, roles ...model.Role) model.User {
	return model.User{
		FirstName: first,
		LastName:  "Pérez",
		Email:     email,
		Password:  "changeme1!",
		Roles:     roles,
	}
}

func TestLoadMedicsFiltersAndNormalizesRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := store.NewUserStore(env.gw, logger.Nop())

	// The backend alternates between role wire shapes per user, so
	// both practitioners here come back in different encodings.
	for _, u := range []model.User{
		testUser("Ana", "ana@pdaw.local", model.RolePractitioner),
		testUser("Luis", "luis@pdaw.local", model.RolePractitioner),
		testUser("Eva", "eva@pdaw.local", model.RoleAdmin),
	} {
		_, err := users.Create(ctx, u)
		require.NoError(t, err)
	}

	medics := store.NewUserStore(env.gw, logger.Nop())
	require.NoError(t, medics.LoadMedics(ctx))

	list := medics.Users()
	require.Len(t, list, 2, "admin accounts are filtered out")
	for _, u := range list {
		assert.True(t, u.HasRole(model.RolePractitioner))
		assert.Equal(t, []model.Role{model.RolePractitioner}, u.Roles)
	}
	assert.Empty(t, medics.LastError())
}

func TestUserCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	users := store.NewUserStore(env.gw, logger.Nop())

	u := testUser("Ana", "not-an-email", model.RolePractitioner)
	_, err := users.Create(context.Background(), u)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.NotEmpty(t, users.LastError())
	assert.Len(t, users.Users(), 0)
}

func TestUserUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := store.NewUserStore(env.gw, logger.Nop())

	created, err := users.Create(ctx, testUser("Ana", "ana@pdaw.local", model.RolePractitioner))
	require.NoError(t, err)
	require.NotZero(t, created.UserID)

	created.FirstName = "Ana María"
	updated, err := users.Update(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.FirstName)
	assert.Equal(t, created.UserID, updated.UserID)

	require.NoError(t, users.Delete(ctx, created.UserID))
	assert.Len(t, users.Users(), 0)

	// Deleting again surfaces the backend's error; user deletions
	// must never fail silently.
	err = users.Delete(ctx, created.UserID)
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
	assert.NotEmpty(t, users.LastError())
}

func TestUserUpdateRequiresID(t *testing.T) {
	env := newTestEnv(t)
	users := store.NewUserStore(env.gw, logger.Nop())

	u := testUser("Ana", "ana@pdaw.local", model.RolePractitioner)
	_, err := users.Update(context.Background(), u)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}
