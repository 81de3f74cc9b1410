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

func TestPatientCreateGetDeleteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patients := store.NewPatientStore(env.gw, logger.Nop())

	rec, err := patients.CreatePatient(ctx, testPatient("12345678A"))
	require.NoError(t, err)
	assert.Equal(t, "12345678A", rec.NationalID)
	assert.NotEmpty(t, rec.FHIRID, "backend assigns the FHIR resource id")
	assert.NotEmpty(t, rec.EHRID, "backend assigns the EHR record id")
	assert.Equal(t, 1, patients.Len())
	assert.Empty(t, patients.LastError())

	cached, ok := patients.Get("12345678A")
	require.True(t, ok)
	assert.Equal(t, rec.FHIRID, cached.FHIRID)

	ehrID, ok := patients.EHRID("12345678A")
	require.True(t, ok)
	assert.Equal(t, rec.EHRID, ehrID)

	// A second client sees the stored record.
	fresh := store.NewPatientStore(env.gw, logger.Nop())
	fetched, err := fresh.GetByKey(ctx, "12345678A")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, rec.EHRID, fetched.EHRID)
	assert.Equal(t, "García López", fetched.Patient.Name[0].Family)

	require.NoError(t, patients.Delete(ctx, "12345678A"))
	assert.Equal(t, 0, patients.Len())

	gone, err := fresh.GetByKey(ctx, "12345678A")
	require.NoError(t, err, "absence is not an error")
	assert.Nil(t, gone)
	assert.Empty(t, fresh.LastError())
}

func TestPatientCreateValidationBlocksRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patients := store.NewPatientStore(env.gw, logger.Nop())

	doc := testPatient("12345678A")
	doc.Identifier = nil

	_, err := patients.CreatePatient(ctx, doc)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.NotEmpty(t, patients.LastError())
	assert.Equal(t, 0, patients.Len())

	// Nothing reached the backend.
	fresh := store.NewPatientStore(env.gw, logger.Nop())
	require.NoError(t, fresh.LoadAll(ctx))
	assert.Equal(t, 0, fresh.Len())
}

func TestPatientCreateDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patients := store.NewPatientStore(env.gw, logger.Nop())

	_, err := patients.CreatePatient(ctx, testPatient("12345678A"))
	require.NoError(t, err)

	_, err = patients.CreatePatient(ctx, testPatient("12345678A"))
	require.Error(t, err)
	var ae *apierror.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 409, ae.Status)
	assert.Equal(t, "patient already exists", ae.Message)
	assert.Equal(t, 1, patients.Len())
}

func TestPatientLoadAllDropsCorruptRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.srv.SeedCorruptPatient("00000000X")

	seeder := store.NewPatientStore(env.gw, logger.Nop())
	_, err := seeder.CreatePatient(ctx, testPatient("12345678A"))
	require.NoError(t, err)

	patients := store.NewPatientStore(env.gw, logger.Nop())
	require.NoError(t, patients.LoadAll(ctx))
	assert.Equal(t, 1, patients.Len())
	_, ok := patients.Get("12345678A")
	assert.True(t, ok)
	assert.Empty(t, patients.LastError())
}

func TestPatientLoadAllFailsWhenNothingParses(t *testing.T) {
	env := newTestEnv(t)
	env.srv.SeedCorruptPatient("00000000X")

	patients := store.NewPatientStore(env.gw, logger.Nop())
	err := patients.LoadAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apierror.KindParse, apierror.KindOf(err))
	assert.Equal(t, 0, patients.Len())
	assert.NotEmpty(t, patients.LastError())
}

func TestPatientLoadAllTransportFailureRetainsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	patients := store.NewPatientStore(env.gw, logger.Nop())

	_, err := patients.CreatePatient(ctx, testPatient("12345678A"))
	require.NoError(t, err)
	require.NoError(t, patients.LoadAll(ctx))

	env.ts.Close()

	err = patients.LoadAll(ctx)
	require.Error(t, err)
	assert.NotEmpty(t, patients.LastError())
	assert.Equal(t, 1, patients.Len(), "a failed refresh keeps previous data")
	rec, ok := patients.Get("12345678A")
	require.True(t, ok)
	assert.Equal(t, "12345678A", rec.NationalID)
}

func TestPractitionerCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	practitioners := store.NewPractitionerStore(env.gw, logger.Nop())

	rec, err := practitioners.CreatePractitioner(ctx, testPractitioner("87654321B"))
	require.NoError(t, err)
	assert.Equal(t, "87654321B", rec.NationalID)
	assert.NotEmpty(t, rec.FHIRID)

	fresh := store.NewPractitionerStore(env.gw, logger.Nop())
	require.NoError(t, fresh.LoadAll(ctx))
	require.Equal(t, 1, fresh.Len())
	list := fresh.List()
	assert.Equal(t, "Ana Ruiz Sanz", list[0].Practitioner.FullName())
}

func TestPractitionerUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	practitioners := store.NewPractitionerStore(env.gw, logger.Nop())

	_, err := practitioners.CreatePractitioner(ctx, testPractitioner("87654321B"))
	require.NoError(t, err)

	doc := testPractitioner("87654321B")
	doc.Name[0].Given = []string{"Ana", "Isabel"}
	updated, err := practitioners.UpdatePractitioner(ctx, "87654321B", doc)
	require.NoError(t, err)
	assert.Equal(t, "Ana Isabel Ruiz Sanz", updated.Practitioner.FullName())

	cached, ok := practitioners.Get("87654321B")
	require.True(t, ok)
	assert.Equal(t, []string{"Ana", "Isabel"}, cached.Practitioner.Name[0].Given)
}

func TestPatientEnvelopeRejectedWithoutIdentity(t *testing.T) {
	// A record keyed "N/A" upstream must not enter the cache.
	raw := []byte(`{"id":7,"nationalId":"N/A","resourcePatientJson":"{}"}`)
	_, err := model.DecodePatientEnvelope(raw)
	require.Error(t, err)
}
