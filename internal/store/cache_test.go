package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JFR35/pdaw-client/internal/model"
	"github.com/JFR35/pdaw-client/internal/session"
	"github.com/JFR35/pdaw-client/internal/store"
	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/apierror"
	"github.com/JFR35/pdaw-client/pkg/logger"
)

// newRawGateway wires a gateway against an arbitrary handler, for
// tests that need precise control over response timing.
func newRawGateway(t *testing.T, h http.Handler) *transport.Gateway {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	storage, err := session.NewStorage(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(storage, logger.Nop())
	gw := transport.New(ts.URL+"/api", 5*time.Second, sessions, logger.Nop(), nil)
	sessions.SetGateway(gw)
	return gw
}

func writePractitionerEnvelope(w http.ResponseWriter, nationalID string) {
	doc := testPractitioner(nationalID)
	doc.ID = "prac-1"
	raw, _ := json.Marshal(&doc)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":                   1,
		"nationalId":           nationalID,
		"fhirId":               "prac-1",
		"fhirPractitionerJson": string(raw),
	})
}

func TestMutationRejectedWhileSameKeyInFlight(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		writePractitionerEnvelope(w, "87654321B")
	})
	practitioners := store.NewPractitionerStore(newRawGateway(t, handler), logger.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := practitioners.UpdatePractitioner(context.Background(), "87654321B",
			testPractitioner("87654321B"))
		done <- err
	}()
	<-entered

	// A second mutation on the same key while the first holds the
	// slot is rejected locally, whatever the operation.
	_, err := practitioners.UpdatePractitioner(context.Background(), "87654321B",
		testPractitioner("87654321B"))
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.NotEmpty(t, practitioners.LastError())

	err = practitioners.Delete(context.Background(), "87654321B")
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	close(release)
	require.NoError(t, <-done, "the first mutation completes untouched")

	// With the slot free again the next mutation goes through.
	_, err = practitioners.UpdatePractitioner(context.Background(), "87654321B",
		testPractitioner("87654321B"))
	require.NoError(t, err)
}

func TestGetByKeyDeduplicatesConcurrentReads(t *testing.T) {
	var gets int32
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&gets, 1)
		entered <- struct{}{}
		<-release
		writePractitionerEnvelope(w, "87654321B")
	})
	practitioners := store.NewPractitionerStore(newRawGateway(t, handler), logger.Nop())

	type result struct {
		rec *model.PractitionerRecord
		err error
	}
	results := make(chan result, 2)
	fetch := func() {
		rec, err := practitioners.GetByKey(context.Background(), "87654321B")
		results <- result{rec, err}
	}

	go fetch()
	<-entered
	go fetch()
	// Give the second call time to join the in-flight fetch before
	// the response is released.
	time.Sleep(100 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.NotNil(t, r.rec)
		assert.Equal(t, "87654321B", r.rec.NationalID)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&gets),
		"concurrent reads of one key share a single request")
}
