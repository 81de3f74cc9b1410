package store

import "sync"

// tracker carries the per-store operation state every entity store
// shares: a busy flag for UI affordance, the last operator-readable
// error, and the per-key in-flight guard that rejects overlapping
// mutations on the same business key.
type tracker struct {
	mu        sync.Mutex
	busy      int
	lastError string
	inflight  map[string]struct{}
}

// begin marks an operation as started and clears the previous error.
func (t *tracker) begin() {
	t.mu.Lock()
	t.busy++
	t.lastError = ""
	t.mu.Unlock()
}

func (t *tracker) end() {
	t.mu.Lock()
	t.busy--
	t.mu.Unlock()
}

func (t *tracker) fail(msg string) {
	t.mu.Lock()
	t.lastError = msg
	t.mu.Unlock()
}

// Busy reports whether any operation is in flight.
func (t *tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy > 0
}

// LastError returns the last failure message, or "" after a clean
// operation.
func (t *tracker) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastError
}

// acquire claims the mutation slot for key. It returns false when a
// mutation on the same key is already in flight.
func (t *tracker) acquire(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight == nil {
		t.inflight = make(map[string]struct{})
	}
	if _, taken := t.inflight[key]; taken {
		return false
	}
	t.inflight[key] = struct{}{}
	return true
}

func (t *tracker) release(key string) {
	t.mu.Lock()
	delete(t.inflight, key)
	t.mu.Unlock()
}
