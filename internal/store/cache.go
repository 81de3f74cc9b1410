// Package store holds the client-side synchronized caches, one per
// entity kind. Each store mirrors the server through the gateway and
// keeps an in-memory copy consistent with the responses it gets back.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/JFR35/pdaw-client/internal/transport"
	"github.com/JFR35/pdaw-client/pkg/apierror"
)

// Codec defines how one entity kind moves between its transport
// envelope and its cached form.
type Codec[T any] struct {
	// Decode parses one envelope into a record.
	Decode func(raw json.RawMessage) (T, error)
	// Key extracts the business key of a record.
	Key func(rec T) string
	// Validate returns field-level messages; nil passes.
	Validate func(rec T) []string
	// Encode builds the request body sent on create/update.
	Encode func(rec T) (any, error)
}

// Cache is the generic entity cache. Reads never leave the cache in a
// broken state: a failed load retains the previous contents and only
// records the error. Mutations on the same key are rejected while one
// is in flight.
type Cache[T any] struct {
	tracker

	name       string
	collection string
	// keyParam, when set, puts the business key in a query parameter
	// on create instead of relying on the document body alone.
	keyParam string

	gw    *transport.Gateway
	log   zerolog.Logger
	codec Codec[T]
	group singleflight.Group

	cacheMu sync.RWMutex
	records map[string]T
	order   []string
}

func newCache[T any](name, collection, keyParam string, gw *transport.Gateway, log zerolog.Logger, codec Codec[T]) *Cache[T] {
	return &Cache[T]{
		name:       name,
		collection: collection,
		keyParam:   keyParam,
		gw:         gw,
		log:        log.With().Str("store", name).Logger(),
		codec:      codec,
		records:    make(map[string]T),
	}
}

// LoadAll replaces the cache with the server's full collection. A
// record whose embedded document fails to parse is logged and dropped;
// only when every record drops does the load record an error. On
// transport failure the previous contents are retained.
func (c *Cache[T]) LoadAll(ctx context.Context) error {
	c.begin()
	defer c.end()

	var raws []json.RawMessage
	if err := c.gw.Get(ctx, c.collection, nil, &raws,
		fmt.Sprintf("failed to load %ss", c.name)); err != nil {
		c.fail(errMessage(err))
		return err
	}

	loaded := make(map[string]T, len(raws))
	order := make([]string, 0, len(raws))
	for _, raw := range raws {
		rec, err := c.codec.Decode(raw)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping unparseable record")
			continue
		}
		key := c.codec.Key(rec)
		if _, dup := loaded[key]; !dup {
			order = append(order, key)
		}
		loaded[key] = rec
	}

	if len(raws) > 0 && len(loaded) == 0 {
		err := apierror.Parse(nil, fmt.Sprintf("no valid %s records in server response", c.name))
		c.fail(err.Message)
		return err
	}

	c.cacheMu.Lock()
	c.records = loaded
	c.order = order
	c.cacheMu.Unlock()
	return nil
}

// GetByKey fetches a single record from the server and merges it into
// the cache. Absence is not a failure: a 404 returns the zero value
// with a nil error and leaves LastError untouched. Concurrent fetches
// of the same key are deduplicated.
func (c *Cache[T]) GetByKey(ctx context.Context, key string) (T, error) {
	var zero T
	if key == "" {
		err := apierror.Validation([]string{fmt.Sprintf("%s key is required", c.name)})
		c.fail(err.Message)
		return zero, err
	}

	v, err, _ := c.group.Do("get:"+key, func() (any, error) {
		c.begin()
		defer c.end()

		var raw json.RawMessage
		err := c.gw.Get(ctx, c.collection+"/"+key, nil, &raw,
			fmt.Sprintf("failed to fetch %s %s", c.name, key))
		if apierror.IsNotFound(err) {
			return zero, nil
		}
		if err != nil {
			c.fail(errMessage(err))
			return zero, err
		}

		rec, decErr := c.codec.Decode(raw)
		if decErr != nil {
			parseErr := apierror.Parse(decErr, fmt.Sprintf("failed to process %s document", c.name))
			c.fail(parseErr.Message)
			return zero, parseErr
		}
		c.put(rec)
		return rec, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Create validates the record locally, then sends it. Validation
// failure blocks the network call. On success the server's echoed
// record is appended to the cache and returned.
func (c *Cache[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	c.begin()
	defer c.end()

	if fields := c.codec.Validate(rec); len(fields) > 0 {
		err := apierror.Validation(fields)
		c.fail(err.Message)
		return zero, err
	}
	key := c.codec.Key(rec)

	if !c.acquire(key) {
		err := apierror.Conflict(key)
		c.fail(err.Message)
		return zero, err
	}
	defer c.release(key)

	body, err := c.codec.Encode(rec)
	if err != nil {
		reqErr := apierror.Request(err, fmt.Sprintf("failed to prepare %s", c.name))
		c.fail(reqErr.Message)
		return zero, reqErr
	}

	var query map[string]string
	if c.keyParam != "" {
		query = map[string]string{c.keyParam: key}
	}

	var raw json.RawMessage
	if err := c.gw.Post(ctx, c.collection, query, body, &raw,
		fmt.Sprintf("failed to create %s", c.name)); err != nil {
		c.fail(errMessage(err))
		return zero, err
	}

	created, err := c.codec.Decode(raw)
	if err != nil {
		parseErr := apierror.Parse(err,
			fmt.Sprintf("%s created, but its document could not be processed", c.name))
		c.fail(parseErr.Message)
		return zero, parseErr
	}
	c.put(created)
	return created, nil
}

// Update replaces the record under key with the server's echo. The
// same structural validation as Create applies before the call.
func (c *Cache[T]) Update(ctx context.Context, key string, rec T) (T, error) {
	var zero T
	c.begin()
	defer c.end()

	if fields := c.codec.Validate(rec); len(fields) > 0 {
		err := apierror.Validation(fields)
		c.fail(err.Message)
		return zero, err
	}

	if !c.acquire(key) {
		err := apierror.Conflict(key)
		c.fail(err.Message)
		return zero, err
	}
	defer c.release(key)

	body, err := c.codec.Encode(rec)
	if err != nil {
		reqErr := apierror.Request(err, fmt.Sprintf("failed to prepare %s", c.name))
		c.fail(reqErr.Message)
		return zero, reqErr
	}

	var raw json.RawMessage
	if err := c.gw.Put(ctx, c.collection+"/"+key, body, &raw,
		fmt.Sprintf("failed to update %s", c.name)); err != nil {
		c.fail(errMessage(err))
		return zero, err
	}

	updated, err := c.codec.Decode(raw)
	if err != nil {
		parseErr := apierror.Parse(err,
			fmt.Sprintf("%s updated, but its document could not be processed", c.name))
		c.fail(parseErr.Message)
		return zero, parseErr
	}
	c.put(updated)
	return updated, nil
}

// Delete removes the record only after the remote delete succeeds; a
// failure leaves the cache untouched and propagates to the caller.
func (c *Cache[T]) Delete(ctx context.Context, key string) error {
	c.begin()
	defer c.end()

	if !c.acquire(key) {
		err := apierror.Conflict(key)
		c.fail(err.Message)
		return err
	}
	defer c.release(key)

	if err := c.gw.Delete(ctx, c.collection+"/"+key,
		fmt.Sprintf("failed to delete %s %s", c.name, key)); err != nil {
		c.fail(errMessage(err))
		return err
	}

	c.cacheMu.Lock()
	delete(c.records, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.cacheMu.Unlock()
	return nil
}

// Get reads the cache without touching the network.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	rec, ok := c.records[key]
	return rec, ok
}

// List returns the cached records in load order.
func (c *Cache[T]) List() []T {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.records[key])
	}
	return out
}

func (c *Cache[T]) Len() int {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return len(c.records)
}

func (c *Cache[T]) put(rec T) {
	key := c.codec.Key(rec)
	c.cacheMu.Lock()
	if _, exists := c.records[key]; !exists {
		c.order = append(c.order, key)
	}
	c.records[key] = rec
	c.cacheMu.Unlock()
}

// errMessage pulls the operator-facing message out of an error.
func errMessage(err error) string {
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
