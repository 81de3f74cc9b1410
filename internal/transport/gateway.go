// Package transport is the single HTTP gateway to the clinical-records
// backend: base URL, JSON headers, bearer-token injection, and the
// normalization of transport failures into the apierror taxonomy.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/JFR35/pdaw-client/pkg/apierror"
	"github.com/JFR35/pdaw-client/pkg/metrics"
)

// TokenSource supplies the current bearer token. An empty token means
// the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

type Gateway struct {
	http    *resty.Client
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New builds a gateway for baseURL. tokens may be nil for a client
// that never authenticates; m may be nil to disable metrics.
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger zerolog.Logger, m *metrics.Metrics) *Gateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if tokens != nil {
			if t := tokens.Token(); t != "" {
				r.SetAuthToken(t)
			}
		}
		return nil
	})

	return &Gateway{
		http:    client,
		logger:  logger.With().Str("component", "gateway").Logger(),
		metrics: m,
	}
}

// BaseURL reports the configured base address.
func (g *Gateway) BaseURL() string {
	return g.http.BaseURL
}

// Get issues a GET and decodes the JSON response into out. A 404 comes
// back as a KindNotFound error so callers can treat absence as a
// non-failure.
func (g *Gateway) Get(ctx context.Context, path string, query map[string]string, out any, fallback string) error {
	return g.do(ctx, http.MethodGet, path, query, nil, out, fallback)
}

func (g *Gateway) Post(ctx context.Context, path string, query map[string]string, body, out any, fallback string) error {
	return g.do(ctx, http.MethodPost, path, query, body, out, fallback)
}

func (g *Gateway) Put(ctx context.Context, path string, body, out any, fallback string) error {
	return g.do(ctx, http.MethodPut, path, nil, body, out, fallback)
}

func (g *Gateway) Delete(ctx context.Context, path string, fallback string) error {
	return g.do(ctx, http.MethodDelete, path, nil, nil, nil, fallback)
}

func (g *Gateway) do(ctx context.Context, method, path string, query map[string]string, body, out any, fallback string) error {
	req := g.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		g.metrics.ObserveFailure(method)
		g.logger.Error().Err(err).Str("method", method).Str("path", path).
			Msg("request failed without a response")
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			// The request went out (or timed out on the wire).
			return apierror.NoResponse(err, fallback)
		}
		return apierror.Request(err, fallback)
	}

	status := resp.StatusCode()
	g.metrics.ObserveRequest(method, strconv.Itoa(status), elapsed)

	if resp.IsError() {
		g.logger.Debug().Str("method", method).Str("path", path).
			Int("status", status).Bytes("body", resp.Body()).
			Msg("error response")
		apiErr := apierror.HTTP(status, resp.Body(), fallback)
		if status == http.StatusNotFound {
			apiErr.Kind = apierror.KindNotFound
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return apierror.Parse(err, fallback)
		}
	}
	return nil
}
