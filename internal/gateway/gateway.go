// Package gateway performs authenticated JSON requests against the
// enrollment service. It owns no retry policy and no workflow knowledge;
// callers decide how to react to each failure class.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apierrors "github.com/tandikan/enroll/pkg/errors"
	"github.com/tandikan/enroll/pkg/telemetry"
)

// Gateway is a thin JSON HTTP wrapper around the service base URL.
type Gateway struct {
	baseURL   string
	client    *http.Client
	session   *Session
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	userAgent string
}

// New constructs a Gateway. client, session, logger and metrics are
// nil-tolerant; baseURL is required and its trailing slash is normalized
// away so endpoint paths keep the service's trailing-slash convention.
func New(baseURL string, client *http.Client, session *Session, logger *zap.Logger, metrics *telemetry.Metrics) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if session == nil {
		session = NewSession()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		session: session,
		logger:  logger,
		metrics: metrics,
	}
}

// WithUserAgent sets the User-Agent header on every outgoing request and
// returns the gateway for chaining during construction.
func (g *Gateway) WithUserAgent(ua string) *Gateway {
	g.userAgent = ua
	return g
}

// Session exposes the credential holder so auth flows can set and clear it.
func (g *Gateway) Session() *Session {
	return g.session
}

// Get performs a GET request and decodes the response into out.
func (g *Gateway) Get(ctx context.Context, path string, out interface{}) error {
	return g.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response into out.
func (g *Gateway) Post(ctx context.Context, path string, body, out interface{}) error {
	return g.do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT request with a JSON body and decodes the response into out.
func (g *Gateway) Put(ctx context.Context, path string, body, out interface{}) error {
	return g.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE request, discarding any response body.
func (g *Gateway) Delete(ctx context.Context, path string) error {
	return g.do(ctx, http.MethodDelete, path, nil, nil)
}

// metricPath templates a request path for metric labels: the query string is
// dropped and numeric segments become ":id", keeping the label set bounded.
func metricPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	url := g.baseURL + path
	label := metricPath(path)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &apierrors.RequestError{Op: method, URL: url, Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &apierrors.RequestError{Op: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := g.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.ObserveRequest(method, label, 0, time.Since(start))
		g.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &apierrors.RequestError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		g.metrics.ObserveRequest(method, label, resp.StatusCode, time.Since(start))
		return &apierrors.RequestError{Op: method, URL: url, Err: err}
	}

	g.metrics.ObserveRequest(method, label, resp.StatusCode, time.Since(start))
	g.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		g.logger.Error("malformed response", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return &apierrors.DecodeError{URL: url, Err: err}
	}
	return nil
}

// httpError builds an HTTPError, lifting the service's {"error": "..."}
// message into Code when present.
func httpError(status int, raw []byte) *apierrors.HTTPError {
	httpErr := &apierrors.HTTPError{Status: status, Body: string(raw)}
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			httpErr.Code = payload.Error
		} else if payload.Detail != "" {
			httpErr.Code = payload.Detail
		}
	}
	return httpErr
}
