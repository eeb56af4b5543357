package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/tandikan/enroll/pkg/errors"
	"github.com/tandikan/enroll/pkg/telemetry"
)

func TestGetDecodesAndAttachesBearer(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7, "email": "a@b.c"}`))
	}))
	defer srv.Close()

	session := NewSession()
	session.SetToken("tok-123")
	gw := New(srv.URL, srv.Client(), session, nil, nil)

	var out struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, gw.Get(context.Background(), "/auth/me/", &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestNoBearerWhenUnauthenticated(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	gw := New(srv.URL, srv.Client(), nil, nil, nil)
	require.NoError(t, gw.Get(context.Background(), "/health/", nil))
	assert.Empty(t, gotAuth)
}

func TestNotFoundIsDistinguishable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "No active enrollment found"}`))
	}))
	defer srv.Close()

	gw := New(srv.URL, srv.Client(), nil, nil, nil)
	err := gw.Get(context.Background(), "/enrollments/current/", nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err))

	var httpErr *apierrors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "No active enrollment found", httpErr.Code)
}

func TestServerErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	gw := New(srv.URL, srv.Client(), nil, nil, nil)
	err := gw.Post(context.Background(), "/payments/", map[string]int{"assessmentId": 1}, nil)

	var httpErr *apierrors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Equal(t, "upstream exploded", httpErr.Body)
	assert.True(t, apierrors.IsRetryable(err))
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": `))
	}))
	defer srv.Close()

	gw := New(srv.URL, srv.Client(), nil, nil, nil)
	var out struct {
		ID int64 `json:"id"`
	}
	err := gw.Get(context.Background(), "/subjects/1/", &out)

	var decodeErr *apierrors.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.False(t, apierrors.IsRetryable(err))
}

func TestTransportFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	gw := New(srv.URL, nil, nil, nil, nil)
	err := gw.Get(context.Background(), "/enrollments/", nil)

	var reqErr *apierrors.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.True(t, apierrors.IsRetryable(err))
}

func TestCancellationAbandonsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	session := NewSession()
	session.SetToken("still-here")
	gw := New(srv.URL, srv.Client(), session, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := gw.Get(ctx, "/enrollments/", nil)
	require.Error(t, err)

	// abandonment must not touch session state
	assert.Equal(t, "still-here", session.Token())
}

func TestSessionExpiresWithin(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	session := NewSession()
	session.SetToken(token)
	assert.True(t, session.ExpiresWithin(2*time.Minute))
	assert.False(t, session.ExpiresWithin(10*time.Second))

	session.SetToken("not-a-jwt")
	assert.False(t, session.ExpiresWithin(time.Hour))

	session.ClearToken()
	assert.False(t, session.Authenticated())
	assert.False(t, session.ExpiresWithin(time.Hour))
}

func TestMetricPathTemplatesIDsAndDropsQuery(t *testing.T) {
	cases := map[string]string{
		"/enrollments/":                       "/enrollments/",
		"/enrollments/42/":                    "/enrollments/:id/",
		"/enrollments/42/subjects/7/":         "/enrollments/:id/subjects/:id/",
		"/schedules/?year_level=1&semester=1": "/schedules/",
		"/payments/?assessment=9":             "/payments/",
		"/assessments/enrollment/13/":         "/assessments/enrollment/:id/",
		"/auth/login/":                        "/auth/login/",
	}
	for path, want := range cases {
		assert.Equal(t, want, metricPath(path), path)
	}
}

func TestRequestMetricsUseTemplatedPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 42}`)) //nolint:errcheck
	}))
	defer server.Close()

	metrics := telemetry.New()
	gw := New(server.URL, server.Client(), NewSession(), nil, metrics)

	var out struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, gw.Get(context.Background(), "/enrollments/42/", &out))
	require.NoError(t, gw.Get(context.Background(), "/enrollments/99/", &out))

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)

	// Both requests share one label series; raw ids never reach the registry.
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	exposition := rec.Body.String()
	assert.Contains(t, exposition, "/enrollments/:id/")
	assert.NotContains(t, exposition, "/enrollments/42/")
}
