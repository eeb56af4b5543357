package errors

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorNotFoundMatching(t *testing.T) {
	err := &HTTPError{Status: http.StatusNotFound, Code: "No active enrollment found"}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))

	forbidden := &HTTPError{Status: http.StatusForbidden}
	assert.False(t, errors.Is(forbidden, ErrNotFound))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&RequestError{Op: "GET", URL: "/enrollments/", Err: io.EOF}))
	assert.True(t, IsRetryable(&HTTPError{Status: http.StatusBadGateway}))
	assert.False(t, IsRetryable(&HTTPError{Status: http.StatusBadRequest}))
	assert.False(t, IsRetryable(&DecodeError{URL: "/enrollments/", Err: io.ErrUnexpectedEOF}))
	assert.False(t, IsRetryable(nil))
}

func TestStatusOf(t *testing.T) {
	wrapped := &RequestError{Op: "POST", URL: "/payments/", Err: &HTTPError{Status: 409}}
	require.Equal(t, 409, StatusOf(wrapped))
	assert.Equal(t, 0, StatusOf(io.EOF))
}

func TestUnwrapChains(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	assert.ErrorIs(t, &DecodeError{URL: "/auth/me/", Err: cause}, cause)
	assert.ErrorIs(t, &RequestError{Op: "GET", URL: "/auth/me/", Err: cause}, cause)
}
