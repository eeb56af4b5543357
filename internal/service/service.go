// Package service maps domain operations onto gateway calls. Each method is
// a thin request/response mapping; errors from the gateway surface unchanged.
package service

import (
	"context"
	"errors"
)

// apiGateway is the slice of the gateway the services consume.
type apiGateway interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string) error
}

// credentialStore is the slice of the session the auth service mutates.
type credentialStore interface {
	SetToken(token string)
	ClearToken()
}

// ErrNoActiveEnrollment marks the valid empty state of a student without a
// pending or approved enrollment. Callers treat it as "nothing yet", not as
// a failure banner.
var ErrNoActiveEnrollment = errors.New("no active enrollment")

// ErrEmptyReason rejects an enrollment rejection without a stated reason
// before any wire call is made.
var ErrEmptyReason = errors.New("rejection reason must not be empty")
