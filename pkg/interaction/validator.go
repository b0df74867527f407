package interaction

import (
	"context"
	"errors"
	"net/http"
)

// ErrSessionNotFound indicates the request carries no live interaction session
var ErrSessionNotFound = errors.New("interaction session not found")

// Validator checks whether a request is backed by a valid interaction session.
// Implementations must treat any failure as "no session"; the caller decides
// how to recover.
type Validator interface {
	CheckSession(ctx context.Context, r *http.Request) error
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(ctx context.Context, r *http.Request) error

// CheckSession implements Validator
func (f ValidatorFunc) CheckSession(ctx context.Context, r *http.Request) error {
	return f(ctx, r)
}
