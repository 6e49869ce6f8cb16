// Package provider defines the contract shared by the external food
// databases and the error type their clients return.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"sugarbeat/internal/nutrition"
)

// ErrMissingCredentials is wrapped by Error when a client was built without
// the keys its API requires.
var ErrMissingCredentials = errors.New("provider: missing credentials")

// Provider looks foods up in an external nutrition database.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Search returns the foods matching query. An empty query yields no results.
	Search(ctx context.Context, query string) ([]nutrition.ProviderFood, error)
	// GetByID fetches a single food. A food the provider does not know is
	// reported with found == false and a nil error.
	GetByID(ctx context.Context, id string) (food nutrition.ProviderFood, found bool, err error)
}

// Error describes a failed provider call.
type Error struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an Error unless err is nil.
func Wrap(provider, op string, status int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Provider: provider, Op: op, StatusCode: status, Err: err}
}

// LimiterConfig bounds outbound request rates.
type LimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

const (
	defaultRequestsPerSecond = 5
	defaultBurst             = 5
	// DefaultTimeout applies when a client is built without one.
	DefaultTimeout = 15 * time.Second
)

// NewLimiter returns a token bucket for cfg. Non-positive values fall back to
// the defaults.
func NewLimiter(cfg LimiterConfig) *rate.Limiter {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
