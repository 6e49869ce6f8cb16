package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap("edamam", "search", 0, nil))

	err := Wrap("usda", "lookup", 503, ErrMissingCredentials)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredentials))
	assert.Equal(t, "usda: lookup: status 503: provider: missing credentials", err.Error())

	err = Wrap("usda", "search", 0, context.Canceled)
	assert.Equal(t, "usda: search: context canceled", err.Error())
}

func TestNewLimiterDefaults(t *testing.T) {
	t.Parallel()

	l := NewLimiter(LimiterConfig{})
	assert.Equal(t, rate.Limit(defaultRequestsPerSecond), l.Limit())
	assert.Equal(t, defaultBurst, l.Burst())

	l = NewLimiter(LimiterConfig{RequestsPerSecond: 0.5, Burst: 2})
	assert.Equal(t, rate.Limit(0.5), l.Limit())
	assert.Equal(t, 2, l.Burst())
}
