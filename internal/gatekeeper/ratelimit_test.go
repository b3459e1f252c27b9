package gatekeeper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastaff/gatekeeper/internal/models"
)

func TestRateLimit_AuthPolicyRejectsSixthLogin(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})
	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.5")

		_, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
		require.NoError(t, err)
		assert.True(t, nextCalled, "request %d is within the auth quota", i+1)

		now = now.Add(time.Second)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")

	rec, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
	assert.False(t, nextCalled)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)

	retryAfter, convErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, convErr)
	assert.LessOrEqual(t, retryAfter, int(time.Hour.Seconds()))
	assert.Positive(t, retryAfter)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimit_BurstRejectedWithinQuota(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})
	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/dashboard/va", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	_, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
	require.NoError(t, err)
	require.True(t, nextCalled)

	now = now.Add(50 * time.Millisecond)

	req = httptest.NewRequest(http.MethodGet, "/dashboard/va", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	rec, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
	assert.False(t, nextCalled)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
	// Burst'у не нужно пересиживать все окно.
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimit_WindowResetAllowsAgain(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})
	g.rateCfg.Default = models.RatePolicy{Name: "default", Window: 15 * time.Minute, Max: 2}

	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }

	send := func() (bool, error) {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.5")
		_, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
		return nextCalled, err
	}

	for i := 0; i < 2; i++ {
		ok, err := send()
		require.NoError(t, err)
		require.True(t, ok)
		now = now.Add(time.Second)
	}

	ok, err := send()
	require.Error(t, err)
	require.False(t, ok)

	now = now.Add(15 * time.Minute)

	ok, err = send()
	require.NoError(t, err)
	assert.True(t, ok, "a fresh window starts after the reset time")
}

func TestRateLimit_MissingForwardedForSharesAnonymousBucket(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})
	g.rateCfg.Default = models.RatePolicy{Name: "default", Window: 15 * time.Minute, Max: 1}

	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	_, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
	require.NoError(t, err)
	require.True(t, nextCalled)

	now = now.Add(time.Second)

	// Другой "клиент" без заголовка попадает в тот же bucket.
	req = httptest.NewRequest(http.MethodGet, "/jobs", nil)
	_, nextCalled, err = runStage(t, g.RateLimit(), req, nil)
	require.Error(t, err)
	assert.False(t, nextCalled)
}

func TestRateLimit_StaticAssetsBypass(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})
	g.rateCfg.Default = models.RatePolicy{Name: "default", Window: 15 * time.Minute, Max: 1}

	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
		_, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
		require.NoError(t, err)
		require.True(t, nextCalled)
		now = now.Add(time.Millisecond)
	}
}

func TestRateLimit_StoreFailureFailsClosed(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})
	g.rates = failingRateStore{}

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	_, nextCalled, err := runStage(t, g.RateLimit(), req, nil)
	require.Error(t, err)
	assert.False(t, nextCalled)

	var he *echo.HTTPError
	assert.False(t, errors.As(err, &he), "store faults are generic errors, not HTTP rejections")
}

func TestPolicyFor(t *testing.T) {
	t.Parallel()

	g := newTestGatekeeper(&fakeIdentity{}, &fakeProfiles{})

	tests := []struct {
		path   string
		policy string
	}{
		{"/login", "auth"},
		{"/signup", "auth"},
		{"/api/csrf-token", "api"},
		{"/api/ping", "api"},
		{"/dashboard/va", "default"},
		{"/", "default"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.policy, g.policyFor(tt.path).Name, "path %s", tt.path)
	}
}

type failingRateStore struct{}

func (failingRateStore) Allow(_ context.Context, _ string, _ models.RatePolicy, _ time.Time) (*models.RateDecision, error) {
	return nil, errors.New("store unavailable")
}
