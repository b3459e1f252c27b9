package gatekeeper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage/memory"
	"github.com/vastaff/gatekeeper/internal/util"
)

type fakeIdentity struct {
	principal  *models.Principal
	resolveErr error
	signedOut  bool
}

func (f *fakeIdentity) Resolve(echo.Context) (*models.Principal, error) {
	return f.principal, f.resolveErr
}

func (f *fakeIdentity) SignOut(echo.Context) error {
	f.signedOut = true
	return nil
}

type fakeProfiles struct {
	exists bool
	err    error
}

func (f *fakeProfiles) HasAnyProfile(context.Context, int64) (bool, error) {
	return f.exists, f.err
}

func newTestGatekeeper(identity IdentityProvider, profiles ProfileDirectory) *Gatekeeper {
	rateCfg := &util.RateLimiterConfig{
		Auth:          models.RatePolicy{Name: "auth", Window: time.Hour, Max: 5},
		API:           models.RatePolicy{Name: "api", Window: time.Minute, Max: 30},
		Default:       models.RatePolicy{Name: "default", Window: 15 * time.Minute, Max: 100},
		BurstInterval: 100 * time.Millisecond,
	}
	sessionCfg := &util.SessionConfig{
		SecretKey:       []byte("test-session-secret"),
		SessionTTL:      24 * time.Hour,
		ActivityTimeout: 30 * time.Minute,
	}
	csrf := NewCSRF(memory.NewCSRFStore(), &util.CSRFConfig{TokenTTL: 24 * time.Hour})

	return New(
		identity,
		profiles,
		memory.NewRateLimitStore(rateCfg.BurstInterval),
		csrf,
		rateCfg,
		sessionCfg,
		zap.NewNop().Sugar(),
	)
}

// runStage прогоняет один запрос через одну ступень пайплайна.
func runStage(t *testing.T, mw echo.MiddlewareFunc, req *http.Request, setup func(echo.Context)) (*httptest.ResponseRecorder, bool, error) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	nextCalled := false
	handler := mw(func(c echo.Context) error {
		nextCalled = true
		return c.String(http.StatusOK, "ok")
	})

	err := handler(c)
	return rec, nextCalled, err
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, location, rec.Header().Get("Location"))
}

func vaPrincipal() *models.Principal {
	return &models.Principal{UserID: 7, Role: models.RoleVA, SessionID: "jti-va"}
}

func employerPrincipal() *models.Principal {
	return &models.Principal{UserID: 8, Role: models.RoleEmployer, SessionID: "jti-emp"}
}
