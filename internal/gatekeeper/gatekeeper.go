// Package gatekeeper implements the request-gatekeeping pipeline: rate
// limiting, session-activity timeout, CSRF protection and role-based route
// authorization. Stages run in that order; each one is an independent Echo
// middleware so the chain is assembled explicitly at server startup.
package gatekeeper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
	"github.com/vastaff/gatekeeper/internal/util"
)

// IdentityProvider отвечает на два вопроса: "чей это запрос" и
// "разлогинь эту сессию".
type IdentityProvider interface {
	// Resolve returns nil for anonymous requests; an error means the
	// provider itself is unavailable (the pipeline fails closed).
	Resolve(c echo.Context) (*models.Principal, error)
	SignOut(c echo.Context) error
}

type ProfileDirectory interface {
	HasAnyProfile(ctx context.Context, userID int64) (bool, error)
}

type Gatekeeper struct {
	identity IdentityProvider
	profiles ProfileDirectory
	rates    storage.RateLimitStore
	csrf     *CSRF

	rateCfg    *util.RateLimiterConfig
	sessionCfg *util.SessionConfig

	log *zap.SugaredLogger
	now func() time.Time
}

func New(
	identity IdentityProvider,
	profiles ProfileDirectory,
	rates storage.RateLimitStore,
	csrf *CSRF,
	rateCfg *util.RateLimiterConfig,
	sessionCfg *util.SessionConfig,
	log *zap.SugaredLogger,
) *Gatekeeper {
	return &Gatekeeper{
		identity:   identity,
		profiles:   profiles,
		rates:      rates,
		csrf:       csrf,
		rateCfg:    rateCfg,
		sessionCfg: sessionCfg,
		log:        log,
		now:        time.Now,
	}
}

// ClientIP берет первый адрес из X-Forwarded-For. Без заголовка все клиенты
// делят один идентификатор "anonymous" - известное упрощение, за обратным
// прокси заголовок есть всегда.
func ClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return "anonymous"
	}
	if i := strings.Index(forwarded, ","); i >= 0 {
		forwarded = forwarded[:i]
	}
	return strings.TrimSpace(forwarded)
}

// PrincipalFrom returns the principal stashed by the session stage,
// or nil for anonymous requests.
func PrincipalFrom(c echo.Context) *models.Principal {
	p, _ := c.Get(models.MwPrincipalKey).(*models.Principal)
	return p
}

func isStaticAsset(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/assets/") ||
		path == "/favicon.ico"
}
