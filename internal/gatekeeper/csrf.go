package gatekeeper

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/storage"
	"github.com/vastaff/gatekeeper/internal/util"
)

// CSRF выпускает и проверяет anti-forgery токены. На идентификатор сессии
// живет ровно один токен; повторный выпуск молча инвалидирует предыдущий.
type CSRF struct {
	store    storage.CSRFStore
	tokenTTL time.Duration
}

func NewCSRF(store storage.CSRFStore, cfg *util.CSRFConfig) *CSRF {
	return &CSRF{store: store, tokenTTL: cfg.TokenTTL}
}

// Issue генерирует токен из CSPRNG и сохраняет его как текущий.
func (cs *CSRF) Issue(ctx context.Context, sessionID string) (string, error) {
	raw := make([]byte, util.CSRFTokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := cs.store.Put(ctx, sessionID, token, cs.tokenTTL); err != nil {
		return "", fmt.Errorf("store csrf token: %w", err)
	}
	return token, nil
}

// Validate сравнивает присланный токен с текущим сохраненным.
// Отсутствующий, истекший и чужой токены неразличимы для клиента.
func (cs *CSRF) Validate(ctx context.Context, sessionID, provided string) (bool, error) {
	current, err := cs.store.Get(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("get csrf token: %w", err)
	}
	if current == "" || provided == "" || len(current) != len(provided) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(provided)) == 1, nil
}

// CSRFProtect проверяет токен на state-changing методах и прозрачно
// перевыпускает его в заголовке ответа, чтобы клиентам не нужен был
// отдельный round-trip. Стоит после session stage (principal уже известен),
// но до авторизации маршрутов.
func (g *Gatekeeper) CSRFProtect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isStaticAsset(req.URL.Path) {
				return next(c)
			}

			sessionID := sessionIdentifier(PrincipalFrom(c), req)

			if isProtectedMethod(req.Method) {
				ok, err := g.csrf.Validate(req.Context(), sessionID, req.Header.Get(models.CSRFHeader))
				if err != nil {
					return fmt.Errorf("validate csrf token: %w", err)
				}
				if !ok {
					return echo.NewHTTPError(http.StatusForbidden, "Invalid CSRF Token")
				}
			}

			token, err := g.csrf.Issue(req.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("issue csrf token: %w", err)
			}
			c.Response().Header().Set(models.CSRFHeader, token)

			return next(c)
		}
	}
}

// sessionIdentifier - user id для аутентифицированных, client IP для
// анонимных сессий.
func sessionIdentifier(p *models.Principal, r *http.Request) string {
	if p != nil {
		return p.CSRFKey()
	}
	return ClientIP(r)
}

func isProtectedMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
