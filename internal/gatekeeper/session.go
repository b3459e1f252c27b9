package gatekeeper

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vastaff/gatekeeper/internal/models"
)

// SessionActivity резолвит principal и применяет таймаут неактивности.
// Маркер last_activity перезаписывается для каждого запроса, дошедшего до
// этой ступени, независимо от исхода последующих проверок.
func (g *Gatekeeper) SessionActivity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isStaticAsset(c.Request().URL.Path) {
				return next(c)
			}

			principal, err := g.identity.Resolve(c)
			if err != nil {
				return fmt.Errorf("resolve principal: %w", err)
			}

			now := g.now()

			if principal != nil && g.activityExpired(c, now) {
				if err := g.identity.SignOut(c); err != nil {
					return fmt.Errorf("sign out stale session: %w", err)
				}
				g.log.Infow("session timed out", "user_id", principal.UserID)
				return c.Redirect(http.StatusFound, "/login")
			}

			g.setActivityCookie(c, now)

			if principal != nil {
				c.Set(models.MwPrincipalKey, principal)
			}

			return next(c)
		}
	}
}

func (g *Gatekeeper) activityExpired(c echo.Context, now time.Time) bool {
	cookie, err := c.Cookie(models.LastActivityCookie)
	if err != nil || cookie.Value == "" {
		// Первый запрос сессии: маркера еще нет.
		return false
	}

	lastActivity, err := strconv.ParseInt(cookie.Value, 10, 64)
	if err != nil {
		return false
	}

	return now.Sub(time.Unix(lastActivity, 0)) > g.sessionCfg.ActivityTimeout
}

func (g *Gatekeeper) setActivityCookie(c echo.Context, now time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     models.LastActivityCookie,
		Value:    strconv.FormatInt(now.Unix(), 10),
		Path:     "/",
		HttpOnly: true,
		Secure:   g.sessionCfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(g.sessionCfg.ActivityTimeout.Seconds()),
	})
}
