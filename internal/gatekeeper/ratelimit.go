package gatekeeper

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vastaff/gatekeeper/internal/models"
)

// RateLimit - первая ступень пайплайна. Работает до любых куки и identity
// lookup'ов, поэтому отбивает и неаутентифицированный флуд.
func (g *Gatekeeper) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isStaticAsset(path) {
				return next(c)
			}

			policy := g.policyFor(path)
			key := ClientIP(c.Request()) + ":" + path

			decision, err := g.rates.Allow(c.Request().Context(), key, policy, g.now())
			if err != nil {
				// Store is down: fail closed, the error handler turns
				// this into a generic 500.
				return fmt.Errorf("rate limit check: %w", err)
			}

			if !decision.Allowed {
				resetSecs := decision.RetryAfterSeconds()
				retrySecs := resetSecs
				if decision.Burst {
					// Burst rejections do not need to sit out the whole window.
					retrySecs = 1
				}

				h := c.Response().Header()
				h.Set("Retry-After", strconv.FormatInt(retrySecs, 10))
				h.Set("X-RateLimit-Reset", strconv.FormatInt(resetSecs, 10))

				g.log.Debugw("rate limited",
					"key", key,
					"policy", policy.Name,
					"burst", decision.Burst,
				)
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}

func (g *Gatekeeper) policyFor(path string) models.RatePolicy {
	switch {
	case path == "/login" || path == "/signup":
		return g.rateCfg.Auth
	case strings.HasPrefix(path, "/api/"):
		return g.rateCfg.API
	default:
		return g.rateCfg.Default
	}
}
