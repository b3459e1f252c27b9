package gatekeeper

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vastaff/gatekeeper/internal/models"
)

const (
	loginPath  = "/login"
	signupPath = "/signup"

	dashboardPrefix = "/dashboard"
)

// Authorize - последняя ступень перед обработчиком. Каждый исход здесь -
// редирект на правильную стартовую точку для роли и состояния пользователя,
// никогда не страница ошибки.
func (g *Gatekeeper) Authorize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isStaticAsset(path) {
				return next(c)
			}

			principal := PrincipalFrom(c)

			// Authenticated users never see the auth forms.
			if (path == loginPath || path == signupPath) && principal != nil {
				return c.Redirect(http.StatusFound, principal.Role.DashboardPath())
			}

			if !strings.HasPrefix(path, dashboardPrefix) {
				return next(c)
			}

			if principal == nil {
				return c.Redirect(http.StatusFound, loginPath)
			}

			// Role mismatch is corrected, not surfaced.
			if strings.HasPrefix(path, models.RoleEmployer.DashboardPath()) && principal.Role != models.RoleEmployer {
				return c.Redirect(http.StatusFound, principal.Role.DashboardPath())
			}
			if strings.HasPrefix(path, models.RoleVA.DashboardPath()) && principal.Role != models.RoleVA {
				return c.Redirect(http.StatusFound, principal.Role.DashboardPath())
			}

			// Onboarding gate: дашборд закрыт, пока нет строки профиля.
			// Сама страница редактирования профиля - исключение, иначе
			// редирект зацикливается.
			if path != principal.Role.ProfileEditPath() {
				exists, err := g.profiles.HasAnyProfile(c.Request().Context(), principal.UserID)
				if err != nil {
					return fmt.Errorf("check profile existence: %w", err)
				}
				if !exists {
					return c.Redirect(http.StatusFound, principal.Role.ProfileEditPath())
				}
			}

			return next(c)
		}
	}
}
