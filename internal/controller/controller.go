package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vastaff/gatekeeper/internal/gatekeeper"
	"github.com/vastaff/gatekeeper/internal/models"
	"github.com/vastaff/gatekeeper/internal/service"
	"github.com/vastaff/gatekeeper/internal/storage"
)

type Controller struct {
	zapLogger      *zap.SugaredLogger
	authService    *service.AuthService
	identity       *service.IdentityService
	profileService *service.ProfileService
	csrf           *gatekeeper.CSRF
}

func NewController(
	logger *zap.SugaredLogger,
	authService *service.AuthService,
	identity *service.IdentityService,
	profileService *service.ProfileService,
	csrf *gatekeeper.CSRF,
) *Controller {
	return &Controller{
		zapLogger:      logger,
		authService:    authService,
		identity:       identity,
		profileService: profileService,
		csrf:           csrf,
	}
}

// (GET /api/ping).
func (ctl *Controller) CheckServer(c echo.Context) error {
	return c.JSON(http.StatusOK, "ok")
}

// (GET /login).
func (ctl *Controller) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"page": "login"})
}

// (GET /signup).
func (ctl *Controller) SignupPage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"page": "signup"})
}

// (POST /signup). Новый пользователь еще без профиля, поэтому сразу
// отправляется на его заполнение.
func (ctl *Controller) SignUp(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := ctl.authService.SignUp(c.Request().Context(), req)
	if err != nil {
		return err
	}

	if err := ctl.identity.IssueSession(c, user); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, user.Role.ProfileEditPath())
}

// (POST /login).
func (ctl *Controller) LogIn(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := ctl.authService.LogIn(c.Request().Context(), req)
	if err != nil {
		return err
	}

	if err := ctl.identity.IssueSession(c, user); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, user.Role.DashboardPath())
}

// (POST /logout).
func (ctl *Controller) LogOut(c echo.Context) error {
	if err := ctl.identity.SignOut(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/login")
}

// (GET /api/csrf-token). Токен уезжает в заголовке ответа, тела нет.
func (ctl *Controller) CSRFToken(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	token, err := ctl.csrf.Issue(c.Request().Context(), principal.CSRFKey())
	if err != nil {
		return err
	}

	c.Response().Header().Set(models.CSRFHeader, token)
	return c.NoContent(http.StatusNoContent)
}

// (GET /dashboard/va).
func (ctl *Controller) VADashboard(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)

	completion := 0
	profile, err := ctl.profileService.GetVAProfile(c.Request().Context(), principal.UserID)
	if err != nil && !errors.Is(err, storage.ErrProfileNotFound) {
		return err
	}
	if profile != nil {
		completion = service.VACompletion(profile)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"page":               "va_dashboard",
		"profile_completion": completion,
	})
}

// (GET /dashboard/employer).
func (ctl *Controller) EmployerDashboard(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)

	completion := 0
	profile, err := ctl.profileService.GetEmployerProfile(c.Request().Context(), principal.UserID)
	if err != nil && !errors.Is(err, storage.ErrProfileNotFound) {
		return err
	}
	if profile != nil {
		completion = service.EmployerCompletion(profile)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"page":               "employer_dashboard",
		"profile_completion": completion,
	})
}

// (GET /dashboard/va/profile/edit).
func (ctl *Controller) VAProfileEditPage(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)

	profile, err := ctl.profileService.GetVAProfile(c.Request().Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"page":    "va_profile_edit",
				"profile": nil,
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"page":               "va_profile_edit",
		"profile":            profile,
		"profile_completion": service.VACompletion(profile),
	})
}

// (POST /dashboard/va/profile/edit).
func (ctl *Controller) SaveVAProfile(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)

	var req models.VAProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := ctl.profileService.SaveVAProfile(c.Request().Context(), principal.UserID, req); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, principal.Role.DashboardPath())
}

// (GET /dashboard/employer/profile/edit).
func (ctl *Controller) EmployerProfileEditPage(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)

	profile, err := ctl.profileService.GetEmployerProfile(c.Request().Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"page":    "employer_profile_edit",
				"profile": nil,
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"page":               "employer_profile_edit",
		"profile":            profile,
		"profile_completion": service.EmployerCompletion(profile),
	})
}

// (POST /dashboard/employer/profile/edit).
func (ctl *Controller) SaveEmployerProfile(c echo.Context) error {
	principal := gatekeeper.PrincipalFrom(c)

	var req models.EmployerProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := ctl.profileService.SaveEmployerProfile(c.Request().Context(), principal.UserID, req); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, principal.Role.DashboardPath())
}
