package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/vastaff/gatekeeper/internal/controller"
	"github.com/vastaff/gatekeeper/internal/gatekeeper"
	"github.com/vastaff/gatekeeper/internal/util"
)

const (
	shutdownTimeout = 5 * time.Second
)

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	gatekeeper      *gatekeeper.Gatekeeper
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	cleanupFuncs    []func()
}

func NewAPI(
	ctl *controller.Controller,
	gk *gatekeeper.Gatekeeper,
	sc *util.ServerConfig,
	l *zap.SugaredLogger,
	cleanupFuncs []func(),
) *API {
	e := echo.New()

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      ctl,
		gatekeeper:      gk,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		cleanupFuncs:    cleanupFuncs,
	}
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))

	// Порядок ступеней фиксирован: rate limit до любой работы с identity,
	// таймаут сессии до CSRF, CSRF до авторизации маршрутов.
	a.server.Use(a.gatekeeper.RateLimit())
	a.server.Use(a.gatekeeper.SessionActivity())
	a.server.Use(a.gatekeeper.CSRFProtect())
	a.server.Use(a.gatekeeper.Authorize())

	a.registerRoutes()

	a.ListenGracefulShutdown(ctx)
}

func (a *API) registerRoutes() {
	e := a.server
	ctl := a.controller

	e.GET("/login", ctl.LoginPage)
	e.POST("/login", ctl.LogIn)
	e.GET("/signup", ctl.SignupPage)
	e.POST("/signup", ctl.SignUp)
	e.POST("/logout", ctl.LogOut)

	e.GET("/api/ping", ctl.CheckServer)
	e.GET("/api/csrf-token", ctl.CSRFToken)

	e.GET("/dashboard/va", ctl.VADashboard)
	e.GET("/dashboard/va/profile/edit", ctl.VAProfileEditPage)
	e.POST("/dashboard/va/profile/edit", ctl.SaveVAProfile)

	e.GET("/dashboard/employer", ctl.EmployerDashboard)
	e.GET("/dashboard/employer/profile/edit", ctl.EmployerProfileEditPage)
	e.POST("/dashboard/employer/profile/edit", ctl.SaveEmployerProfile)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	if err != nil {
		a.log.Errorf("shutdown: %v", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	longShutdown := make(chan struct{}, 1)

	go func() {
		time.Sleep(a.gracefulTimeout)
		longShutdown <- struct{}{}
	}()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			a.log.Info("server shutdown completed")
		} else {
			a.log.Errorf("server shutdown: %v", ctx.Err())
		}
	case <-longShutdown:
		a.log.Infof("finished")
	}
}
