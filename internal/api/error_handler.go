package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vastaff/gatekeeper/internal/service"
	"github.com/vastaff/gatekeeper/internal/storage"
	"github.com/vastaff/gatekeeper/internal/util"
)

func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var respErr util.ResponseError
		if errors.As(err, &respErr) {
			writeJSON(log, c, respErr.Status, respErr.Msg)
			return
		}

		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(log, c, http.StatusUnauthorized, err.Error())
			return
		}

		if errors.Is(err, storage.ErrEmailTaken) {
			writeJSON(log, c, http.StatusConflict, err.Error())
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Code == http.StatusInternalServerError {
				log.Errorw("HTTP error", "error", err, "uri", c.Request().RequestURI)
			}
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			writeJSON(log, c, he.Code, msg)
			return
		}

		// Upstream collaborator faults land here: fail closed with a
		// generic error, never grant access on doubt.
		log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		writeJSON(log, c, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(log *zap.SugaredLogger, c echo.Context, status int, reason string) {
	if err := c.JSON(status, map[string]string{"reason": reason}); err != nil {
		log.Errorw("failed to write json response", "error", err)
	}
}
