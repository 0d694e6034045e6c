package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/labstack/echo/v4"
)

const internalErrorMessage = "Internal server error"

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrNotAnImage),
		errors.Is(err, common.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// handleError is the echo error handler. Every failure leaves as
// {"error": message}; causes of 5xx responses are logged, never sent.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		msg    string
		he     *echo.HTTPError
	)
	if errors.As(err, &he) {
		status = he.Code
		switch status {
		case http.StatusRequestEntityTooLarge:
			msg = "File too large"
		default:
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		}
	} else {
		status = statusFor(err)
		if m, ok := common.MessageOf(err); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err.Error())
		msg = internalErrorMessage
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
