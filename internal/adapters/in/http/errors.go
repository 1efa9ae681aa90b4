package http

import (
	"errors"
	"net/http"

	"deliverytasks/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// errorStatus maps a domain error to its HTTP status. anonymous selects 401
// over 403 for authorization failures.
func errorStatus(err error, anonymous bool) (status int, retryable bool) {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, false
	case errs.IsInvalidArgument(err):
		return http.StatusBadRequest, false
	case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrInvalidState):
		return http.StatusConflict, false
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, errs.ErrUnauthorized):
		if anonymous {
			return http.StatusUnauthorized, false
		}
		return http.StatusForbidden, false
	default:
		return http.StatusInternalServerError, false
	}
}

func (s *Server) writeError(c echo.Context, err error) error {
	status, retryable := errorStatus(err, ActorFromContext(c).IsAnonymous())

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err)
		message = http.StatusText(status)
	}

	return c.JSON(status, Error{
		Code:      status,
		Message:   message,
		Retryable: retryable,
	})
}

// HTTPErrorHandler renders echo.HTTPError values (bad routes, binding
// failures, rate limiting) with the same body as domain errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, Error{Code: status, Message: message})
}
