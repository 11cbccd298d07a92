package rest

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// errorStatuses maps domain errors to the status returned to the client.
// NotFoundOrUnauthorized stays a single 404 so callers cannot enumerate ids.
var errorStatuses = []struct {
	err  error
	code int
}{
	{model.ErrInvalidTarget, http.StatusBadRequest},
	{model.ErrDuplicateRelationship, http.StatusBadRequest},
	{model.ErrAlreadyResolved, http.StatusBadRequest},
	{model.ErrEmptyMessage, http.StatusBadRequest},
	{model.ErrInvalidDecision, http.StatusBadRequest},
	{model.ErrInvalidPurpose, http.StatusBadRequest},
	{model.ErrMentorUnavailable, http.StatusBadRequest},
	{model.ErrUserExists, http.StatusBadRequest},
	{model.ErrInvalidOTP, http.StatusBadRequest},
	{model.ErrInvalidRole, http.StatusBadRequest},
	{model.ErrUnauthenticated, http.StatusUnauthorized},
	{model.ErrInvalidCredentials, http.StatusUnauthorized},
	{model.ErrNotVerified, http.StatusUnauthorized},
	{model.ErrForbidden, http.StatusForbidden},
	{model.ErrAccountInactive, http.StatusForbidden},
	{model.ErrNotFoundOrUnauthorized, http.StatusNotFound},
}

// toHTTPError converts a domain error into an httperror; other errors pass through
func toHTTPError(err error) error {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			return httperror.NewHTTPError(m.code, m.err.Error())
		}
	}
	return err
}

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// ErrorHandler renders every error as ErrorResponse.
// Anything that is not a known client error becomes a bare 500.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		err = toHTTPError(err)

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var meta map[string]any

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		}

		if httperror.IsHTTPError(err) {
			httperr := httperror.ToHTTPError(err)
			code = httperror.GetStatusCode(err)
			message = httperr.Message
			meta = httperr.Meta
		}

		if code >= http.StatusInternalServerError {
			logger.Error("API is returning an error",
				zap.Error(err),
				zap.String("request_id", requestID(c)),
				zap.String("route", c.Path()),
			)
			message = http.StatusText(code)
			meta = nil
		}

		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: requestID(c),
			Meta:      meta,
		})
	}
}
