package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/alumni_connect/internal/auth"
	"github.com/Freeeeeet/alumni_connect/internal/metrics"
	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
	ctxRole      = "role"
)

// TokenParser verifies bearer tokens
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Logger assigns a request id, writes one access log line per request and
// records request metrics.
func Logger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.New().String()
			}
			c.Set(ctxRequestID, id)
			res.Header().Set(echo.HeaderXRequestID, id)

			if err := next(c); err != nil {
				c.Error(err)
			}

			elapsed := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.RecordHTTPRequest(req.Method, route, strconv.Itoa(res.Status), elapsed.Seconds())

			logger.Info("Request",
				zap.String("request_id", id),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("route", route),
				zap.Int("status", res.Status),
				zap.String("remote_ip", c.RealIP()),
				zap.Duration("response_time", elapsed),
				zap.Int64("response_size", res.Size),
			)

			return nil
		}
	}
}

// Authenticate requires a valid bearer token and stores the caller in the context
func Authenticate(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return httperror.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return httperror.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxRole, claims.Role)

			return next(c)
		}
	}
}

// RequireRole rejects callers whose token role is not listed.
// Services check the stored role again.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(model.Role)
			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}
			return model.ErrForbidden
		}
	}
}

func userID(c echo.Context) int64 {
	id, _ := c.Get(ctxUserID).(int64)
	return id
}

func requestID(c echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}
