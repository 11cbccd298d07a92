package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Health struct {
	db        Pinger
	startTime time.Time
}

func NewHealth(db Pinger) *Health {
	return &Health{db: db, startTime: time.Now()}
}

type HealthStatus struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

// Check pings the database with a short deadline
func (h *Health) Check(c echo.Context) error {
	status := HealthStatus{
		Status:   "healthy",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Database: "healthy",
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if h.db == nil || h.db.Ping(ctx) != nil {
		status.Status = "unhealthy"
		status.Database = "unhealthy"
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	return c.JSON(http.StatusOK, status)
}
