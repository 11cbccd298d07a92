package rest

import (
	"context"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports storage health
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires middleware and every API route
func NewRouter(h *Handler, tokens TokenParser, db Pinger, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(Logger(logger))
	e.Use(middleware.Recover())

	e.GET("/health", NewHealth(db).Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/verify-otp", h.VerifyOTP)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.Me, Authenticate(tokens))

	protected := api.Group("", Authenticate(tokens))
	protected.GET("/dashboard", h.Dashboard)

	connections := protected.Group("/connections")
	connections.POST("/request", h.CreateConnection)
	connections.PUT("/status", h.ResolveConnection)
	connections.GET("/pending", h.PendingConnections)
	connections.GET("/my", h.MyConnections)

	student := protected.Group("/student")
	student.GET("/alumni", h.SearchAlumni)
	student.POST("/request-mentorship", h.CreateMentorshipRequest, RequireRole(model.RoleStudent))
	student.PUT("/profile", h.UpdateStudentProfile, RequireRole(model.RoleStudent))

	alumni := protected.Group("/alumni", RequireRole(model.RoleAlumni))
	alumni.PATCH("/mentorship-status", h.ToggleAvailability)
	alumni.GET("/requests", h.IncomingRequests)
	alumni.PUT("/profile", h.UpdateAlumniProfile)

	mentorship := protected.Group("/mentorship")
	mentorship.GET("/history", h.MentorshipHistory)
	mentorship.GET("/:id", h.MentorshipDetail)
	mentorship.PATCH("/:id/status", h.ResolveMentorshipRequest, RequireRole(model.RoleAlumni))

	admin := protected.Group("/admin", RequireRole(model.RoleAdmin))
	admin.POST("/update-approval", h.UpdateApproval)
	admin.GET("/users", h.ListUsers)
	admin.PATCH("/users/:userId/toggle-status", h.ToggleUserStatus)
	admin.GET("/pending-alumni", h.PendingAlumni)
	admin.GET("/mentorship/:id", h.AuditMentorship)

	return e
}
