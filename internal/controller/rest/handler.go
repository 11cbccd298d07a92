package rest

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Freeeeeet/alumni_connect/internal/service"
	"github.com/labstack/echo/v4"
)

// Services bundles what the handlers call
type Services struct {
	Accounts    *service.AccountService
	Approval    *service.ApprovalService
	Connections *service.ConnectionService
	Mentorships *service.MentorshipService
	Directory   *service.DirectoryService
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// ============ Auth ============

func (h *Handler) Register(c echo.Context) error {
	req, err := bind[RegisterRequest](c)
	if err != nil {
		return err
	}

	_, err = h.svc.Accounts.Register(c.Request().Context(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Password:       req.Password,
		Role:           req.Role,
		College:        req.College,
		Department:     req.Department,
		RegisterNumber: req.RegisterNumber,
		Batch:          req.Batch,
		Company:        req.Company,
		JobRole:        req.JobRole,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, MessageResponse{Message: "Registered. Verify the OTP sent to your phone."})
}

func (h *Handler) VerifyOTP(c echo.Context) error {
	req, err := bind[VerifyOTPRequest](c)
	if err != nil {
		return err
	}

	user, token, err := h.svc.Accounts.VerifyOTP(c.Request().Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token, User: user})
}

func (h *Handler) Login(c echo.Context) error {
	req, err := bind[LoginRequest](c)
	if err != nil {
		return err
	}

	user, token, err := h.svc.Accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token, User: user})
}

func (h *Handler) Me(c echo.Context) error {
	user, err := h.svc.Accounts.Me(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ============ Connections ============

func (h *Handler) CreateConnection(c echo.Context) error {
	req, err := bind[ConnectionRequest](c)
	if err != nil {
		return err
	}

	conn, err := h.svc.Connections.CreateConnection(c.Request().Context(), userID(c), req.ReceiverID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, conn)
}

func (h *Handler) ResolveConnection(c echo.Context) error {
	req, err := bind[ConnectionStatusRequest](c)
	if err != nil {
		return err
	}

	conn, err := h.svc.Connections.ResolveConnection(c.Request().Context(), req.ConnectionID, userID(c), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, conn)
}

func (h *Handler) PendingConnections(c echo.Context) error {
	pending, err := h.svc.Connections.ListPendingFor(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(pending))
}

func (h *Handler) MyConnections(c echo.Context) error {
	peers, err := h.svc.Connections.ListAccepted(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(peers))
}

// ============ Mentorship ============

func (h *Handler) CreateMentorshipRequest(c echo.Context) error {
	req, err := bind[MentorshipCreateRequest](c)
	if err != nil {
		return err
	}

	created, err := h.svc.Mentorships.CreateRequest(c.Request().Context(), userID(c), req.AlumniID, req.Purpose, req.Message)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ResolveMentorshipRequest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	req, err := bind[MentorshipStatusRequest](c)
	if err != nil {
		return err
	}

	resolved, err := h.svc.Mentorships.ResolveRequest(c.Request().Context(), id, userID(c), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resolved)
}

func (h *Handler) MentorshipDetail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.svc.Mentorships.GetDetail(c.Request().Context(), id, userID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *Handler) MentorshipHistory(c echo.Context) error {
	history, err := h.svc.Mentorships.History(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(history))
}

// ============ Alumni ============

func (h *Handler) IncomingRequests(c echo.Context) error {
	requests, err := h.svc.Mentorships.ListIncoming(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(requests))
}

func (h *Handler) ToggleAvailability(c echo.Context) error {
	available, err := h.svc.Mentorships.ToggleAvailability(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{MentorshipAvailable: available})
}

// ============ Directory ============

func (h *Handler) SearchAlumni(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	available, _ := strconv.ParseBool(c.QueryParam("mentorship_available"))

	entries, err := h.svc.Directory.SearchAlumni(c.Request().Context(), userID(c), model.DirectoryFilter{
		Query:         c.QueryParam("q"),
		Company:       c.QueryParam("company"),
		Department:    c.QueryParam("department"),
		Batch:         c.QueryParam("batch"),
		AvailableOnly: available,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) Dashboard(c echo.Context) error {
	dashboard, err := h.svc.Directory.Dashboard(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard)
}

// ============ Profiles ============

func (h *Handler) UpdateStudentProfile(c echo.Context) error {
	req, err := bind[StudentProfileRequest](c)
	if err != nil {
		return err
	}

	user, err := h.svc.Accounts.UpdateProfile(c.Request().Context(), userID(c), model.RoleStudent, service.ProfileInput{
		Name:           req.Name,
		College:        req.College,
		Department:     req.Department,
		Batch:          req.Batch,
		RegisterNumber: req.RegisterNumber,
		Interests:      req.Interests,
		ResumeURL:      req.ResumeURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateAlumniProfile(c echo.Context) error {
	req, err := bind[AlumniProfileRequest](c)
	if err != nil {
		return err
	}

	user, err := h.svc.Accounts.UpdateProfile(c.Request().Context(), userID(c), model.RoleAlumni, service.ProfileInput{
		Name:       req.Name,
		College:    req.College,
		Department: req.Department,
		Batch:      req.Batch,
		Company:    req.Company,
		JobRole:    req.JobRole,
		Skills:     req.Skills,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// ============ Admin ============

func (h *Handler) UpdateApproval(c echo.Context) error {
	req, err := bind[ApprovalRequest](c)
	if err != nil {
		return err
	}

	user, err := h.svc.Approval.UpdateApproval(c.Request().Context(), userID(c), req.UserID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *Handler) ToggleUserStatus(c echo.Context) error {
	target, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	active, err := h.svc.Approval.ToggleActive(c.Request().Context(), userID(c), target)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ToggleStatusResponse{UserID: target, IsActive: active})
}

func (h *Handler) PendingAlumni(c echo.Context) error {
	users, err := h.svc.Approval.ListPendingAlumni(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(users))
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.Approval.ListUsers(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(users))
}

func (h *Handler) AuditMentorship(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.svc.Mentorships.Audit(c.Request().Context(), id, userID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

// ============ Helpers ============

// pathID parses a positive numeric path parameter.
// A malformed id reads as "not found".
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrNotFoundOrUnauthorized
	}
	return id, nil
}

// nonNil keeps empty listings as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
