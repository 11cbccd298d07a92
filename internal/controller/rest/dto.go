package rest

import (
	"net/http"

	"github.com/Freeeeeet/alumni_connect/internal/model"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// bind decodes the body and runs struct validation
func bind[T any](c echo.Context) (T, error) {
	var v T

	if err := c.Bind(&v); err != nil {
		return v, httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(v); err != nil {
		return v, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return v, nil
}

// ============ Auth ============

type RegisterRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	PhoneNumber    string `json:"phone_number" validate:"required"`
	Password       string `json:"password" validate:"required,min=6"`
	Role           string `json:"role" validate:"required"`
	College        string `json:"college"`
	Department     string `json:"department"`
	RegisterNumber string `json:"register_number"`
	Batch          string `json:"batch"`
	Company        string `json:"company"`
	JobRole        string `json:"job_role"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	OTP         string `json:"otp_code" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// ============ Profiles ============

type StudentProfileRequest struct {
	Name           string `json:"name" validate:"required"`
	College        string `json:"college"`
	Department     string `json:"department"`
	RegisterNumber string `json:"register_number"`
	Batch          string `json:"batch"`
	Interests      string `json:"interests"`
	ResumeURL      string `json:"resume_url" validate:"omitempty,url"`
}

type AlumniProfileRequest struct {
	Name       string `json:"name" validate:"required"`
	College    string `json:"college"`
	Company    string `json:"company"`
	JobRole    string `json:"job_role"`
	Batch      string `json:"batch"`
	Department string `json:"department"`
	Skills     string `json:"skills"`
}

// ============ Connections ============

type ConnectionRequest struct {
	ReceiverID int64 `json:"receiver_id" validate:"required"`
}

// Status is checked by the service so that a bad value maps to "invalid status"
type ConnectionStatusRequest struct {
	ConnectionID int64  `json:"connection_id" validate:"required"`
	Status       string `json:"status"`
}

// ============ Mentorship ============

// Purpose and Message are checked by the service
type MentorshipCreateRequest struct {
	AlumniID int64  `json:"alumni_id" validate:"required"`
	Purpose  string `json:"purpose"`
	Message  string `json:"message"`
}

type MentorshipStatusRequest struct {
	Status string `json:"status"`
}

type AvailabilityResponse struct {
	MentorshipAvailable bool `json:"mentorship_available"`
}

// ============ Admin ============

type ApprovalRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	Status string `json:"status"`
}

type ToggleStatusResponse struct {
	UserID   int64 `json:"user_id"`
	IsActive bool  `json:"is_active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
