package model

import "errors"

// Domain errors. Callers match them with errors.Is.
var (
	ErrInvalidTarget          = errors.New("invalid target")
	ErrDuplicateRelationship  = errors.New("relationship already exists or is pending")
	ErrNotFoundOrUnauthorized = errors.New("not found or unauthorized")
	ErrAlreadyResolved        = errors.New("request already resolved")
	ErrAccountInactive        = errors.New("account is inactive")
	ErrEmptyMessage           = errors.New("message must not be empty")
	ErrInvalidDecision        = errors.New("invalid status")
	ErrInvalidPurpose         = errors.New("invalid purpose")
	ErrForbidden              = errors.New("forbidden")
	ErrMentorUnavailable      = errors.New("alumni is not accepting mentorship requests")

	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUserExists         = errors.New("user already exists with this email or phone number")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("please verify your phone number first")
	ErrInvalidRole        = errors.New("invalid role")
)
