package model

import (
	"encoding/json"
	"time"
)

// Role is the account kind stored in users.role
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role coming from the outside world
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Profile is the role-specific part of a user. The set of implementations is
// closed: StudentProfile, AlumniProfile and AdminProfile.
type Profile interface {
	Role() Role
	isProfile()
}

// StudentProfile mirrors student_profiles. Missing attributes stay nil.
type StudentProfile struct {
	Department     *string `json:"department"`
	RegisterNumber *string `json:"register_number"`
	Batch          *string `json:"batch"`
	Interests      *string `json:"interests"`
	ResumeURL      *string `json:"resume_url"`
}

// AlumniProfile mirrors alumni_profiles
type AlumniProfile struct {
	Company             *string `json:"company"`
	JobRole             *string `json:"job_role"`
	Batch               *string `json:"batch"`
	Department          *string `json:"department"`
	Skills              *string `json:"skills"`
	MentorshipAvailable bool    `json:"mentorship_available"`
}

// AdminProfile carries no data; admins only moderate
type AdminProfile struct{}

func (StudentProfile) Role() Role { return RoleStudent }
func (AlumniProfile) Role() Role  { return RoleAlumni }
func (AdminProfile) Role() Role   { return RoleAdmin }

func (StudentProfile) isProfile() {}
func (AlumniProfile) isProfile()  {}
func (AdminProfile) isProfile()   {}

// User is an account of the platform together with its moderation flags
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phone_number"`
	PasswordHash string     `json:"-"`
	College      *string    `json:"college"`
	IsVerified   bool       `json:"is_verified"` // Подтверждён через OTP
	IsApproved   bool       `json:"is_approved"` // Только для выпускников
	IsActive     bool       `json:"is_active"`   // Переключается администратором
	OTPCode      *string    `json:"-"`
	OTPExpiry    *time.Time `json:"-"`
	Profile      Profile    `json:"profile"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Role returns the role carried by the profile variant
func (u *User) Role() Role {
	if u == nil || u.Profile == nil {
		return ""
	}
	return u.Profile.Role()
}

// MarshalJSON adds "role" so clients can tell which profile they received
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		Role Role `json:"role"`
	}{plain(u), u.Role()})
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	_, ok := u.Profile.(AdminProfile)
	return ok
}

// Alumni returns the alumni profile when the user is an alumnus
func (u *User) Alumni() (AlumniProfile, bool) {
	p, ok := u.Profile.(AlumniProfile)
	return p, ok
}
