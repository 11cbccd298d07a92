package model

import "time"

// MentorshipPurpose is what the student asks the alumnus for
type MentorshipPurpose string

const (
	PurposeResumeReview   MentorshipPurpose = "resume_review"
	PurposeCareerGuidance MentorshipPurpose = "career_guidance"
	PurposeInterviewPrep  MentorshipPurpose = "interview_prep"
)

// ParsePurpose validates a purpose value
func ParsePurpose(s string) (MentorshipPurpose, error) {
	switch MentorshipPurpose(s) {
	case PurposeResumeReview, PurposeCareerGuidance, PurposeInterviewPrep:
		return MentorshipPurpose(s), nil
	}
	return "", ErrInvalidPurpose
}

// MentorshipRequest represents a student's request for guidance from an alumnus.
// Several requests between the same pair may coexist.
type MentorshipRequest struct {
	ID        int64              `json:"id"`
	StudentID int64              `json:"student_id"`
	AlumniID  int64              `json:"alumni_id"`
	Purpose   MentorshipPurpose  `json:"purpose"`
	Message   string             `json:"message"`
	Status    RelationshipStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt *time.Time         `json:"updated_at"`
}

func (r *MentorshipRequest) InitiatorID() int64 { return r.StudentID }
func (r *MentorshipRequest) ResponderID() int64 { return r.AlumniID }

// IsPending checks if request is pending
func (r *MentorshipRequest) IsPending() bool {
	return r.Status == StatusPending
}

// MentorshipView is a request joined with the names of both parties
type MentorshipView struct {
	MentorshipRequest
	StudentName   string  `json:"student_name"`
	StudentEmail  string  `json:"student_email"`
	AlumniName    string  `json:"alumni_name"`
	AlumniCompany *string `json:"alumni_company"`
	AlumniJobRole *string `json:"alumni_job_role"`
}
