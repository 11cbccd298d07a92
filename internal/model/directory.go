package model

// DirectoryFilter narrows the alumni directory.
// Empty strings mean "no constraint".
type DirectoryFilter struct {
	Query         string
	Company       string
	Department    string
	Batch         string
	AvailableOnly bool
	Limit         int
	Offset        int
}

// AlumniEntry is one row of the alumni directory
type AlumniEntry struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	College             *string `json:"college"`
	Company             *string `json:"company"`
	JobRole             *string `json:"job_role"`
	Batch               *string `json:"batch"`
	Department          *string `json:"department"`
	Skills              *string `json:"skills"`
	MentorshipAvailable bool    `json:"mentorship_available"`
}

// Dashboard holds per-user relationship counters
type Dashboard struct {
	PendingConnections  int `json:"pending_connections"`
	AcceptedConnections int `json:"accepted_connections"`
	PendingMentorships  int `json:"pending_mentorships"`
	AcceptedMentorships int `json:"accepted_mentorships"`
	RejectedMentorships int `json:"rejected_mentorships"`
}
