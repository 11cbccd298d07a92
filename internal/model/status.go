package model

// RelationshipStatus is shared by connections and mentorship requests
type RelationshipStatus string

const (
	StatusPending  RelationshipStatus = "pending"
	StatusAccepted RelationshipStatus = "accepted"
	StatusRejected RelationshipStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s RelationshipStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ParseDecision accepts only the two values a responder may set
func ParseDecision(s string) (RelationshipStatus, error) {
	switch RelationshipStatus(s) {
	case StatusAccepted, StatusRejected:
		return RelationshipStatus(s), nil
	}
	return "", ErrInvalidDecision
}

// Relationship is a record with an initiator and a designated responder
type Relationship interface {
	InitiatorID() int64
	ResponderID() int64
}

// HasParty checks if the user takes part in the relationship
func HasParty(r Relationship, userID int64) bool {
	return r.InitiatorID() == userID || r.ResponderID() == userID
}
