package model

import "time"

// Connection is a peer relationship between two users.
// At most one row exists for an unordered pair.
type Connection struct {
	ID          int64              `json:"id"`
	RequesterID int64              `json:"requester_id"`
	ReceiverID  int64              `json:"receiver_id"`
	Status      RelationshipStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   *time.Time         `json:"updated_at"`
}

func (c *Connection) InitiatorID() int64 { return c.RequesterID }
func (c *Connection) ResponderID() int64 { return c.ReceiverID }

// IsPending checks if connection is still waiting for the receiver
func (c *Connection) IsPending() bool {
	return c.Status == StatusPending
}

// PendingConnection is an incoming request as shown to the receiver
type PendingConnection struct {
	ConnectionID int64     `json:"connection_id"`
	RequesterID  int64     `json:"requester_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Department   *string   `json:"department"`
	Batch        *string   `json:"batch"`
	ResumeURL    *string   `json:"resume_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConnectedPeer is the other side of an accepted connection
type ConnectedPeer struct {
	ConnectionID int64              `json:"connection_id"`
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Role         Role               `json:"role"`
	College      *string            `json:"college"`
	Email        string             `json:"email"`
	Status       RelationshipStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}
