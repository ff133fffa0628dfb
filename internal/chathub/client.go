package chathub

import (
	"encoding/json"

	"github.com/Suryathangaraj2003/consulting/internal/models"
)

// Client is the interface for one live realtime session. It abstracts the
// underlying connection so the hub and delivery service can treat sessions
// uniformly (and so tests can substitute doubles).
type Client interface {
	// GetSessionID returns the unique identifier of this connection. A user
	// may hold several sessions at once.
	GetSessionID() string
	// GetUserID returns the verified identity bound to the session.
	GetUserID() string
	// GetUserType returns the verified role ("client" or "counselor").
	GetUserType() string

	// TrySend queues an outbound event without blocking. Reports false when
	// the session is closed or its buffer is full. Safe to call from any
	// goroutine, including concurrently with Close.
	TrySend(ev models.RealtimeEvent) bool

	// Run starts the session's read and write pumps.
	Run()
	// Close shuts down the session's outbound side. Safe to call more than
	// once.
	Close()
}

// JoinRequest asks the hub to add a session to an appointment's room.
type JoinRequest struct {
	Client        Client
	AppointmentID string
}

// Submission is a realtime send-message request paired with the session
// that submitted it, so errors can be reported point-to-point.
type Submission struct {
	Client  Client
	Message models.MessageSubmission
}

// SignalRelay is a video signaling frame to pass through to the other
// sessions in the appointment's room. The payload is opaque to the server.
type SignalRelay struct {
	Client        Client
	AppointmentID string
	Signal        json.RawMessage
}
