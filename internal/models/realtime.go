package models

import "encoding/json"

// Realtime event names exchanged over the websocket.
const (
	EventJoinSession    = "join-session"
	EventSessionJoined  = "session-joined"
	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"
	EventVideoSignal    = "video-signal"
	EventError          = "error"
)

// InboundFrame is a client-to-server websocket frame. Only the fields
// relevant to the named event are set.
type InboundFrame struct {
	Event         string          `json:"event"`
	AppointmentID string          `json:"appointment_id"`
	Content       string          `json:"content"`
	MessageType   string          `json:"message_type"`
	Signal        json.RawMessage `json:"signal,omitempty"`
}

// RealtimeEvent is a server-to-client websocket frame. For
// "receive-message" events Message carries the canonical stored row,
// populated with sender and receiver summaries. For "video-signal" events
// Signal carries the relayed payload untouched.
type RealtimeEvent struct {
	Event         string          `json:"event"`
	AppointmentID string          `json:"appointment_id,omitempty"`
	Message       *Message        `json:"message,omitempty"`
	Signal        json.RawMessage `json:"signal,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// MessageSubmission is a realtime send-message request. It intentionally
// carries no message id: the durable write happens on the HTTP path, and the
// delivery service correlates this submission with the stored row.
type MessageSubmission struct {
	AppointmentID string
	Content       string
	MessageType   string
}
