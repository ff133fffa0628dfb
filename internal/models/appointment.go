package models

import (
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses. Messages may only be exchanged while the
// appointment is in one of the active statuses.
const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Session types offered by counselors.
const (
	SessionVideo = "video"
	SessionChat  = "chat"
	SessionEmail = "email"
)

// Payment statuses for an appointment.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Appointment is a booked session between exactly one client and one
// counselor. It is also the conversation key for messaging: every message
// belongs to an appointment, and the appointment's two participants are the
// only permitted sender/receiver pair.
type Appointment struct {
	ID          string `gorm:"primaryKey" json:"id"`
	ClientID    string `gorm:"not null;index:idx_client_date" json:"client_id"`
	CounselorID string `gorm:"not null;index:idx_counselor_date" json:"counselor_id"`
	Client      User   `gorm:"foreignKey:ClientID" json:"client"`
	Counselor   User   `gorm:"foreignKey:CounselorID" json:"counselor"`

	Date        time.Time `gorm:"not null;index:idx_client_date;index:idx_counselor_date" json:"date"`
	Time        string    `gorm:"not null" json:"time"`
	Duration    int       `gorm:"default:50" json:"duration"`
	SessionType string    `gorm:"not null" json:"session_type"`
	Status      string    `gorm:"default:scheduled;index" json:"status"`
	Notes       string    `json:"notes"`

	Amount        float64 `gorm:"not null" json:"amount"`
	PaymentStatus string  `gorm:"default:pending" json:"payment_status"`

	SessionNotes string  `json:"session_notes"`
	Rating       float64 `json:"rating,omitempty"`
	Feedback     string  `json:"feedback,omitempty"`

	MeetingLink      string     `json:"meeting_link,omitempty"`
	MeetingCreatedAt *time.Time `json:"meeting_created_at,omitempty"`
	SessionStartTime *time.Time `json:"session_start_time,omitempty"`
	SessionEndTime   *time.Time `json:"session_end_time,omitempty"`

	Notifications []AppointmentNotification `json:"notifications,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentNotification is an in-app notice attached to an appointment,
// e.g. a shared meeting link or a reminder from the counselor.
type AppointmentNotification struct {
	gorm.Model
	AppointmentID string `gorm:"not null;index" json:"appointment_id"`
	Message       string `gorm:"not null" json:"message"`
	Type          string `gorm:"default:meeting_notification" json:"type"`
	MeetingLink   string `json:"meeting_link,omitempty"`
}

// BeforeCreate generates a UUID for the appointment if one has not been set.
func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// IsParticipant reports whether userID is one of the appointment's two
// participants.
func (a *Appointment) IsParticipant(userID string) bool {
	return a.ClientID == userID || a.CounselorID == userID
}

// Authorize checks that the acting identity is a participant and that its
// declared role matches the side of the appointment it occupies. Returns
// apperr.ErrUnauthorized otherwise.
func (a *Appointment) Authorize(userID, userType string) error {
	isClient := a.ClientID == userID
	isCounselor := a.CounselorID == userID

	if !isClient && !isCounselor {
		return apperr.ErrUnauthorized
	}
	if userType == UserTypeClient && !isClient {
		return apperr.ErrUnauthorized
	}
	if userType == UserTypeCounselor && !isCounselor {
		return apperr.ErrUnauthorized
	}
	return nil
}

// CanMessage reports whether the appointment is in a status that accepts new
// messages. Returns apperr.ErrInvalidState if it is not.
func (a *Appointment) CanMessage() error {
	switch a.Status {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return nil
	}
	return apperr.ErrInvalidState
}

// OtherParticipant returns the participant on the opposite side of userID.
// The second return value is false when userID is not a participant.
func (a *Appointment) OtherParticipant(userID string) (string, bool) {
	switch userID {
	case a.ClientID:
		return a.CounselorID, true
	case a.CounselorID:
		return a.ClientID, true
	}
	return "", false
}
