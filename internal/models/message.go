package models

import "gorm.io/gorm"

// Message types accepted by the messaging endpoints.
const (
	MessageText  = "text"
	MessageFile  = "file"
	MessageImage = "image"
)

// ValidMessageType reports whether t is one of the accepted message types.
func ValidMessageType(t string) bool {
	return t == MessageText || t == MessageFile || t == MessageImage
}

// Message is one persisted chat message inside an appointment conversation.
// The embedded gorm.Model supplies the auto-increment ID used as the
// insertion-order tiebreak, plus CreatedAt/UpdatedAt timestamps.
// A message is immutable after creation except for the IsRead flag.
type Message struct {
	gorm.Model

	AppointmentID string `gorm:"type:uuid;not null;index:idx_appt_msg" json:"appointment_id"`
	SenderID      string `gorm:"not null;index" json:"sender_id"`
	ReceiverID    string `gorm:"not null;index" json:"receiver_id"`
	Sender        User   `gorm:"foreignKey:SenderID" json:"sender"`
	Receiver      User   `gorm:"foreignKey:ReceiverID" json:"receiver"`

	Content     string `gorm:"type:text;not null" json:"content"`
	MessageType string `gorm:"default:text" json:"message_type"`
	IsRead      bool   `gorm:"default:false;index" json:"is_read"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file reference carried by a message.
type Attachment struct {
	gorm.Model
	MessageID uint   `gorm:"not null;index" json:"-"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	FileType  string `json:"file_type"`
}
