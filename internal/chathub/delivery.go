package chathub

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/config"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
)

// DeliveryService reconciles a realtime send-message submission with the
// message row the HTTP write path already persisted, and broadcasts the
// canonical stored row to the appointment's room.
//
// The realtime path never writes the message itself: durability belongs to
// the synchronous HTTP path, so a dropped connection can never lose a
// message. The submission is correlated with the stored row by exact
// content equality after trimming, newest row first. Because no correlation
// id is threaded through, concurrent duplicate-content submissions in the
// same appointment may resolve to either row.
type DeliveryService struct {
	Storage storage.Storage

	// RetryDelay is the wait before the single lookup retry when the write
	// is not yet visible. Tests shorten it.
	RetryDelay time.Duration
}

// NewDeliveryService constructs a delivery service with the default retry
// delay.
func NewDeliveryService(s storage.Storage) *DeliveryService {
	return &DeliveryService{
		Storage:    s,
		RetryDelay: config.BroadcastRetryDelay,
	}
}

// Deliver handles one realtime submission from a session. Validation and
// authorization failures are reported to the submitting session only; no
// broadcast occurs. On a lookup miss the single retry is scheduled and
// Deliver returns; a miss after the retry is logged server-side only.
func (d *DeliveryService) Deliver(c Client, sub models.MessageSubmission) {
	content := strings.TrimSpace(sub.Content)
	if sub.AppointmentID == "" || content == "" {
		d.sendError(c, "Missing required fields")
		return
	}

	appt, err := d.Storage.GetAppointmentByID(sub.AppointmentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			d.sendError(c, "Appointment not found")
			return
		}
		log.Printf("ERROR: Delivery lookup of appointment %s failed: %v", sub.AppointmentID, err)
		d.sendError(c, "Failed to send message")
		return
	}

	if err := appt.Authorize(c.GetUserID(), c.GetUserType()); err != nil {
		d.sendError(c, "Not authorized to send messages for this appointment")
		return
	}
	if err := appt.CanMessage(); err != nil {
		d.sendError(c, "Cannot send messages for this appointment status")
		return
	}

	if d.tryBroadcast(sub.AppointmentID, content) {
		return
	}

	// The durable write may not be visible yet; retry exactly once after a
	// short delay. The retry is idempotent, so a session leaving the room
	// before it fires needs no cancellation.
	time.AfterFunc(d.RetryDelay, func() {
		if !d.tryBroadcast(sub.AppointmentID, content) {
			log.Printf("ERROR: %v: appointment %s", apperr.ErrBroadcastMiss, sub.AppointmentID)
		}
	})
}

// tryBroadcast looks up the stored row and publishes it to the room.
// Reports whether a row was found and published.
func (d *DeliveryService) tryBroadcast(appointmentID, content string) bool {
	msg, err := d.Storage.FindLatestMessageByContent(appointmentID, content)
	if err != nil {
		log.Printf("ERROR: Message lookup failed for appointment %s: %v", appointmentID, err)
		return false
	}
	if msg == nil {
		return false
	}

	ev := models.RealtimeEvent{
		Event:         models.EventReceiveMessage,
		AppointmentID: appointmentID,
		Message:       msg,
	}
	if err := d.Storage.PublishEvent(ev); err != nil {
		log.Printf("ERROR: Failed to publish message %d for appointment %s: %v", msg.ID, appointmentID, err)
	}
	return true
}

// sendError reports a failure to the submitting session only. A session
// that disconnected before the report lands just loses it.
func (d *DeliveryService) sendError(c Client, message string) {
	if !c.TrySend(models.RealtimeEvent{Event: models.EventError, Error: message}) {
		log.Printf("WARNING: Could not deliver error to session %s: %s", c.GetSessionID(), message)
	}
}
