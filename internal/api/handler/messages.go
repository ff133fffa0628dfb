package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/gin-gonic/gin"
)

// GetMessages returns the conversation for an appointment, oldest first.
func (h *Handler) GetMessages(c *gin.Context) {
	userID, userType := identity(c)
	appointmentID := c.Param("appointmentId")

	appt, err := h.Storage.GetAppointmentByID(appointmentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := appt.Authorize(userID, userType); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": "Not authorized to access this appointment"})
		return
	}

	messages, err := h.Storage.GetMessagesForAppointment(appointmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	AppointmentID string `json:"appointment_id"`
	Content       string `json:"content"`
	MessageType   string `json:"message_type"`
	Attachments   []struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
		FileType string `json:"file_type"`
	} `json:"attachments"`
}

// SendMessage is the durable write path: it validates, runs the access and
// state gate, derives the receiver as the appointment's other participant,
// persists the message and returns the populated stored row. Broadcast to
// the room happens separately on the realtime path.
func (h *Handler) SendMessage(c *gin.Context) {
	userID, userType := identity(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageText
	}

	fields := map[string]string{}
	content := strings.TrimSpace(req.Content)
	if req.AppointmentID == "" {
		fields["appointment_id"] = "required"
	}
	if content == "" {
		fields["content"] = "required"
	}
	if !models.ValidMessageType(req.MessageType) {
		fields["message_type"] = "must be text, file or image"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": fields})
		return
	}

	appt, err := h.Storage.GetAppointmentByID(req.AppointmentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := appt.Authorize(userID, userType); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": "Not authorized to send messages for this appointment"})
		return
	}
	if err := appt.CanMessage(); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": "Cannot send messages for this appointment status"})
		return
	}

	receiverID, _ := appt.OtherParticipant(userID)

	msg := models.Message{
		AppointmentID: appt.ID,
		SenderID:      userID,
		ReceiverID:    receiverID,
		Content:       content,
		MessageType:   req.MessageType,
	}
	for _, a := range req.Attachments {
		msg.Attachments = append(msg.Attachments, models.Attachment{
			Filename: a.Filename,
			URL:      a.URL,
			FileType: a.FileType,
		})
	}

	if err := h.Storage.CreateMessage(&msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

type markReadRequest struct {
	AppointmentID string `json:"appointment_id"`
}

// MarkRead marks every unread message addressed to the caller in the
// appointment as read.
func (h *Handler) MarkRead(c *gin.Context) {
	userID, userType := identity(c)

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AppointmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Appointment ID is required"})
		return
	}

	appt, err := h.Storage.GetAppointmentByID(req.AppointmentID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := appt.Authorize(userID, userType); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": "Not authorized to access this appointment"})
		return
	}

	modified, err := h.Storage.MarkMessagesRead(req.AppointmentID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Messages marked as read",
		"modified_count": modified,
	})
}

// UnreadCount returns how many unread messages are addressed to the caller
// across all appointments.
func (h *Handler) UnreadCount(c *gin.Context) {
	userID, userType := identity(c)

	count, err := h.Storage.CountUnreadForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_count": count,
		"user_id":      userID,
		"user_type":    userType,
	})
}
