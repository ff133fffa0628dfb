package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/gin-gonic/gin"
)

// loadAuthorized fetches the appointment and checks the caller is one of
// its participants. Writes the error response itself and returns nil on
// failure.
func (h *Handler) loadAuthorized(c *gin.Context) *models.Appointment {
	userID, userType := identity(c)

	appt, err := h.Storage.GetAppointmentByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return nil
	}

	if err := appt.Authorize(userID, userType); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": "Not authorized"})
		return nil
	}
	return appt
}

// counselorOnly re-checks that the caller is the appointment's counselor.
func counselorOnly(c *gin.Context, appt *models.Appointment) bool {
	userID, _ := identity(c)
	if appt.CounselorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return false
	}
	return true
}

// ListAppointments returns the caller's appointments, newest first.
func (h *Handler) ListAppointments(c *gin.Context) {
	userID, userType := identity(c)
	appts, err := h.Storage.GetAppointmentsForUser(userID, userType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, appts)
}

// GetAppointment returns one appointment with both participants populated.
func (h *Handler) GetAppointment(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}
	c.JSON(http.StatusOK, appt)
}

type createAppointmentRequest struct {
	CounselorID string `json:"counselor_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	SessionType string `json:"session_type"`
	Notes       string `json:"notes"`
}

// CreateAppointment books a session with a counselor. The amount is the
// counselor's hourly rate at booking time.
func (h *Handler) CreateAppointment(c *gin.Context) {
	userID, userType := identity(c)
	if userType != models.UserTypeClient {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only clients can book appointments"})
		return
	}

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	fields := map[string]string{}
	if req.CounselorID == "" {
		fields["counselor_id"] = "required"
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		fields["date"] = "must be an RFC3339 timestamp"
	}
	if req.Time == "" {
		fields["time"] = "required"
	}
	switch req.SessionType {
	case models.SessionVideo, models.SessionChat, models.SessionEmail:
	default:
		fields["session_type"] = "must be video, chat or email"
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": fields})
		return
	}

	counselor, err := h.Storage.GetUserByID(req.CounselorID)
	if err != nil || !counselor.IsCounselor() {
		c.JSON(http.StatusNotFound, gin.H{"message": "Counselor not found"})
		return
	}

	appt := models.Appointment{
		ClientID:    userID,
		CounselorID: counselor.ID,
		Date:        date,
		Time:        req.Time,
		SessionType: req.SessionType,
		Status:      models.StatusScheduled,
		Notes:       req.Notes,
		Amount:      counselor.HourlyRate,
	}
	if err := h.Storage.SaveAppointment(&appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	h.Notifier.AppointmentBooked(&appt)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked successfully",
		"appointment": appt,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves the appointment to a new status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	switch req.Status {
	case models.StatusScheduled, models.StatusConfirmed, models.StatusInProgress,
		models.StatusCompleted, models.StatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	appt.Status = req.Status
	if err := h.Storage.SaveAppointment(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment status updated", "appointment": appt})
}

type notesRequest struct {
	SessionNotes string `json:"session_notes"`
}

// UpdateNotes records the counselor's session notes.
func (h *Handler) UpdateNotes(c *gin.Context) {
	_, userType := identity(c)
	if userType != models.UserTypeCounselor {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only counselors can add session notes"})
		return
	}

	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}

	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	appt.SessionNotes = req.SessionNotes
	if err := h.Storage.SaveAppointment(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session notes updated", "appointment": appt})
}

type feedbackRequest struct {
	Rating   float64 `json:"rating"`
	Feedback string  `json:"feedback"`
}

// SubmitFeedback records the client's rating for a completed session and
// updates the counselor's aggregate rating.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	userID, userType := identity(c)
	if userType != models.UserTypeClient {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only clients can rate appointments"})
		return
	}

	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}
	if appt.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := h.Rating.Apply(appt, req.Rating, req.Feedback); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback recorded", "appointment": appt})
}

type meetingLinkRequest struct {
	MeetingLink string `json:"meeting_link"`
}

// SendMeetingLink lets the counselor share a Google Meet link with the
// client. Sharing the link confirms the appointment.
func (h *Handler) SendMeetingLink(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}
	if !counselorOnly(c, appt) {
		return
	}

	var req meetingLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil || !strings.Contains(req.MeetingLink, "meet.google.com") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide a valid Google Meet link"})
		return
	}

	now := time.Now()
	appt.MeetingLink = req.MeetingLink
	appt.Status = models.StatusConfirmed
	appt.MeetingCreatedAt = &now
	if err := h.Storage.SaveAppointment(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	n := models.AppointmentNotification{
		AppointmentID: appt.ID,
		Message:       "Meeting link shared: " + req.MeetingLink,
		Type:          "meeting_link_shared",
		MeetingLink:   req.MeetingLink,
	}
	if err := h.Storage.AddAppointmentNotification(&n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	h.Notifier.MeetingLinkShared(appt)

	c.JSON(http.StatusOK, gin.H{
		"message":      "Meeting link sent to client successfully",
		"meeting_link": req.MeetingLink,
		"appointment":  appt,
	})
}

// GetMeetingLink returns the meeting link (if shared) to either participant.
func (h *Handler) GetMeetingLink(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting_link":      appt.MeetingLink,
		"status":            appt.Status,
		"meeting_available": appt.MeetingLink != "",
	})
}

type notifyClientRequest struct {
	Message     string `json:"message"`
	MeetingLink string `json:"meeting_link"`
}

// NotifyClient attaches a counselor notification to the appointment.
func (h *Handler) NotifyClient(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}
	if !counselorOnly(c, appt) {
		return
	}

	var req notifyClientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message is required"})
		return
	}

	n := models.AppointmentNotification{
		AppointmentID: appt.ID,
		Message:       req.Message,
		Type:          "meeting_notification",
		MeetingLink:   req.MeetingLink,
	}
	if err := h.Storage.AddAppointmentNotification(&n); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client notified successfully"})
}

// StartSession moves the appointment to in-progress.
func (h *Handler) StartSession(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}
	if !counselorOnly(c, appt) {
		return
	}

	if appt.SessionType == models.SessionVideo && appt.MeetingLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting link not shared yet"})
		return
	}

	now := time.Now()
	appt.Status = models.StatusInProgress
	appt.SessionStartTime = &now
	if err := h.Storage.SaveAppointment(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session started successfully", "appointment": appt})
}

// EndSession completes the appointment, recording the actual duration when
// a start time was set.
func (h *Handler) EndSession(c *gin.Context) {
	appt := h.loadAuthorized(c)
	if appt == nil {
		return
	}
	if !counselorOnly(c, appt) {
		return
	}

	now := time.Now()
	appt.Status = models.StatusCompleted
	appt.SessionEndTime = &now
	if appt.SessionStartTime != nil {
		appt.Duration = int(now.Sub(*appt.SessionStartTime).Round(time.Minute) / time.Minute)
	}
	if err := h.Storage.SaveAppointment(appt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Session ended successfully",
		"appointment": appt,
		"duration":    appt.Duration,
	})
}
