package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type messageStorage struct {
	storage.Storage
	appointment *models.Appointment
	messages    []models.Message
	created     *models.Message
	marked      int64
}

func (s *messageStorage) GetAppointmentByID(id string) (*models.Appointment, error) {
	if s.appointment != nil && s.appointment.ID == id {
		return s.appointment, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *messageStorage) GetMessagesForAppointment(appointmentID string) ([]models.Message, error) {
	return s.messages, nil
}

func (s *messageStorage) CreateMessage(msg *models.Message) error {
	msg.ID = 42
	s.created = msg
	return nil
}

func (s *messageStorage) MarkMessagesRead(appointmentID, userID string) (int64, error) {
	return s.marked, nil
}

func (s *messageStorage) CountUnreadForUser(userID string) (int64, error) {
	return 7, nil
}

// asUser injects an authenticated identity the way AuthRequired does.
func asUser(userID, userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserID, userID)
		c.Set(ctxUserType, userType)
	}
}

func confirmedAppointment() *models.Appointment {
	return &models.Appointment{
		ID:          "appt-1",
		ClientID:    "client-A",
		CounselorID: "counselor-B",
		Status:      models.StatusConfirmed,
	}
}

func messageRouter(store *messageStorage, userID, userType string) *gin.Engine {
	h := testHandler(store)
	router := gin.New()
	router.Use(asUser(userID, userType))
	router.GET("/messages/appointment/:appointmentId", h.GetMessages)
	router.POST("/messages", h.SendMessage)
	router.PATCH("/messages/read", h.MarkRead)
	router.GET("/messages/unread-count", h.UnreadCount)
	return router
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessage_PersistsAndDerivesReceiver(t *testing.T) {
	store := &messageStorage{appointment: confirmedAppointment()}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	w := postJSON(router, "/messages", map[string]any{
		"appointment_id": "appt-1",
		"content":        "  hello there  ",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotNil(t, store.created)
	assert.Equal(t, "hello there", store.created.Content)
	assert.Equal(t, "client-A", store.created.SenderID)
	assert.Equal(t, "counselor-B", store.created.ReceiverID)
	assert.Equal(t, models.MessageText, store.created.MessageType)
}

func TestSendMessage_ValidationFailures(t *testing.T) {
	store := &messageStorage{appointment: confirmedAppointment()}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	w := postJSON(router, "/messages", map[string]any{
		"content":      "   ",
		"message_type": "video",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "appointment_id")
	assert.Contains(t, resp.Errors, "content")
	assert.Contains(t, resp.Errors, "message_type")
	assert.Nil(t, store.created)
}

func TestSendMessage_UnknownAppointment(t *testing.T) {
	store := &messageStorage{}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	w := postJSON(router, "/messages", map[string]any{
		"appointment_id": "appt-missing",
		"content":        "hello",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	store := &messageStorage{appointment: confirmedAppointment()}
	router := messageRouter(store, "client-X", models.UserTypeClient)

	w := postJSON(router, "/messages", map[string]any{
		"appointment_id": "appt-1",
		"content":        "hello",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, store.created)
}

func TestSendMessage_InactiveAppointment(t *testing.T) {
	appt := confirmedAppointment()
	appt.Status = models.StatusCompleted
	store := &messageStorage{appointment: appt}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	w := postJSON(router, "/messages", map[string]any{
		"appointment_id": "appt-1",
		"content":        "hello",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, store.created)
}

func TestSendMessage_Attachments(t *testing.T) {
	store := &messageStorage{appointment: confirmedAppointment()}
	router := messageRouter(store, "counselor-B", models.UserTypeCounselor)

	w := postJSON(router, "/messages", map[string]any{
		"appointment_id": "appt-1",
		"content":        "see attached",
		"message_type":   models.MessageFile,
		"attachments": []map[string]string{
			{"filename": "notes.pdf", "url": "https://files/notes.pdf", "file_type": "application/pdf"},
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.created.Attachments, 1)
	assert.Equal(t, "notes.pdf", store.created.Attachments[0].Filename)
	assert.Equal(t, "client-A", store.created.ReceiverID)
}

func TestGetMessages(t *testing.T) {
	store := &messageStorage{
		appointment: confirmedAppointment(),
		messages: []models.Message{
			{AppointmentID: "appt-1", Content: "first"},
			{AppointmentID: "appt-1", Content: "second"},
		},
	}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	req := httptest.NewRequest(http.MethodGet, "/messages/appointment/appt-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []models.Message
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestGetMessages_OutsiderForbidden(t *testing.T) {
	store := &messageStorage{appointment: confirmedAppointment()}
	router := messageRouter(store, "counselor-X", models.UserTypeCounselor)

	req := httptest.NewRequest(http.MethodGet, "/messages/appointment/appt-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkRead(t *testing.T) {
	store := &messageStorage{appointment: confirmedAppointment(), marked: 3}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	body, _ := json.Marshal(map[string]string{"appointment_id": "appt-1"})
	req := httptest.NewRequest(http.MethodPatch, "/messages/read", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Modified int64 `json:"modified_count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Modified)
}

func TestUnreadCount(t *testing.T) {
	store := &messageStorage{}
	router := messageRouter(store, "client-A", models.UserTypeClient)

	req := httptest.NewRequest(http.MethodGet, "/messages/unread-count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int64 `json:"unread_count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Count)
}
