package chathub_test

import (
	"sync"

	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email, userType string) (*models.User, error) {
	args := m.Called(email, userType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetCounselors() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) SaveAppointment(appt *models.Appointment) error {
	args := m.Called(appt)
	return args.Error(0)
}

func (m *MockStorage) GetAppointmentByID(id string) (*models.Appointment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockStorage) GetAppointmentsForUser(userID, userType string) ([]models.Appointment, error) {
	args := m.Called(userID, userType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockStorage) AddAppointmentNotification(n *models.AppointmentNotification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStorage) CreateMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessagesForAppointment(appointmentID string) ([]models.Message, error) {
	args := m.Called(appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) FindLatestMessageByContent(appointmentID, content string) (*models.Message, error) {
	args := m.Called(appointmentID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) MarkMessagesRead(appointmentID, receiverID string) (int64, error) {
	args := m.Called(appointmentID, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CountUnreadForUser(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SavePayment(payment *models.Payment) error {
	args := m.Called(payment)
	return args.Error(0)
}

func (m *MockStorage) GetPaymentsForUser(userID, userType string) ([]models.Payment, error) {
	args := m.Called(userID, userType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *MockStorage) PublishEvent(ev models.RealtimeEvent) error {
	args := m.Called(ev)
	return args.Error(0)
}

// mockClient is a test double for the chathub.Client interface. Events the
// hub or delivery service send to the session land in RecvChannel. Close
// mirrors the real client's semantics: the channel is closed and further
// sends are refused.
type mockClient struct {
	sessionID   string
	userID      string
	userType    string
	RecvChannel chan models.RealtimeEvent

	mu     sync.Mutex
	closed bool
}

func newMockClient(sessionID, userID, userType string) *mockClient {
	return &mockClient{
		sessionID:   sessionID,
		userID:      userID,
		userType:    userType,
		RecvChannel: make(chan models.RealtimeEvent, 10),
	}
}

func (c *mockClient) GetSessionID() string { return c.sessionID }
func (c *mockClient) GetUserID() string    { return c.userID }
func (c *mockClient) GetUserType() string  { return c.userType }

func (c *mockClient) TrySend(ev models.RealtimeEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.RecvChannel <- ev:
		return true
	default:
		return false
	}
}

func (c *mockClient) Run() {}

func (c *mockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.RecvChannel)
}

func (c *mockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// drain returns every event currently buffered for the session.
func (c *mockClient) drain() []models.RealtimeEvent {
	var events []models.RealtimeEvent
	for {
		select {
		case ev, ok := <-c.RecvChannel:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}
