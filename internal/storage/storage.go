package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/config"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence boundary used by the handlers, the delivery
// service and the admin CLI.
type Storage interface {
	// Users
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email, userType string) (*models.User, error)
	GetCounselors() ([]models.User, error)

	// Appointments
	SaveAppointment(appt *models.Appointment) error
	GetAppointmentByID(id string) (*models.Appointment, error)
	GetAppointmentsForUser(userID, userType string) ([]models.Appointment, error)
	AddAppointmentNotification(n *models.AppointmentNotification) error

	// Messages
	CreateMessage(msg *models.Message) error
	GetMessagesForAppointment(appointmentID string) ([]models.Message, error)
	FindLatestMessageByContent(appointmentID, content string) (*models.Message, error)
	MarkMessagesRead(appointmentID, receiverID string) (int64, error)
	CountUnreadForUser(userID string) (int64, error)

	// Payments
	SavePayment(payment *models.Payment) error
	GetPaymentsForUser(userID, userType string) ([]models.Payment, error)

	// Realtime
	PublishEvent(ev models.RealtimeEvent) error
}

// Service implements Storage over PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructs a storage Service. The redis client may be nil for
// contexts that only touch the database (e.g. the admin CLI).
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Users ---

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail looks up a user by email and declared type. Login queries
// both together so a client cannot sign in through the counselor form.
func (s *Service) GetUserByEmail(email, userType string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ? AND user_type = ?", strings.ToLower(email), userType).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetCounselors() ([]models.User, error) {
	var counselors []models.User
	err := s.DB.Where("user_type = ? AND is_active = ?", models.UserTypeCounselor, true).
		Order("rating desc").
		Find(&counselors).Error
	if err != nil {
		log.Printf("ERROR: Failed to list counselors: %v", err)
		return nil, err
	}
	return counselors, nil
}

// --- Appointments ---

func (s *Service) SaveAppointment(appt *models.Appointment) error {
	return s.DB.Save(appt).Error
}

// GetAppointmentByID loads an appointment with both participant records
// populated.
func (s *Service) GetAppointmentByID(id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.DB.Preload("Client").Preload("Counselor").Preload("Notifications").
		First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get appointment %s: %v", id, err)
		return nil, err
	}
	return &appt, nil
}

func (s *Service) GetAppointmentsForUser(userID, userType string) ([]models.Appointment, error) {
	var appts []models.Appointment
	q := s.DB.Preload("Client").Preload("Counselor").Order("date desc")
	if userType == models.UserTypeCounselor {
		q = q.Where("counselor_id = ?", userID)
	} else {
		q = q.Where("client_id = ?", userID)
	}
	if err := q.Find(&appts).Error; err != nil {
		log.Printf("ERROR: Failed to list appointments for user %s: %v", userID, err)
		return nil, err
	}
	return appts, nil
}

func (s *Service) AddAppointmentNotification(n *models.AppointmentNotification) error {
	return s.DB.Create(n).Error
}

// --- Messages ---

// CreateMessage persists a message and reloads it with sender and receiver
// populated, so the caller can return the canonical stored representation.
func (s *Service) CreateMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for appointment %s: %v", msg.AppointmentID, err)
		return err
	}
	if err := s.DB.Preload("Sender").Preload("Receiver").Preload("Attachments").
		First(msg, msg.ID).Error; err != nil {
		return err
	}
	s.invalidateUnread(msg.ReceiverID)
	return nil
}

// GetMessagesForAppointment returns the conversation ordered by creation
// time, ties broken by insertion order.
func (s *Service) GetMessagesForAppointment(appointmentID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.Preload("Sender").Preload("Receiver").Preload("Attachments").
		Where("appointment_id = ?", appointmentID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for appointment %s: %v", appointmentID, err)
		return nil, err
	}
	return messages, nil
}

// FindLatestMessageByContent returns the most recently created message in
// the appointment whose content exactly matches. Used by the realtime path
// to locate the row the HTTP write path persisted. Returns nil, nil when no
// row matches.
func (s *Service) FindLatestMessageByContent(appointmentID, content string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Preload("Sender").Preload("Receiver").Preload("Attachments").
		Where("appointment_id = ? AND content = ?", appointmentID, content).
		Order("created_at desc, id desc").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkMessagesRead flips the read flag on every unread message addressed to
// receiverID in the appointment. Returns the number of rows updated.
func (s *Service) MarkMessagesRead(appointmentID, receiverID string) (int64, error) {
	res := s.DB.Model(&models.Message{}).
		Where("appointment_id = ? AND receiver_id = ? AND is_read = ?", appointmentID, receiverID, false).
		Update("is_read", true)
	if res.Error != nil {
		log.Printf("ERROR: Failed to mark messages read for user %s in appointment %s: %v",
			receiverID, appointmentID, res.Error)
		return 0, res.Error
	}
	s.invalidateUnread(receiverID)
	return res.RowsAffected, nil
}

// CountUnreadForUser counts unread messages addressed to the user, with a
// short-lived Redis cache in front of the database count.
func (s *Service) CountUnreadForUser(userID string) (int64, error) {
	key := "unread:" + userID
	if s.Redis != nil {
		if cached, err := s.Redis.Get(s.Ctx, key).Result(); err == nil {
			if n, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return n, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: Unread cache read failed for user %s: %v", userID, err)
		}
	}

	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(s.Ctx, key, count, config.UnreadCacheTTL).Err(); err != nil {
			log.Printf("WARNING: Unread cache write failed for user %s: %v", userID, err)
		}
	}
	return count, nil
}

func (s *Service) invalidateUnread(userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(s.Ctx, "unread:"+userID).Err(); err != nil {
		log.Printf("WARNING: Unread cache invalidation failed for user %s: %v", userID, err)
	}
}

// --- Payments ---

func (s *Service) SavePayment(payment *models.Payment) error {
	return s.DB.Save(payment).Error
}

func (s *Service) GetPaymentsForUser(userID, userType string) ([]models.Payment, error) {
	var payments []models.Payment
	q := s.DB.Preload("Appointment").Order("created_at desc")
	if userType == models.UserTypeCounselor {
		q = q.Where("counselor_id = ?", userID)
	} else {
		q = q.Where("client_id = ?", userID)
	}
	if err := q.Find(&payments).Error; err != nil {
		log.Printf("ERROR: Failed to list payments for user %s: %v", userID, err)
		return nil, err
	}
	return payments, nil
}

// --- Realtime ---

// PublishEvent pushes a realtime event onto the shared Redis broadcast
// channel. Every hub instance subscribed to the channel fans it out to its
// local room members.
func (s *Service) PublishEvent(ev models.RealtimeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.BroadcastChannel, payload).Err()
}

// SubscribeEvents subscribes to the broadcast channel and returns its
// message stream. The subscription is not closed; it lives as long as the
// hub's listener.
func (s *Service) SubscribeEvents() <-chan *redis.Message {
	return s.Redis.Subscribe(s.Ctx, config.BroadcastChannel).Channel()
}
