// Package notify pushes operational notifications about bookings to a
// Telegram channel. It is optional: without a bot token the no-op notifier
// is used.
package notify

import (
	"fmt"
	"log"
	"strconv"

	"github.com/Suryathangaraj2003/consulting/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier receives booking lifecycle events.
type Notifier interface {
	AppointmentBooked(appt *models.Appointment)
	MeetingLinkShared(appt *models.Appointment)
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) AppointmentBooked(*models.Appointment) {}
func (Noop) MeetingLinkShared(*models.Appointment) {}

// Telegram sends notifications to a fixed ops chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram builds a Telegram notifier from a bot token and the target
// chat id.
func NewTelegram(token, chatID string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	return &Telegram{bot: bot, chatID: id}, nil
}

func (t *Telegram) AppointmentBooked(appt *models.Appointment) {
	t.send(fmt.Sprintf("New %s appointment %s booked for %s %s",
		appt.SessionType, appt.ID, appt.Date.Format("2006-01-02"), appt.Time))
}

func (t *Telegram) MeetingLinkShared(appt *models.Appointment) {
	t.send(fmt.Sprintf("Meeting link shared for appointment %s", appt.ID))
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send telegram notification: %v", err)
	}
}
