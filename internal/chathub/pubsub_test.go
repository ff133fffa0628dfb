package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/chathub"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// subscribingStorage adds a controllable broadcast stream to the mock, the
// same way the real storage service exposes its Redis subscription.
type subscribingStorage struct {
	*MockStorage
	events chan *redis.Message
}

func (s *subscribingStorage) SubscribeEvents() <-chan *redis.Message {
	return s.events
}

func TestPubSubListener_FeedsBroadcastsIntoRooms(t *testing.T) {
	store := &subscribingStorage{
		MockStorage: new(MockStorage),
		events:      make(chan *redis.Message),
	}
	hub := chathub.NewManagerService(store)

	clientA := newMockClient("sess-A", "user-A", "client")

	hub.StartPubSubListener()
	go hub.Run()
	hub.RegisterCh <- clientA
	hub.JoinCh <- chathub.JoinRequest{Client: clientA, AppointmentID: "appt-1"}
	time.Sleep(100 * time.Millisecond)
	clientA.drain()

	payload, err := json.Marshal(models.RealtimeEvent{
		Event:         models.EventReceiveMessage,
		AppointmentID: "appt-1",
		Message:       storedMessage(4, "hello"),
	})
	assert.NoError(t, err)

	store.events <- &redis.Message{Payload: string(payload)}
	time.Sleep(100 * time.Millisecond)

	events := clientA.drain()
	assert.Len(t, events, 1)
	assert.Equal(t, models.EventReceiveMessage, events[0].Event)
	assert.Equal(t, uint(4), events[0].Message.ID)
}

func TestPubSubListener_SkipsMalformedPayloads(t *testing.T) {
	store := &subscribingStorage{
		MockStorage: new(MockStorage),
		events:      make(chan *redis.Message),
	}
	hub := chathub.NewManagerService(store)

	clientA := newMockClient("sess-A", "user-A", "client")

	hub.StartPubSubListener()
	go hub.Run()
	hub.RegisterCh <- clientA
	hub.JoinCh <- chathub.JoinRequest{Client: clientA, AppointmentID: "appt-1"}
	time.Sleep(100 * time.Millisecond)
	clientA.drain()

	store.events <- &redis.Message{Payload: "{not json"}

	good, _ := json.Marshal(models.RealtimeEvent{
		Event:         models.EventReceiveMessage,
		AppointmentID: "appt-1",
		Message:       storedMessage(6, "after"),
	})
	store.events <- &redis.Message{Payload: string(good)}
	time.Sleep(100 * time.Millisecond)

	events := clientA.drain()
	assert.Len(t, events, 1, "the malformed payload is skipped, not fatal")
	assert.Equal(t, uint(6), events[0].Message.ID)
}

func TestPubSubListener_NoSubscriberIsDisabled(t *testing.T) {
	hub := chathub.NewManagerService(new(MockStorage))

	// MockStorage carries no broadcast stream; starting the listener must be
	// a no-op rather than a panic.
	hub.StartPubSubListener()
}
