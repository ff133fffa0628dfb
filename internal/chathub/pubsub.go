package chathub

import (
	"encoding/json"
	"log"

	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/redis/go-redis/v9"
)

// EventSubscriber is implemented by storage backends that expose the Redis
// broadcast channel. The concrete *storage.Service implements it; test
// doubles may substitute their own message stream.
type EventSubscriber interface {
	SubscribeEvents() <-chan *redis.Message
}

// StartPubSubListener subscribes to the shared broadcast channel and feeds
// received events into the hub's dispatch loop. Broadcasts travel through
// Redis so that every instance of the backend delivers to its own local
// room members. The subscription lives for the process lifetime.
func (m *ManagerService) StartPubSubListener() {
	sub, ok := m.Storage.(EventSubscriber)
	if !ok {
		log.Println("WARNING: Storage does not expose a broadcast channel, realtime fan-out disabled")
		return
	}

	go func() {
		for msg := range sub.SubscribeEvents() {
			var ev models.RealtimeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("Error unmarshalling broadcast event: %v", err)
				continue
			}
			m.PubSubCh <- ev
		}
	}()
}
