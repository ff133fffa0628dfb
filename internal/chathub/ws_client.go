package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/config"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/gorilla/websocket"
)

// WebSocketClient implements the Client interface over a gorilla/websocket
// connection.
type WebSocketClient struct {
	SessionID string
	UserID    string
	UserType  string
	Conn      *websocket.Conn
	Hub       *ManagerService
	Send      chan models.RealtimeEvent

	mu     sync.Mutex
	closed bool
}

func (c *WebSocketClient) GetSessionID() string { return c.SessionID }
func (c *WebSocketClient) GetUserID() string    { return c.UserID }
func (c *WebSocketClient) GetUserType() string  { return c.UserType }

// TrySend queues an event for the write pump. The closed flag is checked
// under the same mutex Close holds, so a send can never hit a closed
// channel.
func (c *WebSocketClient) TrySend(ev models.RealtimeEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- ev:
		return true
	default:
		return false
	}
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. Safe to call
// more than once.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// readPump reads frames from the socket and routes them to the hub. It owns
// the connection's read side and the unregister on disconnect.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading from session %s: %v", c.SessionID, err)
			}
			break
		}

		var frame models.InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("Error decoding frame from session %s: %v", c.SessionID, err)
			continue
		}

		switch frame.Event {
		case models.EventJoinSession:
			c.Hub.JoinCh <- JoinRequest{Client: c, AppointmentID: frame.AppointmentID}

		case models.EventSendMessage:
			c.Hub.SubmitCh <- Submission{
				Client: c,
				Message: models.MessageSubmission{
					AppointmentID: frame.AppointmentID,
					Content:       frame.Content,
					MessageType:   frame.MessageType,
				},
			}

		case models.EventVideoSignal:
			c.Hub.SignalCh <- SignalRelay{
				Client:        c,
				AppointmentID: frame.AppointmentID,
				Signal:        frame.Signal,
			}

		default:
			log.Printf("Unknown event %q from session %s", frame.Event, c.SessionID)
		}
	}
}

// writePump drains the Send channel onto the socket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// Channel closed by the hub.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding event for session %s: %v", c.SessionID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
