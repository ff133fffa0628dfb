package chathub

import (
	"log"

	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/Suryathangaraj2003/consulting/internal/storage"
)

// ManagerService is the realtime hub. It owns the room registry (appointment
// id -> joined sessions) and fans broadcast events out to local room
// members. All registry mutation happens on the Run goroutine; other
// goroutines talk to it through the channels.
//
// The registry is in-memory only: it is rebuilt empty on restart and clients
// must rejoin their rooms.
type ManagerService struct {
	Clients map[string]Client            // session id -> client
	Rooms   map[string]map[string]Client // appointment id -> session id -> client

	RegisterCh   chan Client
	UnregisterCh chan Client
	JoinCh       chan JoinRequest
	SubmitCh     chan Submission
	SignalCh     chan SignalRelay
	PubSubCh     chan models.RealtimeEvent

	Storage  storage.Storage
	Delivery *DeliveryService
}

// NewManagerService constructs a hub over the given storage.
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		Rooms:        make(map[string]map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		JoinCh:       make(chan JoinRequest),
		SubmitCh:     make(chan Submission),
		SignalCh:     make(chan SignalRelay),
		PubSubCh:     make(chan models.RealtimeEvent),
		Storage:      s,
	}
}

// Run is the hub's main dispatch loop. It must run on its own goroutine.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetSessionID()] = client
			log.Printf("Session %s connected (user %s)", client.GetSessionID(), client.GetUserID())

		case client := <-m.UnregisterCh:
			m.drop(client)

		case req := <-m.JoinCh:
			m.join(req)

		case sub := <-m.SubmitCh:
			if m.Delivery == nil {
				log.Printf("WARNING: Dropping submission for appointment %s: no delivery service", sub.Message.AppointmentID)
				continue
			}
			// Delivery blocks on the store and may sleep for the retry
			// window; never run it on the dispatch goroutine.
			go m.Delivery.Deliver(sub.Client, sub.Message)

		case relay := <-m.SignalCh:
			m.relaySignal(relay)

		case ev := <-m.PubSubCh:
			m.broadcast(ev)
		}
	}
}

// join adds the session to the appointment's room and confirms to that
// session only. Sessions may belong to any number of rooms.
func (m *ManagerService) join(req JoinRequest) {
	room, ok := m.Rooms[req.AppointmentID]
	if !ok {
		room = make(map[string]Client)
		m.Rooms[req.AppointmentID] = room
	}
	room[req.Client.GetSessionID()] = req.Client
	log.Printf("Session %s joined room %s", req.Client.GetSessionID(), req.AppointmentID)

	m.send(req.Client, models.RealtimeEvent{
		Event:         models.EventSessionJoined,
		AppointmentID: req.AppointmentID,
	})
}

// relaySignal passes a video signaling payload to every other session in
// the room. The sender's own session is excluded; signaling is only relayed
// between local room members, never published across instances.
func (m *ManagerService) relaySignal(relay SignalRelay) {
	room := m.Rooms[relay.AppointmentID]
	for sid, client := range room {
		if sid == relay.Client.GetSessionID() {
			continue
		}
		m.send(client, models.RealtimeEvent{
			Event:         models.EventVideoSignal,
			AppointmentID: relay.AppointmentID,
			Signal:        relay.Signal,
		})
	}
}

// broadcast delivers an event to every session joined to its room,
// including the sender's own session. A broadcast with no listeners is a
// no-op.
func (m *ManagerService) broadcast(ev models.RealtimeEvent) {
	room := m.Rooms[ev.AppointmentID]
	for _, client := range room {
		m.send(client, ev)
	}
}

// send writes an event to one session without blocking the dispatch loop.
// A session whose outbound buffer is full or already closed is dropped; its
// read pump will observe the closed connection and the client is expected
// to reconnect.
func (m *ManagerService) send(client Client, ev models.RealtimeEvent) {
	if !client.TrySend(ev) {
		log.Printf("WARNING: Session %s unreachable, dropping session", client.GetSessionID())
		m.drop(client)
	}
}

// drop removes a session from the registry and every room it joined, then
// closes it. Disconnection removes the session implicitly; rooms need no
// explicit leave.
func (m *ManagerService) drop(client Client) {
	sid := client.GetSessionID()
	if _, ok := m.Clients[sid]; !ok {
		return
	}
	delete(m.Clients, sid)
	for apptID, room := range m.Rooms {
		delete(room, sid)
		if len(room) == 0 {
			delete(m.Rooms, apptID)
		}
	}
	client.Close()
	log.Printf("Session %s disconnected (user %s)", sid, client.GetUserID())
}
