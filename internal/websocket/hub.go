package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alivehamster/elliptical/internal/moderation"
	"github.com/alivehamster/elliptical/internal/observability"
	"github.com/alivehamster/elliptical/internal/service"
)

// Envelope is the wire frame in both directions: an event name plus its
// JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func marshalEnvelope(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

type audience int

const (
	audienceRoom audience = iota
	audienceGlobal
)

type delivery struct {
	audience audience
	roomID   string
	data     []byte
}

type membership struct {
	client *Client
	roomID string
}

// Hub tracks live connections and their room memberships and routes
// every outbound event to one of the three audience tiers: a single
// connection (via Client.Send), the members of a named room, or all
// connections. It also owns the connection lifecycle accounting: each
// register/unregister updates the shared online count and announces it
// globally.
//
// All maps are touched only by the Run goroutine, fed by channels.
type Hub struct {
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	state   *moderation.State

	register   chan *Client
	unregister chan *Client
	joins      chan membership
	deliveries chan delivery
}

// NewHub creates a new Hub
func NewHub(state *moderation.State) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		state:      state,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joins:      make(chan membership),
		deliveries: make(chan delivery, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			h.joinRoom(client, service.HomeRoom)
			observability.ConnectionsActive.Inc()
			slog.Info("connection registered", slog.String("connection_id", client.ID()))
			h.announceOnline(h.state.ConnectionOpened())

		case client := <-h.unregister:
			if !h.clients[client] {
				continue
			}
			h.dropClient(client)
			observability.ConnectionsActive.Dec()
			slog.Info("connection unregistered", slog.String("connection_id", client.ID()))
			h.announceOnline(h.state.ConnectionClosed())

		case m := <-h.joins:
			h.joinRoom(m.client, m.roomID)

		case d := <-h.deliveries:
			h.route(d)
		}
	}
}

// joinRoom registers membership; rejoining is harmless.
func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// dropClient removes a client from every room and closes its send side.
func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client)
	for roomID, members := range h.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	client.closeSend()
}

// route delivers one event to its resolved audience.
func (h *Hub) route(d delivery) {
	switch d.audience {
	case audienceGlobal:
		for client := range h.clients {
			h.push(client, d.data)
		}
		observability.BroadcastsSent.WithLabelValues("global").Inc()

	case audienceRoom:
		for client := range h.rooms[d.roomID] {
			h.push(client, d.data)
		}
		observability.BroadcastsSent.WithLabelValues("room").Inc()
	}
}

// push hands data to a client's send buffer; a full buffer means the
// client is too slow and gets dropped.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.dropClient(client)
	}
}

// announceOnline broadcasts the online count to every connection.
func (h *Hub) announceOnline(count int) {
	data, err := marshalEnvelope(service.EventUsers, count)
	if err != nil {
		slog.Error("failed to marshal online count", slog.String("error", err.Error()))
		return
	}
	for client := range h.clients {
		h.push(client, data)
	}
	observability.BroadcastsSent.WithLabelValues("global").Inc()
}

// shutdown closes every client connection's send side.
func (h *Hub) shutdown() {
	for client := range h.clients {
		client.closeSend()
	}
	slog.Info("hub shutdown complete")
}

// ToAll queues an event for every connection.
func (h *Hub) ToAll(event string, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		slog.Error("failed to marshal broadcast", slog.String("error", err.Error()))
		return
	}
	h.deliveries <- delivery{audience: audienceGlobal, data: data}
}

// ToRoom queues an event for the members of a room.
func (h *Hub) ToRoom(roomID string, event string, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		slog.Error("failed to marshal broadcast", slog.String("error", err.Error()))
		return
	}
	h.deliveries <- delivery{audience: audienceRoom, roomID: roomID, data: data}
}

// Join registers a client's membership in a room.
func (h *Hub) Join(client *Client, roomID string) {
	h.joins <- membership{client: client, roomID: roomID}
}

// Register registers a client with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
