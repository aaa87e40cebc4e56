package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alivehamster/elliptical/internal/domain"
	"github.com/alivehamster/elliptical/internal/observability"
	"github.com/alivehamster/elliptical/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // Must be less than pongWait
	maxFrameSize   = 4096
	handlerTimeout = 5 * time.Second
)

// Client is one live connection: an ephemeral identity created at
// upgrade time and destroyed on disconnect. It parses inbound envelopes,
// drives the chat and admin services, and maps their errors to the
// client-visible event contract.
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	chat     *service.ChatService
	admin    *service.AdminService
	writeMu  sync.Mutex
	closed   atomic.Bool
	sendOnce sync.Once
	sendDone atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewClient creates a client around an upgraded connection and assigns
// its ephemeral id.
func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, chat *service.ChatService, admin *service.AdminService) *Client {
	clientCtx, cancel := context.WithCancel(ctx)

	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		chat:   chat,
		admin:  admin,
		ctx:    clientCtx,
		cancel: cancel,
	}
}

// ID returns the ephemeral connection id.
func (c *Client) ID() string { return c.id }

// Send delivers one event to this connection only. A full buffer drops
// the event rather than blocking the caller.
func (c *Client) Send(event string, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		slog.Error("failed to marshal reply",
			slog.String("error", err.Error()),
			slog.String("event", event))
		return
	}
	if c.sendDone.Load() {
		return
	}
	select {
	case c.send <- data:
		observability.BroadcastsSent.WithLabelValues("client").Inc()
	default:
		slog.Warn("send buffer full, dropping event",
			slog.String("connection_id", c.id),
			slog.String("event", event))
	}
}

// ReadPump pumps inbound frames from the connection into the services.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.hub.Unregister(c)
		c.closeConnection()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("failed to set read deadline",
			slog.String("error", err.Error()),
			slog.String("connection_id", c.id))
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.replayRoomList()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket error",
					slog.String("error", err.Error()),
					slog.String("connection_id", c.id))
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			slog.Warn("invalid frame",
				slog.String("error", err.Error()),
				slog.String("connection_id", c.id))
			continue
		}

		observability.EventsReceived.WithLabelValues(env.Event).Inc()
		c.dispatch(env)
	}
}

// replayRoomList sends the current public room list to this connection
// only, the initial state every new connection receives.
func (c *Client) replayRoomList() {
	ctx, cancel := context.WithTimeout(c.ctx, handlerTimeout)
	defer cancel()

	rooms, err := c.chat.ListPublicRooms(ctx)
	if err != nil {
		slog.Error("room list replay failed",
			slog.String("error", err.Error()),
			slog.String("connection_id", c.id))
		return
	}
	for _, room := range rooms {
		c.Send(service.EventRoom, service.RoomPayload{
			Title:     room.Title,
			ID:        room.ID,
			Highlight: room.Highlighted,
		})
	}
}

// dispatch routes one inbound envelope to its handler. Unknown events
// are logged and dropped.
func (c *Client) dispatch(env Envelope) {
	ctx, cancel := context.WithTimeout(c.ctx, handlerTimeout)
	defer cancel()

	switch env.Event {
	case "message":
		c.handleMessage(ctx, env.Data)
	case "room":
		c.handleRoom(ctx, env.Data)
	case "join private":
		c.handleJoinPrivate(ctx, env.Data)
	case "join":
		c.handleJoin(ctx, env.Data)
	case "report msg":
		c.handleReport(ctx, env.Data)
	case "admin handler":
		c.handleAdmin(ctx, env.Data)
	case "passchange":
		c.handlePassChange(ctx, env.Data)
	case "updateMaxRooms":
		c.handleMaxRooms(ctx, env.Data)
	default:
		slog.Warn("unknown event",
			slog.String("event", env.Event),
			slog.String("connection_id", c.id))
	}
}

func (c *Client) handleMessage(ctx context.Context, data json.RawMessage) {
	var p struct {
		RoomID  string `json:"roomid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("invalid message payload", slog.String("error", err.Error()))
		return
	}

	_, err := c.chat.PostMessage(ctx, p.RoomID, c.id, p.Message)
	c.reportOutcome(err)
}

func (c *Client) handleRoom(ctx context.Context, data json.RawMessage) {
	var p struct {
		Title   string `json:"title"`
		Private bool   `json:"private"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("invalid room payload", slog.String("error", err.Error()))
		return
	}

	room, err := c.chat.CreateRoom(ctx, p.Title, p.Private, p.Code)
	if err != nil {
		c.reportOutcome(err)
		return
	}

	// The home audience already heard about public rooms; private
	// rooms are disclosed to the creator alone, code included.
	if room.Private {
		c.Send(service.EventRoom, service.RoomPayload{
			Title:   room.Title,
			ID:      room.ID,
			Private: true,
			Code:    room.AccessCode,
		})
	}
}

func (c *Client) handleJoinPrivate(ctx context.Context, data json.RawMessage) {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		slog.Warn("invalid join private payload", slog.String("error", err.Error()))
		return
	}

	room, err := c.chat.ResolvePrivateRoom(ctx, code)
	if err != nil {
		// A code miss produces no reply at all.
		if !errors.Is(err, domain.ErrRoomNotFound) {
			slog.Error("private room lookup failed", slog.String("error", err.Error()))
		}
		return
	}

	c.Send(service.EventRoom, service.RoomPayload{
		Title:   room.Title,
		ID:      room.ID,
		Private: true,
		Code:    room.AccessCode,
	})
}

func (c *Client) handleJoin(ctx context.Context, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil {
		slog.Warn("invalid join payload", slog.String("error", err.Error()))
		return
	}

	c.hub.Join(c, roomID)
	c.Send(service.EventJoined, roomID)

	history, err := c.chat.RoomHistory(ctx, roomID)
	if err != nil {
		slog.Error("history replay failed",
			slog.String("error", err.Error()),
			slog.String("room_id", roomID))
		return
	}
	for _, msg := range history {
		c.Send(service.EventMessage, service.MessagePayload{
			Message:   msg.Content,
			ID:        msg.ID,
			Highlight: msg.Highlighted,
		})
	}
}

func (c *Client) handleReport(ctx context.Context, data json.RawMessage) {
	var p struct {
		MsgID   string `json:"msgid"`
		RoomID  string `json:"roomid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("invalid report payload", slog.String("error", err.Error()))
		return
	}

	if err := c.chat.ReportMessage(ctx, p.MsgID, p.RoomID, p.Message); err != nil {
		slog.Error("report failed", slog.String("error", err.Error()))
		return
	}
	c.Send(service.EventNotice, service.NoticePayload{Message: "Message reported"})
}

func (c *Client) handleAdmin(ctx context.Context, data json.RawMessage) {
	var p struct {
		AdminPass string `json:"adminpass"`
		Command   string `json:"command"`
		MsgID     string `json:"msgid"`
		RoomID    string `json:"roomid"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("invalid admin payload", slog.String("error", err.Error()))
		return
	}

	if !c.admin.Authorize(p.AdminPass) {
		return
	}
	c.admin.Execute(ctx, service.AdminCommand{
		Command: p.Command,
		MsgID:   p.MsgID,
		RoomID:  p.RoomID,
		Message: p.Message,
	}, c)
}

func (c *Client) handlePassChange(ctx context.Context, data json.RawMessage) {
	var p struct {
		AdminPass string `json:"adminpass"`
		NewPass   string `json:"newpass"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("invalid passchange payload", slog.String("error", err.Error()))
		return
	}

	if !c.admin.Authorize(p.AdminPass) {
		return
	}
	if err := c.admin.ChangePassword(ctx, p.NewPass); err != nil {
		slog.Error("password change failed", slog.String("error", err.Error()))
		return
	}
	c.Send(service.EventNotice, service.NoticePayload{Message: "Success"})
}

func (c *Client) handleMaxRooms(_ context.Context, data json.RawMessage) {
	var p struct {
		AdminPass string `json:"adminpass"`
		MaxRooms  int    `json:"maxRooms"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("invalid updateMaxRooms payload", slog.String("error", err.Error()))
		return
	}

	if !c.admin.Authorize(p.AdminPass) {
		return
	}
	c.admin.UpdateMaxRooms(p.MaxRooms)
	c.Send(service.EventNotice, service.NoticePayload{Message: "Success"})
}

// reportOutcome maps a handler error onto the client-visible contract:
// rejections become status-bearing `event` payloads to the sender;
// everything else is logged and swallowed.
func (c *Client) reportOutcome(err error) {
	if err == nil {
		return
	}

	var rej *domain.Rejection
	if errors.As(err, &rej) {
		c.Send(service.EventNotice, service.NoticePayload{
			Message: rej.Reason,
			Status:  rej.Status,
		})
		return
	}

	slog.Error("event handling failed",
		slog.String("error", err.Error()),
		slog.String("connection_id", c.id))
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				_ = c.writeMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.writeMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeMessage writes a frame in a thread-safe manner
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed.Load() {
		return websocket.ErrCloseSent
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// closeSend closes the send channel exactly once. Called by the hub
// when it drops the client.
func (c *Client) closeSend() {
	c.sendOnce.Do(func() {
		c.sendDone.Store(true)
		close(c.send)
	})
}

// closeConnection safely closes the WebSocket connection
func (c *Client) closeConnection() {
	if c.closed.CompareAndSwap(false, true) {
		c.writeMu.Lock()
		c.conn.Close()
		c.writeMu.Unlock()
	}
}
