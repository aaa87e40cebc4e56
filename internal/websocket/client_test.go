package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alivehamster/elliptical/internal/domain"
	"github.com/alivehamster/elliptical/internal/moderation"
	"github.com/alivehamster/elliptical/internal/service"
	"github.com/alivehamster/elliptical/internal/testutil"
)

type clientFixture struct {
	state    *moderation.State
	rooms    *testutil.MockRoomRepository
	messages *testutil.MockMessageRepository
	reports  *testutil.MockReportRepository
	settings *testutil.MockSettingsRepository
	server   *httptest.Server
}

// newClientFixture wires a real hub, services over in-memory stores and
// an upgrading test server, the full path a production connection takes.
func newClientFixture(t *testing.T, blockedTerms []string) *clientFixture {
	t.Helper()

	f := &clientFixture{
		state:    moderation.NewState("secret", 25, blockedTerms),
		rooms:    testutil.NewMockRoomRepository(),
		messages: testutil.NewMockMessageRepository(),
		reports:  testutil.NewMockReportRepository(),
		settings: testutil.NewMockSettingsRepository(),
	}

	hub := NewHub(f.state)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()

	chat := service.NewChatService(f.rooms, f.messages, f.reports, f.state, hub, nil)
	admin := service.NewAdminService(f.rooms, f.messages, f.reports, f.settings, f.state, hub, nil)

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := gws.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(context.Background(), hub, conn, chat, admin)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(f.server.Close)

	return f
}

func (f *clientFixture) dial(t *testing.T) *gws.Conn {
	t.Helper()

	conn, _, err := gws.DefaultDialer.Dial("ws"+f.server.URL[4:], nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *gws.Conn, event string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(gws.TextMessage, frame))
}

// readEvent reads frames until one with the wanted event name arrives,
// skipping the online-count announcements that interleave freely.
func readEvent(t *testing.T, conn *gws.Conn, event string) Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, frame, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s event", event)

		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		if env.Event == event {
			return env
		}
	}
}

func TestClient_RoomListReplayOnConnect(t *testing.T) {
	f := newClientFixture(t, nil)
	room := testutil.NewTestRoom("general")
	f.rooms.Rooms[room.ID] = room

	conn := f.dial(t)

	env := readEvent(t, conn, "room")
	var p service.RoomPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "general", p.Title)
	assert.Equal(t, room.ID, p.ID)
}

func TestClient_PostMessage(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "message", map[string]string{"roomid": "home", "message": "hello"})

	env := readEvent(t, conn, "message")
	var p service.MessagePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "hello", p.Message)
	assert.NotEmpty(t, p.ID)
	assert.Len(t, f.messages.Messages, 1)
}

func TestClient_MessageRejectedWhenLocked(t *testing.T) {
	f := newClientFixture(t, nil)
	f.state.SetLocked(true)
	conn := f.dial(t)

	sendEvent(t, conn, "message", map[string]string{"roomid": "home", "message": "hello"})

	env := readEvent(t, conn, "event")
	var p service.NoticePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Chat has been locked", p.Message)
	assert.Equal(t, domain.StatusLocked, p.Status)
	assert.Empty(t, f.messages.Messages)
}

func TestClient_MessageRejectedByFilter(t *testing.T) {
	f := newClientFixture(t, []string{"forbidden"})
	conn := f.dial(t)

	sendEvent(t, conn, "message", map[string]string{"roomid": "home", "message": "FOR BID den"})

	env := readEvent(t, conn, "event")
	var p service.NoticePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Message contains a blocked phrase", p.Message)
	assert.Equal(t, domain.StatusRejected, p.Status)
}

func TestClient_CreatePrivateRoom(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "room", map[string]any{"title": "hideout", "private": true, "code": "shh"})

	// The code is disclosed to the creator alone.
	env := readEvent(t, conn, "room")
	var p service.RoomPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "hideout", p.Title)
	assert.True(t, p.Private)
	assert.Equal(t, "shh", p.Code)
}

func TestClient_CreatePublicRoomAnnouncedWithoutCode(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "room", map[string]any{"title": "general", "private": false})

	env := readEvent(t, conn, "room")
	var p service.RoomPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "general", p.Title)
	assert.False(t, p.Private)
	assert.Empty(t, p.Code)
}

func TestClient_JoinReplaysHistory(t *testing.T) {
	f := newClientFixture(t, nil)
	first := testutil.NewTestMessage("room-9", "first")
	second := testutil.NewTestMessage("room-9", "second")
	f.messages.Messages = []*domain.Message{first, second}

	conn := f.dial(t)
	sendEvent(t, conn, "join", "room-9")

	env := readEvent(t, conn, "joined")
	var joined string
	require.NoError(t, json.Unmarshal(env.Data, &joined))
	assert.Equal(t, "room-9", joined)

	env = readEvent(t, conn, "message")
	var p service.MessagePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "first", p.Message)

	env = readEvent(t, conn, "message")
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "second", p.Message)
}

func TestClient_JoinPrivateWrongCodeIsSilent(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "join private", "no-such-code")

	// No reply at all; the next readable frame times out.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		assert.Equal(t, "users", env.Event, "unexpected reply to a code miss: %s", string(frame))
	}
}

func TestClient_ReportAck(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "report msg", map[string]string{
		"msgid":   "msg-1",
		"roomid":  "room-1",
		"message": "offensive",
	})

	env := readEvent(t, conn, "event")
	var p service.NoticePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Message reported", p.Message)
	assert.Len(t, f.reports.Reports, 1)
}

func TestClient_AdminCommand(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "admin handler", map[string]string{
		"adminpass": "secret",
		"command":   "lockall",
	})

	env := readEvent(t, conn, "event")
	var p service.NoticePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Chat has been locked", p.Message)
	assert.Equal(t, domain.StatusLocked, p.Status)
	assert.True(t, f.state.Locked())
}

func TestClient_AdminBadPasswordIgnored(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "admin handler", map[string]string{
		"adminpass": "wrong",
		"command":   "lockall",
	})

	time.Sleep(200 * time.Millisecond)
	assert.False(t, f.state.Locked())
}

func TestClient_PassChange(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "passchange", map[string]string{
		"adminpass": "secret",
		"newpass":   "rotated",
	})

	env := readEvent(t, conn, "event")
	var p service.NoticePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Success", p.Message)
	assert.Equal(t, "rotated", f.state.Password())
	assert.Equal(t, "rotated", f.settings.Password)
}

func TestClient_UpdateMaxRooms(t *testing.T) {
	f := newClientFixture(t, nil)
	conn := f.dial(t)

	sendEvent(t, conn, "updateMaxRooms", map[string]any{
		"adminpass": "secret",
		"maxRooms":  3,
	})

	env := readEvent(t, conn, "event")
	var p service.NoticePayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Success", p.Message)
	assert.Equal(t, 3, f.state.MaxRooms())
}

func TestMarshalEnvelope(t *testing.T) {
	t.Run("with_payload", func(t *testing.T) {
		data, err := marshalEnvelope("users", 3)
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"users","data":3}`, string(data))
	})

	t.Run("nil_payload_omits_data", func(t *testing.T) {
		data, err := marshalEnvelope("purge", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"purge"}`, string(data))
	})
}
