package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alivehamster/elliptical/internal/domain"
	"github.com/alivehamster/elliptical/internal/moderation"
	"github.com/alivehamster/elliptical/internal/service"
	"github.com/alivehamster/elliptical/internal/testutil"
)

type adminFixture struct {
	rooms    *testutil.MockRoomRepository
	messages *testutil.MockMessageRepository
	reports  *testutil.MockReportRepository
	settings *testutil.MockSettingsRepository
	state    *moderation.State
	bus      *testutil.RecordingBus
	admin    *service.AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		rooms:    testutil.NewMockRoomRepository(),
		messages: testutil.NewMockMessageRepository(),
		reports:  testutil.NewMockReportRepository(),
		settings: testutil.NewMockSettingsRepository(),
		state:    moderation.NewState("secret", 25, nil),
		bus:      &testutil.RecordingBus{},
	}
	f.admin = service.NewAdminService(f.rooms, f.messages, f.reports, f.settings, f.state, f.bus, nil)
	return f
}

func TestAuthorize(t *testing.T) {
	f := newAdminFixture()

	assert.True(t, f.admin.Authorize("secret"))
	// Containment is enough; any superstring of the stored password works.
	assert.True(t, f.admin.Authorize("xxsecretxx"))
	assert.False(t, f.admin.Authorize("wrong"))
	assert.False(t, f.admin.Authorize("secre"))
}

func TestExecute_Announce(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "m maintenance at noon"}, nil)

	emissions := f.bus.ByEvent(service.EventNotice)
	require.Len(t, emissions, 1)
	assert.Equal(t, "global", emissions[0].Audience)
	payload, ok := emissions[0].Payload.(service.NoticePayload)
	require.True(t, ok)
	assert.Equal(t, "Server: maintenance at noon", payload.Message)
	assert.Zero(t, payload.Status)
}

func TestExecute_LockUnlock(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "lockall"}, nil)
	assert.True(t, f.state.Locked())

	emissions := f.bus.ByEvent(service.EventNotice)
	require.Len(t, emissions, 1)
	payload := emissions[0].Payload.(service.NoticePayload)
	assert.Equal(t, "Chat has been locked", payload.Message)
	assert.Equal(t, domain.StatusLocked, payload.Status)

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "unlockall"}, nil)
	assert.False(t, f.state.Locked())

	emissions = f.bus.ByEvent(service.EventNotice)
	require.Len(t, emissions, 2)
	payload = emissions[1].Payload.(service.NoticePayload)
	assert.Equal(t, "Chat has been unlocked", payload.Message)
	assert.Zero(t, payload.Status)
}

func TestExecute_Refresh(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "refresh"}, nil)

	emissions := f.bus.ByEvent(service.EventReload)
	require.Len(t, emissions, 1)
	assert.Equal(t, "global", emissions[0].Audience)
}

func TestExecute_Purge(t *testing.T) {
	f := newAdminFixture()
	public := testutil.NewTestRoom("general")
	private := testutil.NewTestPrivateRoom("hideout", "code")
	f.rooms.Rooms[public.ID] = public
	f.rooms.Rooms[private.ID] = private

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "purge"}, nil)

	// Public rooms are wiped, private rooms survive.
	assert.Len(t, f.rooms.Rooms, 1)
	assert.Contains(t, f.rooms.Rooms, private.ID)
	assert.Len(t, f.bus.ByEvent(service.EventPurge), 1)
}

func TestExecute_DeleteMessage(t *testing.T) {
	f := newAdminFixture()
	msg := testutil.NewTestMessage("room-1", "delete me")
	f.messages.Messages = []*domain.Message{msg}

	f.admin.Execute(context.Background(), service.AdminCommand{
		Command: "deletemsg",
		RoomID:  "room-1",
		MsgID:   msg.ID,
	}, nil)

	assert.Empty(t, f.messages.Messages)

	emissions := f.bus.ByEvent(service.EventDelete)
	require.Len(t, emissions, 1)
	assert.Equal(t, "room-1", emissions[0].RoomID)
	payload := emissions[0].Payload.(service.DeletePayload)
	assert.Equal(t, "message", payload.Type)
	assert.Equal(t, msg.ID, payload.ID)
}

func TestExecute_DeleteMessage_Absent(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{
		Command: "deletemsg",
		RoomID:  "room-1",
		MsgID:   "no-such-message",
	}, nil)

	// The delete event goes out whether or not the message existed.
	assert.Len(t, f.bus.ByEvent(service.EventDelete), 1)
}

func TestExecute_DeleteRoom(t *testing.T) {
	f := newAdminFixture()
	room := testutil.NewTestRoom("general")
	f.rooms.Rooms[room.ID] = room

	f.admin.Execute(context.Background(), service.AdminCommand{
		Command: "deleteroom",
		RoomID:  room.ID,
	}, nil)

	assert.Empty(t, f.rooms.Rooms)

	emissions := f.bus.ByEvent(service.EventDelete)
	require.Len(t, emissions, 1)
	assert.Equal(t, service.HomeRoom, emissions[0].RoomID)
	payload := emissions[0].Payload.(service.DeletePayload)
	assert.Equal(t, "room", payload.Type)
	assert.Equal(t, room.ID, payload.ID)
}

func TestExecute_HighlightWithMessage(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{
		Command: "highlight",
		RoomID:  "room-1",
		Message: "look here",
	}, nil)

	require.Len(t, f.messages.Messages, 1)
	stored := f.messages.Messages[0]
	assert.Equal(t, domain.SystemAuthorID, stored.AuthorID)
	assert.True(t, stored.Highlighted)

	emissions := f.bus.ByEvent(service.EventMessage)
	require.Len(t, emissions, 1)
	assert.Equal(t, "room-1", emissions[0].RoomID)
	payload := emissions[0].Payload.(service.MessagePayload)
	assert.Equal(t, "look here", payload.Message)
	assert.True(t, payload.Highlight)
}

func TestExecute_HighlightRoom(t *testing.T) {
	f := newAdminFixture()
	room := testutil.NewTestRoom("general")
	f.rooms.Rooms[room.ID] = room

	f.admin.Execute(context.Background(), service.AdminCommand{
		Command: "highlight",
		RoomID:  room.ID,
	}, nil)

	assert.True(t, room.Highlighted)

	emissions := f.bus.ByEvent(service.EventRoom)
	require.Len(t, emissions, 1)
	assert.Equal(t, service.HomeRoom, emissions[0].RoomID)
	payload := emissions[0].Payload.(service.RoomPayload)
	assert.Equal(t, room.Title, payload.Title)
	assert.True(t, payload.Highlight)
	assert.True(t, payload.Update)
}

func TestExecute_HighlightWithoutRoom(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "highlight"}, nil)

	assert.Empty(t, f.messages.Messages)
	assert.Empty(t, f.bus.Emissions)
}

func TestExecute_JoinReports(t *testing.T) {
	f := newAdminFixture()
	older := testutil.NewTestReport("msg-1", "room-1", "first")
	newer := testutil.NewTestReport("msg-2", "room-1", "second")
	f.reports.Reports = []*domain.Report{older, newer}

	sender := &testutil.RecordingSender{}
	f.admin.Execute(context.Background(), service.AdminCommand{Command: "joinreports"}, sender)

	require.Len(t, sender.Emissions, 3)
	assert.Equal(t, service.EventJoined, sender.Emissions[0].Event)
	assert.Equal(t, "reports", sender.Emissions[0].Payload)

	// Newest first.
	first := sender.Emissions[1].Payload.(service.ReportPayload)
	assert.Equal(t, "msg-2", first.MsgID)
	second := sender.Emissions[2].Payload.(service.ReportPayload)
	assert.Equal(t, "msg-1", second.MsgID)
}

func TestExecute_JoinReports_NilSender(t *testing.T) {
	f := newAdminFixture()

	// CLI callers have no connection; the command is logged and dropped.
	f.admin.Execute(context.Background(), service.AdminCommand{Command: "joinreports"}, nil)
	assert.Empty(t, f.bus.Emissions)
}

func TestExecute_Invalid(t *testing.T) {
	f := newAdminFixture()

	f.admin.Execute(context.Background(), service.AdminCommand{Command: "frobnicate"}, nil)
	assert.Empty(t, f.bus.Emissions)
}

func TestChangePassword(t *testing.T) {
	f := newAdminFixture()

	require.NoError(t, f.admin.ChangePassword(context.Background(), "rotated"))
	assert.Equal(t, "rotated", f.settings.Password)
	assert.Equal(t, "rotated", f.state.Password())
	assert.True(t, f.admin.Authorize("rotated"))
	assert.False(t, f.admin.Authorize("secret"))
}

func TestChangePassword_StoreError(t *testing.T) {
	f := newAdminFixture()
	f.settings.SetPasswordFunc = func(ctx context.Context, password string) error {
		return assert.AnError
	}

	err := f.admin.ChangePassword(context.Background(), "rotated")
	require.Error(t, err)
	// The live password is untouched when persistence fails.
	assert.Equal(t, "secret", f.state.Password())
}

func TestUpdateMaxRooms(t *testing.T) {
	f := newAdminFixture()

	f.admin.UpdateMaxRooms(3)
	assert.Equal(t, 3, f.state.MaxRooms())
}
