package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/alivehamster/elliptical/internal/domain"
	"github.com/alivehamster/elliptical/internal/moderation"
	"github.com/alivehamster/elliptical/internal/observability"
)

// AdminCommand is one privileged instruction, from the in-band admin
// event or the operator CLI.
type AdminCommand struct {
	Command string
	RoomID  string
	MsgID   string
	Message string
}

// AdminService is the privileged command dispatcher. It mutates the
// shared moderation state, triggers bulk persistence operations and
// issues broad broadcasts. Unrecognized or failing commands are logged
// and dropped; nothing propagates to the caller.
type AdminService struct {
	rooms    domain.RoomRepository
	messages domain.MessageRepository
	reports  domain.ReportRepository
	settings domain.SettingsRepository
	state    *moderation.State
	bus      Broadcaster
	audit    AuditPublisher
}

// NewAdminService creates a new admin service. audit may be nil when
// the moderation audit channel is disabled.
func NewAdminService(
	rooms domain.RoomRepository,
	messages domain.MessageRepository,
	reports domain.ReportRepository,
	settings domain.SettingsRepository,
	state *moderation.State,
	bus Broadcaster,
	audit AuditPublisher,
) *AdminService {
	return &AdminService{
		rooms:    rooms,
		messages: messages,
		reports:  reports,
		settings: settings,
		state:    state,
		bus:      bus,
		audit:    audit,
	}
}

// Authorize checks a submitted admin password. The stored password only
// has to be contained in the submission, so any superstring of the real
// password also authenticates.
func (s *AdminService) Authorize(password string) bool {
	if strings.Contains(password, s.state.Password()) {
		return true
	}
	slog.Warn("invalid admin password attempt")
	return false
}

// Execute dispatches one admin command. sender is the requesting
// connection and may be nil for the operator CLI.
func (s *AdminService) Execute(ctx context.Context, cmd AdminCommand, sender Sender) {
	switch {
	case strings.HasPrefix(cmd.Command, "m "):
		s.bus.ToAll(EventNotice, NoticePayload{
			Message: "Server: " + cmd.Command[2:],
		})

	case cmd.Command == "lockall":
		s.state.SetLocked(true)
		s.bus.ToAll(EventNotice, NoticePayload{
			Message: "Chat has been locked",
			Status:  domain.StatusLocked,
		})
		slog.Info("all chats locked")

	case cmd.Command == "unlockall":
		s.state.SetLocked(false)
		s.bus.ToAll(EventNotice, NoticePayload{Message: "Chat has been unlocked"})
		slog.Info("all chats unlocked")

	case cmd.Command == "refresh":
		s.bus.ToAll(EventReload, nil)

	case cmd.Command == "purge":
		if err := s.rooms.DeletePublic(ctx); err != nil {
			slog.Error("purge failed", slog.String("error", err.Error()))
			return
		}
		s.bus.ToAll(EventPurge, nil)

	case cmd.Command == "deletemsg":
		s.deleteMessage(ctx, cmd)

	case cmd.Command == "deleteroom":
		s.deleteRoom(ctx, cmd)

	case cmd.Command == "highlight":
		s.highlight(ctx, cmd)

	case cmd.Command == "joinreports":
		s.streamReports(ctx, sender)

	default:
		observability.AdminCommands.WithLabelValues("invalid").Inc()
		slog.Warn("invalid admin command", slog.String("command", cmd.Command))
		return
	}

	observability.AdminCommands.WithLabelValues(commandLabel(cmd.Command)).Inc()
	s.publishAudit(ctx, cmd)
}

// deleteMessage removes one message and notifies the room. The delete
// event goes out whether or not the message existed.
func (s *AdminService) deleteMessage(ctx context.Context, cmd AdminCommand) {
	if err := s.messages.Delete(ctx, cmd.MsgID, cmd.RoomID); err != nil {
		slog.Error("message delete failed",
			slog.String("error", err.Error()),
			slog.String("message_id", cmd.MsgID))
		return
	}
	s.bus.ToRoom(cmd.RoomID, EventDelete, DeletePayload{Type: "message", ID: cmd.MsgID})
}

// deleteRoom removes a room (messages cascade) and notifies the lobby.
func (s *AdminService) deleteRoom(ctx context.Context, cmd AdminCommand) {
	if err := s.rooms.Delete(ctx, cmd.RoomID); err != nil {
		slog.Error("room delete failed",
			slog.String("error", err.Error()),
			slog.String("room_id", cmd.RoomID))
		return
	}
	s.bus.ToRoom(HomeRoom, EventDelete, DeletePayload{Type: "room", ID: cmd.RoomID})
}

// highlight either injects a system-authored highlighted message into a
// room, or (without message text) flags the room itself and
// re-announces it to the lobby.
func (s *AdminService) highlight(ctx context.Context, cmd AdminCommand) {
	if cmd.RoomID == "" {
		return
	}

	if cmd.Message != "" {
		msg := &domain.Message{
			ID:          uuid.NewString(),
			RoomID:      cmd.RoomID,
			AuthorID:    domain.SystemAuthorID,
			Content:     cmd.Message,
			Highlighted: true,
		}
		if err := s.messages.Create(ctx, msg); err != nil {
			slog.Error("highlight message failed", slog.String("error", err.Error()))
			return
		}
		s.bus.ToRoom(cmd.RoomID, EventMessage, MessagePayload{
			Message:   msg.Content,
			ID:        msg.ID,
			Highlight: true,
		})
		return
	}

	if err := s.rooms.SetHighlighted(ctx, cmd.RoomID); err != nil {
		slog.Error("highlight room failed", slog.String("error", err.Error()))
		return
	}
	room, err := s.rooms.GetByID(ctx, cmd.RoomID)
	if err != nil {
		slog.Error("highlighted room lookup failed", slog.String("error", err.Error()))
		return
	}
	s.bus.ToRoom(HomeRoom, EventRoom, RoomPayload{
		Title:     room.Title,
		ID:        room.ID,
		Highlight: true,
		Update:    true,
	})
}

// streamReports replays every persisted report, newest first, to the
// requesting connection only.
func (s *AdminService) streamReports(ctx context.Context, sender Sender) {
	if sender == nil {
		slog.Warn("joinreports requires a connected requester")
		return
	}

	sender.Send(EventJoined, "reports")

	reports, err := s.reports.List(ctx)
	if err != nil {
		slog.Error("report listing failed", slog.String("error", err.Error()))
		return
	}
	for _, report := range reports {
		sender.Send(EventReport, ReportPayload{
			MsgID:   report.MessageID,
			RoomID:  report.RoomID,
			Message: report.Content,
			Time:    report.ReportedAt,
		})
	}
}

// ChangePassword persists and swaps the admin password.
func (s *AdminService) ChangePassword(ctx context.Context, newPassword string) error {
	if err := s.settings.SetPassword(ctx, newPassword); err != nil {
		return err
	}
	s.state.SetPassword(newPassword)
	slog.Info("admin password changed")
	return nil
}

// UpdateMaxRooms changes the public-room ceiling for this process. The
// value is not persisted; restarts fall back to configuration.
func (s *AdminService) UpdateMaxRooms(maxRooms int) {
	s.state.SetMaxRooms(maxRooms)
	slog.Info("max rooms updated", slog.Int("max_rooms", maxRooms))
}

func (s *AdminService) publishAudit(ctx context.Context, cmd AdminCommand) {
	if s.audit == nil {
		return
	}
	if err := s.audit.PublishAdminAction(ctx, commandLabel(cmd.Command), cmd.RoomID, cmd.MsgID); err != nil {
		slog.Warn("failed to publish admin audit event",
			slog.String("error", err.Error()))
	}
}

// commandLabel collapses announcement text into a stable label for
// metrics and audit events.
func commandLabel(command string) string {
	if strings.HasPrefix(command, "m ") {
		return "announce"
	}
	return command
}
