package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alivehamster/elliptical/internal/domain"
	"github.com/alivehamster/elliptical/internal/moderation"
	"github.com/alivehamster/elliptical/internal/observability"
)

const (
	maxMessageLength = 200
	maxTitleLength   = 25
)

// ChatService mediates every state-changing client event: it validates
// against the shared moderation state and content filter, persists the
// effect, and fans the result out to the right audience. Validation
// failures surface as *domain.Rejection for the boundary to report;
// store failures are wrapped errors the boundary swallows.
type ChatService struct {
	rooms    domain.RoomRepository
	messages domain.MessageRepository
	reports  domain.ReportRepository
	state    *moderation.State
	bus      Broadcaster
	audit    AuditPublisher
}

// NewChatService creates a new chat service. audit may be nil when the
// moderation audit channel is disabled.
func NewChatService(
	rooms domain.RoomRepository,
	messages domain.MessageRepository,
	reports domain.ReportRepository,
	state *moderation.State,
	bus Broadcaster,
	audit AuditPublisher,
) *ChatService {
	return &ChatService{
		rooms:    rooms,
		messages: messages,
		reports:  reports,
		state:    state,
		bus:      bus,
		audit:    audit,
	}
}

// PostMessage validates, persists and fans out one chat message.
// Delivery is global regardless of room scope; membership only gates
// replay-on-join.
func (s *ChatService) PostMessage(ctx context.Context, roomID, authorID, text string) (*domain.Message, error) {
	if moderation.ViolatesPolicy(text, s.state.BlockedTerms()) {
		return nil, domain.ErrMessageBlocked
	}
	if s.state.Locked() {
		return nil, domain.ErrChatLocked
	}
	if len(text) >= maxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	msg := &domain.Message{
		ID:       uuid.NewString(),
		RoomID:   roomID,
		AuthorID: authorID,
		Content:  text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	observability.MessagesPosted.Inc()
	s.bus.ToAll(EventMessage, MessagePayload{Message: msg.Content, ID: msg.ID})
	return msg, nil
}

// CreateRoom validates and persists a new room. Check order is fixed:
// blocked term, lock, room cap, title length. A room ends up private
// only when both the flag and a non-empty access code are supplied.
// Public rooms are announced to the home audience here; private rooms
// are reported back to the creator by the caller.
func (s *ChatService) CreateRoom(ctx context.Context, title string, private bool, code string) (*domain.Room, error) {
	if moderation.ViolatesPolicy(title, s.state.BlockedTerms()) {
		return nil, domain.ErrTitleBlocked
	}
	if s.state.Locked() {
		return nil, domain.ErrChatLocked
	}

	// Count and insert are separate statements; two concurrent
	// creations can both pass and overshoot the cap by one.
	count, err := s.rooms.CountPublic(ctx)
	if err != nil {
		return nil, err
	}
	if count >= s.state.MaxRooms() {
		return nil, domain.ErrTooManyRooms
	}
	if len(title) >= maxTitleLength {
		return nil, domain.ErrTitleTooLong
	}

	room := &domain.Room{
		ID:         uuid.NewString(),
		Title:      title,
		Private:    private && code != "",
		AccessCode: code,
	}
	if !room.Private {
		room.AccessCode = ""
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	observability.RoomsCreated.Inc()
	if !room.Private {
		s.bus.ToRoom(HomeRoom, EventRoom, RoomPayload{Title: room.Title, ID: room.ID})
	}
	return room, nil
}

// ResolvePrivateRoom looks up a private room by exact access code.
// Absence is domain.ErrRoomNotFound, which the boundary drops silently.
func (s *ChatService) ResolvePrivateRoom(ctx context.Context, code string) (*domain.Room, error) {
	return s.rooms.GetByAccessCode(ctx, code)
}

// ListPublicRooms returns the lobby room list in store order.
func (s *ChatService) ListPublicRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.rooms.ListPublic(ctx)
}

// RoomHistory returns a room's messages in ascending creation order.
func (s *ChatService) RoomHistory(ctx context.Context, roomID string) ([]*domain.Message, error) {
	return s.messages.ListByRoom(ctx, roomID)
}

// ReportMessage records a moderation report for a message, deduplicated
// per (message, room) pair. A nil return means the caller should ack
// regardless of whether a duplicate was suppressed.
func (s *ChatService) ReportMessage(ctx context.Context, messageID, roomID, content string) error {
	_, err := s.reports.Find(ctx, messageID, roomID)
	switch {
	case err == nil:
		// Already reported, duplicate suppressed.
		return nil
	case !errors.Is(err, domain.ErrReportNotFound):
		return err
	}

	report := &domain.Report{
		MessageID: messageID,
		RoomID:    roomID,
		Content:   content,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		// A concurrent report winning the insert race is fine.
		if errors.Is(err, domain.ErrDuplicateReport) {
			return nil
		}
		return err
	}

	observability.ReportsFiled.Inc()
	slog.Info("new report filed",
		slog.String("message_id", messageID),
		slog.String("room_id", roomID))

	if s.audit != nil {
		if err := s.audit.PublishReport(ctx, report); err != nil {
			slog.Warn("failed to publish report audit event",
				slog.String("error", err.Error()))
		}
	}
	return nil
}
