// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the chat relay.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/alivehamster/elliptical/internal/domain"
)

// MockRoomRepository implements domain.RoomRepository for testing
type MockRoomRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc          func(ctx context.Context, room *domain.Room) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Room, error)
	GetByAccessCodeFunc func(ctx context.Context, code string) (*domain.Room, error)
	ListPublicFunc      func(ctx context.Context) ([]*domain.Room, error)
	CountPublicFunc     func(ctx context.Context) (int, error)
	DeleteFunc          func(ctx context.Context, id string) error
	DeletePublicFunc    func(ctx context.Context) error
	SetHighlightedFunc  func(ctx context.Context, id string) error

	// In-memory storage for simple tests
	Rooms map[string]*domain.Room
}

// NewMockRoomRepository creates a new MockRoomRepository with initialized maps
func NewMockRoomRepository() *MockRoomRepository {
	return &MockRoomRepository{
		Rooms: make(map[string]*domain.Room),
	}
}

func (m *MockRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, room)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	m.Rooms[room.ID] = room
	return nil
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if room, ok := m.Rooms[id]; ok {
		return room, nil
	}
	return nil, domain.ErrRoomNotFound
}

func (m *MockRoomRepository) GetByAccessCode(ctx context.Context, code string) (*domain.Room, error) {
	if m.GetByAccessCodeFunc != nil {
		return m.GetByAccessCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, room := range m.Rooms {
		if room.Private && room.AccessCode == code {
			return room, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

func (m *MockRoomRepository) ListPublic(ctx context.Context) ([]*domain.Room, error) {
	if m.ListPublicFunc != nil {
		return m.ListPublicFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]*domain.Room, 0, len(m.Rooms))
	for _, room := range m.Rooms {
		if !room.Private {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (m *MockRoomRepository) CountPublic(ctx context.Context) (int, error) {
	if m.CountPublicFunc != nil {
		return m.CountPublicFunc(ctx)
	}
	rooms, _ := m.ListPublic(ctx)
	return len(rooms), nil
}

func (m *MockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Rooms, id)
	return nil
}

func (m *MockRoomRepository) DeletePublic(ctx context.Context) error {
	if m.DeletePublicFunc != nil {
		return m.DeletePublicFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, room := range m.Rooms {
		if !room.Private {
			delete(m.Rooms, id)
		}
	}
	return nil
}

func (m *MockRoomRepository) SetHighlighted(ctx context.Context, id string) error {
	if m.SetHighlightedFunc != nil {
		return m.SetHighlightedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if room, ok := m.Rooms[id]; ok {
		room.Highlighted = true
	}
	return nil
}

// MockMessageRepository implements domain.MessageRepository for testing
type MockMessageRepository struct {
	mu sync.RWMutex

	CreateFunc     func(ctx context.Context, message *domain.Message) error
	ListByRoomFunc func(ctx context.Context, roomID string) ([]*domain.Message, error)
	DeleteFunc     func(ctx context.Context, id, roomID string) error

	Messages []*domain.Message
}

// NewMockMessageRepository creates a new MockMessageRepository
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	m.Messages = append(m.Messages, message)
	return nil
}

func (m *MockMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Message, error) {
	if m.ListByRoomFunc != nil {
		return m.ListByRoomFunc(ctx, roomID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := make([]*domain.Message, 0)
	for _, msg := range m.Messages {
		if msg.RoomID == roomID {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (m *MockMessageRepository) Delete(ctx context.Context, id, roomID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, roomID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.Messages {
		if msg.ID == id && msg.RoomID == roomID {
			m.Messages = append(m.Messages[:i], m.Messages[i+1:]...)
			return nil
		}
	}
	return nil
}

// MockReportRepository implements domain.ReportRepository for testing
type MockReportRepository struct {
	mu sync.RWMutex

	CreateFunc func(ctx context.Context, report *domain.Report) error
	FindFunc   func(ctx context.Context, messageID, roomID string) (*domain.Report, error)
	ListFunc   func(ctx context.Context) ([]*domain.Report, error)

	Reports []*domain.Report
}

// NewMockReportRepository creates a new MockReportRepository
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.Report) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, report)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.Reports {
		if r.MessageID == report.MessageID && r.RoomID == report.RoomID {
			return domain.ErrDuplicateReport
		}
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now()
	}
	m.Reports = append(m.Reports, report)
	return nil
}

func (m *MockReportRepository) Find(ctx context.Context, messageID, roomID string) (*domain.Report, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, messageID, roomID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.Reports {
		if r.MessageID == messageID && r.RoomID == roomID {
			return r, nil
		}
	}
	return nil, domain.ErrReportNotFound
}

func (m *MockReportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first
	reports := make([]*domain.Report, len(m.Reports))
	for i, r := range m.Reports {
		reports[len(m.Reports)-1-i] = r
	}
	return reports, nil
}

// MockSettingsRepository implements domain.SettingsRepository for testing
type MockSettingsRepository struct {
	mu sync.RWMutex

	EnsurePasswordFunc func(ctx context.Context, fallback string) (string, error)
	SetPasswordFunc    func(ctx context.Context, password string) error

	Password string
}

// NewMockSettingsRepository creates a new MockSettingsRepository
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

func (m *MockSettingsRepository) EnsurePassword(ctx context.Context, fallback string) (string, error) {
	if m.EnsurePasswordFunc != nil {
		return m.EnsurePasswordFunc(ctx, fallback)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Password == "" {
		m.Password = fallback
	}
	return m.Password, nil
}

func (m *MockSettingsRepository) SetPassword(ctx context.Context, password string) error {
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, password)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Password = password
	return nil
}
