package testutil

import "sync"

// Emission is one recorded outbound event.
type Emission struct {
	Audience string // "global", "room" or "client"
	RoomID   string
	Event    string
	Payload  any
}

// RecordingBus implements service.Broadcaster and captures every
// audience-addressed emission for assertions.
type RecordingBus struct {
	mu        sync.Mutex
	Emissions []Emission
}

func (b *RecordingBus) ToAll(event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Emissions = append(b.Emissions, Emission{Audience: "global", Event: event, Payload: payload})
}

func (b *RecordingBus) ToRoom(roomID string, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Emissions = append(b.Emissions, Emission{Audience: "room", RoomID: roomID, Event: event, Payload: payload})
}

// ByEvent returns the recorded emissions with the given event name.
func (b *RecordingBus) ByEvent(event string) []Emission {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Emission, 0)
	for _, e := range b.Emissions {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// RecordingSender implements service.Sender and captures
// single-connection replies.
type RecordingSender struct {
	mu        sync.Mutex
	Emissions []Emission
}

func (s *RecordingSender) Send(event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Emissions = append(s.Emissions, Emission{Audience: "client", Event: event, Payload: payload})
}
