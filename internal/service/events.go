package service

import "time"

// HomeRoom is the implicit lobby every connection belongs to. Public
// room announcements and room deletions address this audience.
const HomeRoom = "home"

// Outbound event names
const (
	EventUsers   = "users"
	EventRoom    = "room"
	EventMessage = "message"
	EventJoined  = "joined"
	EventNotice  = "event"
	EventDelete  = "delete"
	EventPurge   = "purge"
	EventReload  = "reload"
	EventReport  = "report"
)

// Broadcaster routes an event to one of the two shared audiences: every
// connection, or the members of a named room. Single-connection replies
// go through a Sender instead; no other audience shapes exist.
type Broadcaster interface {
	ToAll(event string, payload any)
	ToRoom(roomID string, event string, payload any)
}

// Sender delivers an event to one connection.
type Sender interface {
	Send(event string, payload any)
}

// NoticePayload is the `event` payload: a user-visible notice with an
// optional severity status (1 lock, 2 rejection, absent informational).
type NoticePayload struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// RoomPayload is the `room` payload sent on creation, replay, private
// resolution and highlight updates.
type RoomPayload struct {
	Title     string `json:"title"`
	ID        string `json:"id"`
	Private   bool   `json:"private,omitempty"`
	Code      string `json:"code,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	Update    bool   `json:"update,omitempty"`
}

// MessagePayload is the `message` payload for live fan-out and replay.
type MessagePayload struct {
	Message   string `json:"message"`
	ID        string `json:"id"`
	Highlight bool   `json:"highlight,omitempty"`
}

// DeletePayload is the `delete` payload; Type is "message" or "room".
type DeletePayload struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ReportPayload is the `report` payload streamed to moderators.
type ReportPayload struct {
	MsgID   string    `json:"msgid"`
	RoomID  string    `json:"roomid"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}
