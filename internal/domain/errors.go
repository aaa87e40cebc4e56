package domain

// Event status codes carried on user-visible rejections. Absence of a
// status marks an informational event.
const (
	StatusLocked   = 1
	StatusRejected = 2
)

// Rejection is a user-visible refusal of a client event. The websocket
// boundary converts it into an `event` payload with the given status;
// every other error is logged and swallowed there.
type Rejection struct {
	Status int
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

var (
	ErrMessageBlocked = &Rejection{StatusRejected, "Message contains a blocked phrase"}
	ErrMessageTooLong = &Rejection{StatusRejected, "Too many characters in message (200 max)"}
	ErrTitleBlocked   = &Rejection{StatusRejected, "Room name contains a blocked phrase"}
	ErrTitleTooLong   = &Rejection{StatusRejected, "Too many characters in room name (25 max)"}
	ErrTooManyRooms   = &Rejection{StatusRejected, "Too many rooms"}
	ErrChatLocked     = &Rejection{StatusLocked, "Chat has been locked"}
)
