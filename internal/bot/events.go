// internal/bot/events.go
package bot

import "time"

// Event is one classified inbound chat interaction.
type Event interface {
	GetUserID() int64
	GetTimestamp() time.Time
}

// CommandEvent is a slash command with its arguments, e.g. /setpair <address>.
type CommandEvent struct {
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Args      []string  `json:"args,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e CommandEvent) GetUserID() int64 {
	return e.UserID
}

func (e CommandEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// ButtonEvent is an inline keyboard press carrying its callback token.
type ButtonEvent struct {
	UserID    int64     `json:"user_id"`
	Token     string    `json:"token"`
	Timestamp time.Time `json:"timestamp"`
}

func (e ButtonEvent) GetUserID() int64 {
	return e.UserID
}

func (e ButtonEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// TextEvent is a free-text message. It only has meaning while the user's
// session is waiting for typed input.
type TextEvent struct {
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (e TextEvent) GetUserID() int64 {
	return e.UserID
}

func (e TextEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// Button is one inline keyboard button with the token sent back on press.
type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Reply is one outbound message. Keyboard rows and the photo are optional;
// a reply with only PhotoURL set is sent as a bare photo.
type Reply struct {
	Text     string     `json:"text,omitempty"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
	PhotoURL string     `json:"photo_url,omitempty"`
}
