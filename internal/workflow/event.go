// Package workflow implements the content-approval workflow: identity
// resolution, the submission lifecycle state machine, and the router that
// turns inbound chat events into state transitions and notifications.
package workflow

import (
	"context"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
)

// EventKind classifies an inbound chat event.
type EventKind string

const (
	EventText   EventKind = "text"
	EventMedia  EventKind = "media"
	EventButton EventKind = "button"
)

// Event is one inbound chat event as delivered by the transport.
type Event struct {
	ActorID string
	Kind    EventKind

	// Text message fields
	Text             string
	ReplyToMessageID int // 0 when the message is not a reply

	// Media message fields
	Media   models.MediaRef
	Caption string

	// Button press fields
	MessageID    int    // message carrying the pressed button
	CallbackData string // encoded Callback payload
}

// Action is one button offered to a recipient. Data is an encoded
// Callback payload that comes back verbatim when the button is pressed.
type Action struct {
	Label string
	Data  string
}

// Keyboard is rows of actions attached to a message. A nil Keyboard
// means no actions (and, for edits, removal of existing actions).
type Keyboard [][]Action

// Row builds a single-row keyboard.
func Row(actions ...Action) Keyboard {
	return Keyboard{actions}
}

// Notifier is the outbound side of the chat transport. Message references
// are (recipient, messageID) pairs assigned by the transport.
type Notifier interface {
	// SendText delivers a text message and returns its message ID.
	SendText(ctx context.Context, recipient, text string, kb Keyboard) (int, error)
	// SendMedia delivers stored media with a caption and returns the
	// message ID of the delivered copy.
	SendMedia(ctx context.Context, recipient string, media models.MediaRef, caption string, kb Keyboard) (int, error)
	// EditActions replaces the actions of a prior message; nil removes them.
	EditActions(ctx context.Context, recipient string, messageID int, kb Keyboard) error
	// EditText replaces the text (and actions) of a prior message.
	EditText(ctx context.Context, recipient string, messageID int, text string, kb Keyboard) error
}
