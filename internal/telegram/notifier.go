package telegram

import (
	"context"
	"fmt"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
)

// Notifier adapts the Bot API client to the workflow's outbound
// transport interface. Recipients are numeric chat IDs in string form.
type Notifier struct {
	client *Client
}

// NewNotifier wraps a Client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// SendText implements workflow.Notifier.
func (n *Notifier) SendText(ctx context.Context, recipient, text string, kb workflow.Keyboard) (int, error) {
	msg, err := n.client.SendMessage(ctx, recipient, text, toMarkup(kb))
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// SendMedia implements workflow.Notifier. The media is re-sent by its
// stored file ID; the bot never downloads content.
func (n *Notifier) SendMedia(ctx context.Context, recipient string, media models.MediaRef, caption string, kb workflow.Keyboard) (int, error) {
	markup := toMarkup(kb)

	var msg *Message
	var err error
	switch media.Kind {
	case models.MediaPhoto:
		msg, err = n.client.SendPhoto(ctx, recipient, media.FileID, caption, markup)
	case models.MediaVideo:
		msg, err = n.client.SendVideo(ctx, recipient, media.FileID, caption, markup)
	case models.MediaDocument:
		msg, err = n.client.SendDocument(ctx, recipient, media.FileID, caption, markup)
	default:
		return 0, fmt.Errorf("unsupported media kind %q", media.Kind)
	}
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditActions implements workflow.Notifier.
func (n *Notifier) EditActions(ctx context.Context, recipient string, messageID int, kb workflow.Keyboard) error {
	return n.client.EditMessageReplyMarkup(ctx, recipient, messageID, toMarkup(kb))
}

// EditText implements workflow.Notifier.
func (n *Notifier) EditText(ctx context.Context, recipient string, messageID int, text string, kb workflow.Keyboard) error {
	return n.client.EditMessageText(ctx, recipient, messageID, text, toMarkup(kb))
}

// toMarkup converts a workflow keyboard to the wire representation. A
// nil keyboard yields nil markup.
func toMarkup(kb workflow.Keyboard) *InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]InlineKeyboardButton, 0, len(row))
		for _, action := range row {
			buttons = append(buttons, InlineKeyboardButton{
				Text:         action.Label,
				CallbackData: action.Data,
			})
		}
		rows = append(rows, buttons)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
