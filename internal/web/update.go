package web

import (
	"strconv"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/telegram"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
)

// EventFromUpdate converts a webhook update into a workflow event. The
// second return value is false for update types the workflow does not
// handle (stickers, voice, edited messages and so on).
func EventFromUpdate(u *telegram.Update) (workflow.Event, bool) {
	if u.CallbackQuery != nil {
		cq := u.CallbackQuery
		ev := workflow.Event{
			ActorID:      strconv.FormatInt(cq.From.ID, 10),
			Kind:         workflow.EventButton,
			CallbackData: cq.Data,
		}
		if cq.Message != nil {
			ev.MessageID = cq.Message.MessageID
		}
		return ev, true
	}

	if u.Message == nil {
		return workflow.Event{}, false
	}
	m := u.Message

	actor := strconv.FormatInt(m.Chat.ID, 10)
	if m.From != nil {
		actor = strconv.FormatInt(m.From.ID, 10)
	}

	if media, ok := mediaFrom(m); ok {
		return workflow.Event{
			ActorID: actor,
			Kind:    workflow.EventMedia,
			Media:   media,
			Caption: m.Caption,
		}, true
	}

	if m.Text != "" {
		ev := workflow.Event{
			ActorID: actor,
			Kind:    workflow.EventText,
			Text:    m.Text,
		}
		if m.ReplyToMessage != nil {
			ev.ReplyToMessageID = m.ReplyToMessage.MessageID
		}
		return ev, true
	}

	return workflow.Event{}, false
}

// mediaFrom picks the media reference out of a message. Photos arrive in
// several resolutions; the last entry is the original size.
func mediaFrom(m *telegram.Message) (models.MediaRef, bool) {
	switch {
	case len(m.Photo) > 0:
		return models.MediaRef{Kind: models.MediaPhoto, FileID: m.Photo[len(m.Photo)-1].FileID}, true
	case m.Video != nil:
		return models.MediaRef{Kind: models.MediaVideo, FileID: m.Video.FileID}, true
	case m.Document != nil:
		return models.MediaRef{Kind: models.MediaDocument, FileID: m.Document.FileID}, true
	}
	return models.MediaRef{}, false
}
