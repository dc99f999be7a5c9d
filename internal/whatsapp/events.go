package whatsapp

import (
	"context"
	"log"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/keshon/wabot/internal/command"
)

func (b *Bot) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		b.handleMessage(v)
	case *events.Connected:
		log.Println("[INFO] Connected to WhatsApp")
	case *events.Disconnected:
		log.Println("[WARN] Disconnected from WhatsApp")
	case *events.LoggedOut:
		log.Println("[WARN] Logged out from WhatsApp, delete the session to relink")
	}
}

// handleMessage translates a whatsmeow event into the core's Incoming shape.
// Events arrive one at a time in order; the dispatcher runs synchronously
// here, so messages are processed sequentially.
func (b *Bot) handleMessage(evt *events.Message) {
	if b.Handler == nil {
		return
	}

	msg := &command.Incoming{
		ID:       string(evt.Info.ID),
		Sender:   evt.Info.Sender.ToNonAD().String(),
		Chat:     evt.Info.Chat.String(),
		IsGroup:  evt.Info.IsGroup,
		FromSelf: evt.Info.IsFromMe,
		Text:     extractText(evt.Message),
		Raw:      evt,
	}

	b.Handler(context.Background(), msg)
}

// extractText pulls the usable text out of the supported message kinds:
// plain and extended text, plus captions on media.
func extractText(msg *waE2E.Message) string {
	switch {
	case msg == nil:
		return ""
	case msg.GetConversation() != "":
		return msg.GetConversation()
	case msg.GetExtendedTextMessage().GetText() != "":
		return msg.GetExtendedTextMessage().GetText()
	case msg.GetImageMessage().GetCaption() != "":
		return msg.GetImageMessage().GetCaption()
	case msg.GetVideoMessage().GetCaption() != "":
		return msg.GetVideoMessage().GetCaption()
	case msg.GetDocumentMessage().GetCaption() != "":
		return msg.GetDocumentMessage().GetCaption()
	}
	return ""
}
