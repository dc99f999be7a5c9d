package whatsapp

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/keshon/wabot/internal/command"
)

// SendText sends a plain text message to a chat.
func (b *Bot) SendText(ctx context.Context, chatID string, text string) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	_, err = b.client.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	return err
}

// Reply sends a text message quoting the originating one when the transport
// payload is available, falling back to a plain send otherwise.
func (b *Bot) Reply(ctx context.Context, msg *command.Incoming, text string) error {
	evt, ok := msg.Raw.(*events.Message)
	if !ok {
		return b.SendText(ctx, msg.Chat, text)
	}

	out := &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
			ContextInfo: &waE2E.ContextInfo{
				StanzaID:      proto.String(string(evt.Info.ID)),
				Participant:   proto.String(evt.Info.Sender.String()),
				QuotedMessage: evt.Message,
			},
		},
	}
	_, err := b.client.SendMessage(ctx, evt.Info.Chat, out)
	return err
}

// React sends an emoji reaction keyed to the originating message.
func (b *Bot) React(ctx context.Context, msg *command.Incoming, emoji string) error {
	evt, ok := msg.Raw.(*events.Message)
	if !ok {
		return fmt.Errorf("message has no transport payload to react to")
	}
	reaction := b.client.BuildReaction(evt.Info.Chat, evt.Info.Sender, evt.Info.ID, emoji)
	_, err := b.client.SendMessage(ctx, evt.Info.Chat, reaction)
	return err
}
