package whatsapp

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow/types"

	"github.com/keshon/wabot/internal/command"
)

// IsAdmin reports whether the user is an admin of the group. Part of the
// command.Gatekeeper contract; callers treat an error as "not admin".
func (b *Bot) IsAdmin(ctx context.Context, groupID, userID string) (bool, error) {
	jid, err := types.ParseJID(groupID)
	if err != nil {
		return false, fmt.Errorf("invalid group id %q: %w", groupID, err)
	}

	info, err := b.client.GetGroupInfo(ctx, jid)
	if err != nil {
		return false, fmt.Errorf("failed to fetch group info: %w", err)
	}

	user, err := types.ParseJID(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	for _, p := range info.Participants {
		if p.JID.User == user.User {
			return p.IsAdmin || p.IsSuperAdmin, nil
		}
	}
	return false, nil
}

// IsBotAdmin reports whether the connected account is an admin of the group.
func (b *Bot) IsBotAdmin(ctx context.Context, groupID string) (bool, error) {
	self := b.client.Store.ID
	if self == nil {
		return false, fmt.Errorf("not logged in")
	}
	return b.IsAdmin(ctx, groupID, self.ToNonAD().String())
}

// GroupMetadata fetches group details for command handlers.
func (b *Bot) GroupMetadata(ctx context.Context, groupID string) (*command.GroupMetadata, error) {
	jid, err := types.ParseJID(groupID)
	if err != nil {
		return nil, fmt.Errorf("invalid group id %q: %w", groupID, err)
	}

	info, err := b.client.GetGroupInfo(ctx, jid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group info: %w", err)
	}

	meta := &command.GroupMetadata{
		ID:          info.JID.String(),
		Subject:     info.Name,
		Description: info.Topic,
		Created:     info.GroupCreated,
	}
	for _, p := range info.Participants {
		meta.Participants = append(meta.Participants, command.GroupParticipant{
			ID:         p.JID.ToNonAD().String(),
			Admin:      p.IsAdmin,
			SuperAdmin: p.IsSuperAdmin,
		})
	}
	return meta, nil
}
