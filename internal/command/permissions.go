package command

import (
	"context"
	"log"
	"strings"
)

// Reason is the structured denial code surfaced to the user as a specific
// message. Denials are expected control flow, never logged as errors.
type Reason string

const (
	ReasonOwnerOnly        Reason = "owner_only"
	ReasonGroupOnly        Reason = "group_only"
	ReasonPrivateOnly      Reason = "private_only"
	ReasonAdminOnly        Reason = "admin_only"
	ReasonBotAdminRequired Reason = "bot_admin_required"
)

// Gatekeeper answers admin-status lookups against the messaging collaborator.
// Lookups are I/O and may fail; a failure is treated as "not admin".
type Gatekeeper interface {
	IsAdmin(ctx context.Context, groupID, userID string) (bool, error)
	IsBotAdmin(ctx context.Context, groupID string) (bool, error)
}

// Permissions resolves whether a sender may invoke a command, given the static
// owner list and group-admin status from the Gatekeeper.
type Permissions struct {
	owners map[string]bool
	gate   Gatekeeper
}

// NewPermissions builds an evaluator. Owner entries are matched against the
// bare identity (anything before '@' in the sender id).
func NewPermissions(owners []string, gate Gatekeeper) *Permissions {
	set := make(map[string]bool, len(owners))
	for _, o := range owners {
		o = bareID(strings.TrimSpace(o))
		if o != "" {
			set[o] = true
		}
	}
	return &Permissions{owners: set, gate: gate}
}

// IsOwner reports whether the sender is in the static owner list.
func (p *Permissions) IsOwner(userID string) bool {
	return p.owners[bareID(userID)]
}

// Evaluate checks the command's gating flags in fixed order, short-circuiting
// on the first failure so the most specific restriction is surfaced.
func (p *Permissions) Evaluate(ctx context.Context, cmd *Command, sender string, isGroup bool, groupID string) (bool, Reason) {
	if cmd.Owner && !p.IsOwner(sender) {
		return false, ReasonOwnerOnly
	}

	if cmd.Group && !isGroup {
		return false, ReasonGroupOnly
	}

	if cmd.Private && isGroup {
		return false, ReasonPrivateOnly
	}

	if cmd.Admin && isGroup {
		admin, err := p.gate.IsAdmin(ctx, groupID, sender)
		if err != nil {
			log.Printf("[WARN] Admin lookup failed for %s in %s: %v", sender, groupID, err)
			admin = false
		}
		if !admin && !p.IsOwner(sender) {
			return false, ReasonAdminOnly
		}
	}

	if cmd.BotAdmin && isGroup {
		admin, err := p.gate.IsBotAdmin(ctx, groupID)
		if err != nil {
			log.Printf("[WARN] Bot admin lookup failed in %s: %v", groupID, err)
			admin = false
		}
		if !admin {
			return false, ReasonBotAdminRequired
		}
	}

	return true, ""
}

// bareID strips the server part of a messaging identity, e.g.
// "628000000000@s.whatsapp.net" -> "628000000000".
func bareID(id string) string {
	if i := strings.IndexByte(id, '@'); i >= 0 {
		return id[:i]
	}
	return id
}
