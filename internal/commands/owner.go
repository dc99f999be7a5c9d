package commands

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/keshon/wabot/internal/command"
	"github.com/keshon/wabot/pkg/retrylimit"
	"github.com/keshon/wabot/pkg/util"
)

const userServer = "s.whatsapp.net"

// normalizeUserID turns a typed phone number into a full sender identity,
// keeping ids that already carry a server part.
func normalizeUserID(arg string) string {
	if strings.ContainsRune(arg, '@') {
		return arg
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, arg)
	if digits == "" {
		return ""
	}
	return digits + "@" + userServer
}

func ownerCommands(d *Deps) []*command.Command {
	return []*command.Command{
		{
			Name:        "block",
			Triggers:    []string{"block"},
			Category:    "owner",
			Description: "Block a user from using the bot",
			Usage:       "<user_id>",
			Example:     "628xxxxxxxxx",
			Owner:       true,
			Query:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				id := normalizeUserID(inv.Args[0])
				if id == "" {
					return inv.Reply("❌ Please provide a valid user ID.")
				}
				d.Store.SetBlocked(id, true)
				return inv.Reply(fmt.Sprintf("✅ User %s has been blocked.", strings.SplitN(id, "@", 2)[0]))
			},
		},
		{
			Name:        "unblock",
			Triggers:    []string{"unblock"},
			Category:    "owner",
			Description: "Unblock a user",
			Usage:       "<user_id>",
			Example:     "628xxxxxxxxx",
			Owner:       true,
			Query:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				id := normalizeUserID(inv.Args[0])
				if id == "" {
					return inv.Reply("❌ Please provide a valid user ID.")
				}
				d.Store.SetBlocked(id, false)
				return inv.Reply(fmt.Sprintf("✅ User %s has been unblocked.", strings.SplitN(id, "@", 2)[0]))
			},
		},
		{
			Name:        "blocklist",
			Triggers:    []string{"blocklist"},
			Category:    "owner",
			Description: "Show list of blocked users",
			Owner:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				blocked := d.Store.BlockedUsers()
				if len(blocked) == 0 {
					return inv.Reply("✅ No blocked users.")
				}
				var b strings.Builder
				b.WriteString("╭─「 *Blocked Users* 」\n")
				for _, u := range blocked {
					fmt.Fprintf(&b, "│ %s\n", strings.SplitN(u.ID, "@", 2)[0])
				}
				b.WriteString("╰────────────────────\n\n")
				fmt.Fprintf(&b, "Total: %d blocked users", len(blocked))
				return inv.Reply(b.String())
			},
		},
		{
			Name:        "broadcast",
			Triggers:    []string{"broadcast", "bc"},
			Aliases:     []string{"bcall"},
			Category:    "owner",
			Description: "Broadcast message to all users and groups",
			Usage:       "<text>",
			Example:     "Important announcement!",
			Owner:       true,
			Query:       true,
			Cooldown:    30,
			Run: func(ctx context.Context, inv *command.Context) error {
				targets := append(d.Store.ListUserIDs(), d.Store.ListGroupIDs()...)
				text := fmt.Sprintf("📢 *Broadcast Message*\n\n%s", inv.Text)

				// Paced so a large recipient list cannot trip the provider's
				// spam heuristics. Per-target failures are counted, not fatal.
				lim := retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5)
				var sent, failed atomic.Int64
				_ = util.Parallel(ctx, targets, 3, func(ctx context.Context, target string) error {
					err := retrylimit.WithRetryMax(ctx, func() error {
						return d.Messenger.SendText(ctx, target, text)
					}, lim, 3)
					if err != nil {
						failed.Add(1)
					} else {
						sent.Add(1)
					}
					return nil
				})
				return inv.Reply(fmt.Sprintf("📢 Broadcast finished.\n✅ Sent: %d\n❌ Failed: %d", sent.Load(), failed.Load()))
			},
		},
		{
			Name:        "cleanup",
			Triggers:    []string{"cleanup"},
			Category:    "owner",
			Description: "Remove users inactive for over 30 days",
			Owner:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				removed := d.Store.Cleanup(30 * 24 * time.Hour)
				return inv.Reply(fmt.Sprintf("🧹 Cleaned %d inactive users.", removed))
			},
		},
		{
			Name:        "sweep",
			Triggers:    []string{"sweep"},
			Category:    "owner",
			Description: "Drop expired command cooldown entries",
			Owner:       true,
			Hidden:      true,
			Run: func(ctx context.Context, inv *command.Context) error {
				removed := d.Cooldowns.Sweep(command.DefaultRetention)
				return inv.Reply(fmt.Sprintf("🧹 Swept %d expired cooldown entries, %d remain.", removed, d.Cooldowns.Len()))
			},
		},
		{
			Name:        "dbstats",
			Triggers:    []string{"dbstats"},
			Category:    "owner",
			Description: "Show datastore statistics",
			Owner:       true,
			Hidden:      true,
			Run: func(ctx context.Context, inv *command.Context) error {
				return inv.Reply(fmt.Sprintf("💾 Datastore: %s", d.Store.Describe()))
			},
		},
	}
}
