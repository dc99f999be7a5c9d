package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/wabot/internal/command"
)

var knownGroupSettings = []string{"antilink", "antispam", "commands", "welcome", "goodbye"}

func groupCommands(d *Deps) []*command.Command {
	return []*command.Command{
		{
			Name:        "groupinfo",
			Triggers:    []string{"groupinfo"},
			Aliases:     []string{"ginfo"},
			Category:    "group",
			Description: "Show information about this group",
			Group:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				meta, err := d.Groups.GroupMetadata(ctx, inv.GroupID)
				if err != nil {
					return fmt.Errorf("failed to fetch group metadata: %w", err)
				}

				admins := 0
				for _, p := range meta.Participants {
					if p.Admin || p.SuperAdmin {
						admins++
					}
				}

				var b strings.Builder
				fmt.Fprintf(&b, "╭─「 *%s* 」\n", meta.Subject)
				fmt.Fprintf(&b, "│ 👥 *Members:* %d\n", len(meta.Participants))
				fmt.Fprintf(&b, "│ 👮 *Admins:* %d\n", admins)
				fmt.Fprintf(&b, "│ 📅 *Created:* %s\n", meta.Created.Format("2006-01-02"))
				if meta.Description != "" {
					fmt.Fprintf(&b, "│ 📝 *Description:* %s\n", meta.Description)
				}
				b.WriteString("╰────────────────────")
				return inv.Reply(b.String())
			},
		},
		{
			Name:        "groupset",
			Triggers:    []string{"groupset"},
			Category:    "group",
			Description: "Toggle a group setting",
			Usage:       "<setting> <on|off>",
			Example:     "welcome on",
			Group:       true,
			Admin:       true,
			Query:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				if len(inv.Args) < 2 {
					return inv.Reply(fmt.Sprintf("❌ Usage: %sgroupset <setting> <on|off>\nSettings: %s",
						inv.Prefix, strings.Join(knownGroupSettings, ", ")))
				}

				name := strings.ToLower(inv.Args[0])
				known := false
				for _, s := range knownGroupSettings {
					if s == name {
						known = true
						break
					}
				}
				if !known {
					return inv.Reply(fmt.Sprintf("❌ Unknown setting %q. Settings: %s", name, strings.Join(knownGroupSettings, ", ")))
				}

				var value bool
				switch strings.ToLower(inv.Args[1]) {
				case "on", "true", "1":
					value = true
				case "off", "false", "0":
					value = false
				default:
					return inv.Reply("❌ Value must be on or off.")
				}

				d.Store.SetGroupSetting(inv.GroupID, name, value)
				state := "disabled"
				if value {
					state = "enabled"
				}
				return inv.Reply(fmt.Sprintf("✅ Setting %q is now %s for this group.", name, state))
			},
		},
	}
}
