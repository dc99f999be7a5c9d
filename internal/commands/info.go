package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/wabot/internal/command"
	"github.com/keshon/wabot/internal/version"
	"github.com/keshon/wabot/pkg/util"
)

func infoCommands(d *Deps) []*command.Command {
	return []*command.Command{
		{
			Name:        "ping",
			Triggers:    []string{"ping"},
			Category:    "info",
			Description: "Check that the bot is alive",
			Run: func(ctx context.Context, inv *command.Context) error {
				return inv.Reply("🏓 Pong!")
			},
		},
		{
			Name:        "botinfo",
			Triggers:    []string{"botinfo", "info"},
			Category:    "info",
			Description: "Display bot information and statistics",
			Run: func(ctx context.Context, inv *command.Context) error {
				stats := d.Store.Stats()
				var b strings.Builder
				fmt.Fprintf(&b, "╭─「 *%s* 」\n", d.BotName)
				fmt.Fprintf(&b, "│ 📱 *Version:* %s\n", version.AppVersion)
				fmt.Fprintf(&b, "│ 📝 *Description:* %s\n", version.AppDescription)
				fmt.Fprintf(&b, "│ ⏱️ *Uptime:* %s\n", util.FormatDuration(time.Since(d.StartedAt)))
				fmt.Fprintf(&b, "│ 👥 *Total Users:* %d\n", stats.Users)
				fmt.Fprintf(&b, "│ 🏘️ *Total Groups:* %d\n", stats.Groups)
				fmt.Fprintf(&b, "│ ⚡ *Commands Used:* %d\n", stats.CommandsUsed)
				b.WriteString("╰────────────────────")
				return inv.Reply(b.String())
			},
		},
		{
			Name:        "help",
			Triggers:    []string{"help", "menu"},
			Aliases:     []string{"h"},
			Category:    "info",
			Description: "Display available commands",
			Usage:       "[command]",
			Example:     "botinfo",
			Run: func(ctx context.Context, inv *command.Context) error {
				if len(inv.Args) > 0 {
					text := d.Registry.Help(inv.Args[0], d.Prefix)
					if text == "" {
						return inv.Reply("❌ Command not found.")
					}
					return inv.Reply(text)
				}

				var b strings.Builder
				fmt.Fprintf(&b, "╭─「 *%s Commands* 」\n", d.BotName)
				for _, cat := range d.Registry.Categories() {
					cmds := d.Registry.List(command.Filter{Category: cat, ExcludeHidden: true})
					if len(cmds) == 0 {
						continue
					}
					fmt.Fprintf(&b, "│\n│ 📂 *%s*\n", strings.ToUpper(cat))
					for _, c := range cmds {
						fmt.Fprintf(&b, "│ %s%s\n", d.Prefix, c.Triggers[0])
					}
				}
				b.WriteString("╰────────────────────\n")
				fmt.Fprintf(&b, "Use %shelp <command> for details", d.Prefix)
				return inv.Reply(b.String())
			},
		},
		{
			Name:        "stats",
			Triggers:    []string{"stats"},
			Category:    "info",
			Description: "Show command usage statistics",
			Run: func(ctx context.Context, inv *command.Context) error {
				agg := d.Registry.AggregateStats()
				var b strings.Builder
				b.WriteString("╭─「 *Command Stats* 」\n")
				fmt.Fprintf(&b, "│ 📋 *Commands:* %d\n", agg.TotalCommands)
				fmt.Fprintf(&b, "│ ⚡ *Total Usage:* %d\n", agg.TotalUsage)
				fmt.Fprintf(&b, "│ ❌ *Total Errors:* %d\n", agg.TotalErrors)
				fmt.Fprintf(&b, "│ ✅ *Success Rate:* %.2f%%\n", agg.SuccessRate)
				b.WriteString("│\n│ 🔝 *Top Commands*\n")
				for i, top := range d.Registry.TopByUsage(5) {
					fmt.Fprintf(&b, "│ %d. %s (%d uses)\n", i+1, top.Name, top.Usage)
				}
				b.WriteString("╰────────────────────")
				return inv.Reply(b.String())
			},
		},
	}
}
