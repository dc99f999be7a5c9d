package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/wabot/internal/command"
)

func adminCommands(d *Deps) []*command.Command {
	return []*command.Command{
		{
			Name:        "enable",
			Triggers:    []string{"enable"},
			Category:    "admin",
			Description: "Enable a disabled command",
			Usage:       "<command_name>",
			Example:     "ping",
			Admin:       true,
			Query:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				c := d.Registry.Resolve(inv.Args[0])
				if c == nil {
					return inv.Reply("❌ Command not found.")
				}
				if d.Registry.Enabled(c.Name) {
					return inv.Reply(fmt.Sprintf("✅ Command %q is already enabled.", c.Name))
				}
				d.Registry.SetEnabled(c.Name, true)
				return inv.Reply(fmt.Sprintf("✅ Command %q has been enabled.", c.Name))
			},
		},
		{
			Name:        "disable",
			Triggers:    []string{"disable"},
			Category:    "admin",
			Description: "Disable an active command",
			Usage:       "<command_name>",
			Example:     "ping",
			Admin:       true,
			Query:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				c := d.Registry.Resolve(inv.Args[0])
				if c == nil {
					return inv.Reply("❌ Command not found.")
				}
				if c.Name == inv.Command.Name || c.Name == "enable" {
					return inv.Reply("❌ This command cannot be disabled.")
				}
				if !d.Registry.Enabled(c.Name) {
					return inv.Reply(fmt.Sprintf("✅ Command %q is already disabled.", c.Name))
				}
				d.Registry.SetEnabled(c.Name, false)
				return inv.Reply(fmt.Sprintf("✅ Command %q has been disabled.", c.Name))
			},
		},
		{
			Name:        "disabled",
			Triggers:    []string{"disabled"},
			Category:    "admin",
			Description: "List disabled commands",
			Admin:       true,
			Run: func(ctx context.Context, inv *command.Context) error {
				var names []string
				for _, c := range d.Registry.List(command.Filter{}) {
					if !d.Registry.Enabled(c.Name) {
						names = append(names, c.Name)
					}
				}
				if len(names) == 0 {
					return inv.Reply("✅ No commands are disabled.")
				}
				return inv.Reply("🚫 Disabled commands: " + strings.Join(names, ", "))
			},
		},
	}
}
