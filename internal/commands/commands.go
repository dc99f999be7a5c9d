// Package commands holds the command bodies registered onto the core
// registry: simple, independent wrappers around the storage and messaging
// collaborators. Each group of related commands lives in its own file.
package commands

import (
	"log"
	"time"

	"github.com/keshon/wabot/internal/command"
	"github.com/keshon/wabot/internal/storage"
)

// Deps carries the collaborators command bodies may need beyond the
// invocation context itself.
type Deps struct {
	Store     *storage.Storage
	Registry  *command.Registry
	Cooldowns *command.Cooldowns
	Messenger command.Messenger
	Groups    command.GroupProvider
	Prefix    string // primary prefix, used when rendering help text
	BotName   string
	StartedAt time.Time
}

// RegisterAll registers every built-in command. A malformed or clashing
// definition is logged and skipped without aborting startup.
func RegisterAll(reg *command.Registry, d *Deps) {
	var defs []*command.Command
	defs = append(defs, infoCommands(d)...)
	defs = append(defs, ownerCommands(d)...)
	defs = append(defs, adminCommands(d)...)
	defs = append(defs, groupCommands(d)...)
	defs = append(defs, utilityCommands(d)...)

	registered := 0
	for _, c := range defs {
		if err := reg.Register(c); err != nil {
			log.Printf("[ERR] Failed to register command: %v", err)
			continue
		}
		registered++
	}
	log.Printf("[INFO] %d commands registered", registered)
}
