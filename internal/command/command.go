// Package command provides a transport-agnostic command core: a registry of
// command definitions, per-user cooldowns and rate limits, permission
// evaluation, and the dispatcher that drives them for each inbound message.
// How messages arrive and replies go out is defined by collaborators
// (the WhatsApp adapter, the storage layer) injected at construction time.
package command

import (
	"context"
	"time"
)

// Handler executes a resolved command with its invocation context.
type Handler func(ctx context.Context, inv *Context) error

// Command describes one invokable action. The definition fields are set once
// before registration and are not mutated afterwards; runtime state (enabled
// flag, usage counters) is owned by the Registry and accessed through it.
type Command struct {
	Name        string   // canonical name, unique across the registry
	Triggers    []string // words that invoke the command; the first one is shown in help
	Aliases     []string // additional trigger words
	Category    string   // required, free-form grouping for help output
	Description string
	Usage       string // argument hint, e.g. "<user_id>"
	Example     string

	Cooldown int  // seconds a user must wait between invocations, default 3
	Limit    int  // invocations per user per minute, 0 = unlimited
	Owner    bool // restricted to the static owner list
	Group    bool // usable only in group chats
	Admin    bool // requires group admin (or owner)
	BotAdmin bool // requires the bot itself to be a group admin
	Private  bool // usable only in private chats
	Premium  bool
	Level    int
	Query    bool // requires a non-empty argument
	Hidden   bool // excluded from help listings

	Run Handler

	// runtime state, guarded by the owning Registry
	disabled  bool
	usage     int
	errors    int
	lastUsed  time.Time
	createdAt time.Time
}

// Incoming is one inbound message as delivered by the messaging collaborator.
type Incoming struct {
	ID       string
	Sender   string // sender identity (participant in groups)
	Chat     string // conversation the message arrived in
	IsGroup  bool
	FromSelf bool
	Text     string
	Raw      any // transport payload, used by the Messenger for quoting/reacting
}

// Context is handed to a command handler for one invocation and discarded
// after the handler returns.
type Context struct {
	Args    []string // whitespace-split arguments after the trigger
	Text    string   // joined free-text form of Args
	Sender  string
	IsGroup bool
	GroupID string // empty outside groups
	Command *Command
	Prefix  string // the prefix that was used to invoke
	Message *Incoming

	reply func(string) error
	react func(string) error
}

// Reply sends a message quoting the originating one.
func (c *Context) Reply(text string) error { return c.reply(text) }

// React sends an emoji reaction keyed to the originating message.
func (c *Context) React(emoji string) error { return c.react(emoji) }

// Messenger is the outbound half of the messaging collaborator.
type Messenger interface {
	Reply(ctx context.Context, msg *Incoming, text string) error
	React(ctx context.Context, msg *Incoming, emoji string) error
	SendText(ctx context.Context, chatID string, text string) error
}

// UserStore is the slice of the persistence collaborator the dispatcher needs.
type UserStore interface {
	TouchUser(id string)
	TouchGroup(id string)
	IsBlocked(id string) bool
	BumpCommandsUsed(id string)
}

// GroupParticipant is one member of a group as reported by the messaging
// collaborator.
type GroupParticipant struct {
	ID         string
	Admin      bool
	SuperAdmin bool
}

// GroupMetadata is the group information exposed to command handlers.
type GroupMetadata struct {
	ID           string
	Subject      string
	Description  string
	Created      time.Time
	Participants []GroupParticipant
}

// GroupProvider fetches group metadata from the messaging collaborator.
type GroupProvider interface {
	GroupMetadata(ctx context.Context, groupID string) (*GroupMetadata, error)
}
