package command

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// User-visible messages for terminal states. Every DENIED/THROTTLED/FAILED
// state produces exactly one reply; ignored states produce none.
const (
	msgOwnerOnly        = "❌ This command is restricted to bot owners only."
	msgAdminOnly        = "❌ This command requires admin privileges."
	msgGroupOnly        = "❌ This command can only be used in groups."
	msgPrivateOnly      = "❌ This command can only be used in private chat."
	msgBotAdminRequired = "❌ Bot needs admin privileges to execute this command."
	msgDisabled         = "❌ This command is currently disabled."
	msgRateLimited      = "⏳ You are sending commands too fast. Slow down."
)

// Outcome is the terminal state of one processed message.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeDenied
	OutcomeThrottled
	OutcomeSucceeded
	OutcomeFailed
)

// Dispatcher is the state machine that takes one inbound message, recognizes a
// command invocation and drives Registry, Permissions, Cooldowns and RateLimits
// to decide whether to execute. Messages are handled sequentially in arrival
// order; a slow handler head-of-line-blocks the next message by design.
type Dispatcher struct {
	reg       *Registry
	cooldowns *Cooldowns
	limits    *RateLimits
	perms     *Permissions
	users     UserStore
	out       Messenger
	prefixes  []string

	// HandlerTimeout caps a single handler run. Zero means no timeout.
	HandlerTimeout time.Duration
}

// NewDispatcher wires the core components together. The prefix list is matched
// in order; the first match wins.
func NewDispatcher(reg *Registry, cooldowns *Cooldowns, limits *RateLimits, perms *Permissions, users UserStore, out Messenger, prefixes []string) *Dispatcher {
	return &Dispatcher{
		reg:       reg,
		cooldowns: cooldowns,
		limits:    limits,
		perms:     perms,
		users:     users,
		out:       out,
		prefixes:  prefixes,
	}
}

// Handle processes one inbound message through the full pipeline and returns
// its terminal state. Unknown commands and non-command messages are dropped
// silently; that silence is deliberate anti-noise behavior.
func (d *Dispatcher) Handle(ctx context.Context, msg *Incoming) Outcome {
	if msg == nil || msg.FromSelf || msg.Sender == "" {
		return OutcomeIgnored
	}

	d.users.TouchUser(msg.Sender)
	if msg.IsGroup {
		d.users.TouchGroup(msg.Chat)
	}

	if d.users.IsBlocked(msg.Sender) {
		log.Printf("[WARN] Blocked user tried to use bot: %s", msg.Sender)
		return OutcomeIgnored
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return OutcomeIgnored
	}

	prefix, ok := d.matchPrefix(text)
	if !ok {
		return OutcomeIgnored
	}

	rest := strings.TrimSpace(text[len(prefix):])
	if rest == "" {
		return OutcomeIgnored
	}
	fields := strings.Fields(rest)
	word, args := fields[0], fields[1:]

	cmd := d.reg.Resolve(word)
	if cmd == nil {
		return OutcomeIgnored
	}

	if !d.reg.Enabled(cmd.Name) {
		d.reply(ctx, msg, msgDisabled)
		return OutcomeDenied
	}

	if allowed, reason := d.perms.Evaluate(ctx, cmd, msg.Sender, msg.IsGroup, msg.Chat); !allowed {
		d.reply(ctx, msg, denialMessage(reason))
		return OutcomeDenied
	}

	if d.cooldowns.Active(cmd.Name, msg.Sender, cmd.Cooldown) {
		remaining := d.cooldowns.Remaining(cmd.Name, msg.Sender, cmd.Cooldown)
		secs := int((remaining + time.Second - 1) / time.Second)
		d.reply(ctx, msg, fmt.Sprintf("⏳ Please wait %d seconds before using this command again.", secs))
		return OutcomeThrottled
	}

	if !d.limits.Allow(cmd.Name, msg.Sender, cmd.Limit) {
		d.reply(ctx, msg, msgRateLimited)
		return OutcomeThrottled
	}

	if cmd.Query && strings.TrimSpace(strings.Join(args, " ")) == "" {
		d.reply(ctx, msg, usageHint(cmd, prefix))
		return OutcomeDenied
	}

	// The cooldown clock starts here, before the handler runs, so a slow
	// handler cannot be retried rapidly while it is still executing.
	d.cooldowns.Mark(cmd.Name, msg.Sender)

	inv := &Context{
		Args:    args,
		Text:    strings.Join(args, " "),
		Sender:  msg.Sender,
		IsGroup: msg.IsGroup,
		Command: cmd,
		Prefix:  prefix,
		Message: msg,
		reply:   func(t string) error { return d.out.Reply(ctx, msg, t) },
		react:   func(e string) error { return d.out.React(ctx, msg, e) },
	}
	if msg.IsGroup {
		inv.GroupID = msg.Chat
	}

	log.Printf("[INFO] Command executed: %s by %s", cmd.Name, msg.Sender)

	if err := d.run(ctx, cmd, inv); err != nil {
		d.reg.RecordFailure(cmd.Name)
		log.Printf("[ERR] Command %s failed: %v", cmd.Name, err)
		d.reply(ctx, msg, fmt.Sprintf("❌ An error occurred while executing this command: %s", err))
		return OutcomeFailed
	}

	d.reg.RecordSuccess(cmd.Name)
	d.users.BumpCommandsUsed(msg.Sender)
	return OutcomeSucceeded
}

// run executes the handler, applying the optional timeout and containing
// panics at the dispatch boundary so a misbehaving command cannot take the
// process down.
func (d *Dispatcher) run(ctx context.Context, cmd *Command, inv *Context) (err error) {
	if d.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.HandlerTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()

	return cmd.Run(ctx, inv)
}

func (d *Dispatcher) matchPrefix(text string) (string, bool) {
	for _, p := range d.prefixes {
		if p != "" && strings.HasPrefix(text, p) {
			return p, true
		}
	}
	return "", false
}

// reply sends exactly one user-visible message; send failures are logged and
// swallowed so they never affect the dispatch outcome.
func (d *Dispatcher) reply(ctx context.Context, msg *Incoming, text string) {
	if err := d.out.Reply(ctx, msg, text); err != nil {
		log.Printf("[ERR] Reply failed for %s: %v", msg.Chat, err)
	}
}

func denialMessage(reason Reason) string {
	switch reason {
	case ReasonOwnerOnly:
		return msgOwnerOnly
	case ReasonGroupOnly:
		return msgGroupOnly
	case ReasonPrivateOnly:
		return msgPrivateOnly
	case ReasonAdminOnly:
		return msgAdminOnly
	case ReasonBotAdminRequired:
		return msgBotAdminRequired
	default:
		return msgAdminOnly
	}
}

func usageHint(cmd *Command, prefix string) string {
	var b strings.Builder
	b.WriteString("❌ Text required!\n\n")
	fmt.Fprintf(&b, "📝 Usage: %s%s", prefix, cmd.Triggers[0])
	if cmd.Usage != "" {
		b.WriteString(" " + cmd.Usage)
	}
	if cmd.Example != "" {
		fmt.Fprintf(&b, "\n📖 Example: %s%s %s", prefix, cmd.Triggers[0], cmd.Example)
	}
	return b.String()
}
