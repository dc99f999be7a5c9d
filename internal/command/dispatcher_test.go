package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessenger records every outbound reply.
type fakeMessenger struct {
	replies []string
	sendErr error
}

func (m *fakeMessenger) Reply(ctx context.Context, msg *Incoming, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.replies = append(m.replies, text)
	return nil
}

func (m *fakeMessenger) React(ctx context.Context, msg *Incoming, emoji string) error {
	return nil
}

func (m *fakeMessenger) SendText(ctx context.Context, chatID string, text string) error {
	return nil
}

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	touchedUsers  []string
	touchedGroups []string
	blocked       map[string]bool
	bumps         int
}

func (u *fakeUsers) TouchUser(id string)  { u.touchedUsers = append(u.touchedUsers, id) }
func (u *fakeUsers) TouchGroup(id string) { u.touchedGroups = append(u.touchedGroups, id) }
func (u *fakeUsers) IsBlocked(id string) bool {
	return u.blocked[id]
}
func (u *fakeUsers) BumpCommandsUsed(id string) { u.bumps++ }

type dispatchFixture struct {
	disp  *Dispatcher
	reg   *Registry
	out   *fakeMessenger
	users *fakeUsers
	gate  *fakeGate
	clock *fakeClock
}

func newFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	reg := NewRegistry()
	cooldowns, clock := newTestCooldowns()
	out := &fakeMessenger{}
	users := &fakeUsers{blocked: map[string]bool{}}
	gate := &fakeGate{admins: map[string]bool{adminID: true}, botAdmin: true}
	perms := newTestPerms(gate)

	disp := NewDispatcher(reg, cooldowns, NewRateLimits(), perms, users, out, []string{".", "!"})
	return &dispatchFixture{disp: disp, reg: reg, out: out, users: users, gate: gate, clock: clock}
}

func privateMsg(sender, text string) *Incoming {
	return &Incoming{ID: "MSG1", Sender: sender, Chat: sender, Text: text}
}

func groupMsg(sender, text string) *Incoming {
	return &Incoming{ID: "MSG2", Sender: sender, Chat: groupID, IsGroup: true, Text: text}
}

func TestDispatchPingRoundTrip(t *testing.T) {
	f := newFixture(t)
	calls := 0
	require.NoError(t, f.reg.Register(&Command{
		Name:     "ping",
		Triggers: []string{"ping"},
		Category: "info",
		Run: func(ctx context.Context, inv *Context) error {
			calls++
			return inv.Reply("🏓 Pong!")
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))

	assert.Equal(t, OutcomeSucceeded, got)
	assert.Equal(t, 1, calls)
	require.Len(t, f.out.replies, 1)
	assert.Equal(t, "🏓 Pong!", f.out.replies[0])
	assert.Equal(t, []string{memberID}, f.users.touchedUsers)
	assert.Equal(t, 1, f.users.bumps)

	s, ok := f.reg.StatsFor("ping")
	require.True(t, ok)
	assert.Equal(t, 1, s.Usage)
	assert.Zero(t, s.Errors)

	// A second attempt inside the window is throttled without running the
	// handler.
	got = f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))
	assert.Equal(t, OutcomeThrottled, got)
	assert.Equal(t, 1, calls)
	require.Len(t, f.out.replies, 2)
	assert.Contains(t, f.out.replies[1], "Please wait")

	// After the window closes the command runs again.
	f.clock.advance(3 * time.Second)
	got = f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))
	assert.Equal(t, OutcomeSucceeded, got)
	assert.Equal(t, 2, calls)
}

func TestDispatchIgnores(t *testing.T) {
	f := newFixture(t)
	calls := 0
	require.NoError(t, f.reg.Register(&Command{
		Name:     "ping",
		Triggers: []string{"ping"},
		Category: "info",
		Run: func(ctx context.Context, inv *Context) error {
			calls++
			return nil
		},
	}))

	cases := []struct {
		name string
		msg  *Incoming
	}{
		{"nil", nil},
		{"fromSelf", &Incoming{Sender: memberID, Chat: memberID, Text: ".ping", FromSelf: true}},
		{"emptySender", &Incoming{Chat: memberID, Text: ".ping"}},
		{"emptyText", privateMsg(memberID, "")},
		{"noPrefix", privateMsg(memberID, "ping")},
		{"bareDot", privateMsg(memberID, ".")},
		{"unknownCommand", privateMsg(memberID, ".nosuch")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, OutcomeIgnored, f.disp.Handle(context.Background(), tc.msg))
		})
	}
	assert.Zero(t, calls)
	assert.Empty(t, f.out.replies)
}

func TestDispatchBlockedUserIsSilent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Register(testCommand("ping")))
	f.users.blocked[memberID] = true

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))

	assert.Equal(t, OutcomeIgnored, got)
	assert.Empty(t, f.out.replies)
}

func TestDispatchSecondPrefix(t *testing.T) {
	f := newFixture(t)
	calls := 0
	require.NoError(t, f.reg.Register(&Command{
		Name:     "ping",
		Triggers: []string{"ping"},
		Category: "info",
		Run: func(ctx context.Context, inv *Context) error {
			calls++
			assert.Equal(t, "!", inv.Prefix)
			return nil
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, "!ping"))
	assert.Equal(t, OutcomeSucceeded, got)
	assert.Equal(t, 1, calls)
}

func TestDispatchDisabledCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Register(testCommand("ping")))
	f.reg.SetEnabled("ping", false)

	// Disabled wins even over a permission denial: the owner gate is never
	// consulted.
	c := f.reg.Get("ping")
	c.Owner = true

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))
	assert.Equal(t, OutcomeDenied, got)
	require.Len(t, f.out.replies, 1)
	assert.Contains(t, f.out.replies[0], "currently disabled")
}

func TestDispatchPermissionDenied(t *testing.T) {
	f := newFixture(t)
	c := testCommand("groupinfo")
	c.Group = true
	require.NoError(t, f.reg.Register(c))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".groupinfo"))
	assert.Equal(t, OutcomeDenied, got)
	require.Len(t, f.out.replies, 1)
	assert.Contains(t, f.out.replies[0], "only be used in groups")

	// Denial does not start the cooldown clock; a permitted invocation in a
	// group runs immediately.
	got = f.disp.Handle(context.Background(), groupMsg(memberID, ".groupinfo"))
	assert.Equal(t, OutcomeSucceeded, got)
}

func TestDispatchQueryRequired(t *testing.T) {
	f := newFixture(t)
	calls := 0
	require.NoError(t, f.reg.Register(&Command{
		Name:     "block",
		Triggers: []string{"block"},
		Category: "owner",
		Usage:    "<user_id>",
		Example:  "628xxxxxxxxx",
		Query:    true,
		Run: func(ctx context.Context, inv *Context) error {
			calls++
			return nil
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".block"))
	assert.Equal(t, OutcomeDenied, got)
	assert.Zero(t, calls)
	require.Len(t, f.out.replies, 1)
	assert.Contains(t, f.out.replies[0], "Text required")
	assert.Contains(t, f.out.replies[0], ".block <user_id>")

	got = f.disp.Handle(context.Background(), privateMsg(memberID, ".block 628000"))
	assert.Equal(t, OutcomeSucceeded, got)
	assert.Equal(t, 1, calls)
}

func TestDispatchArgsAndText(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Register(&Command{
		Name:     "hash",
		Triggers: []string{"hash"},
		Category: "utility",
		Query:    true,
		Run: func(ctx context.Context, inv *Context) error {
			assert.Equal(t, []string{"hello", "world"}, inv.Args)
			assert.Equal(t, "hello world", inv.Text)
			assert.Equal(t, memberID, inv.Sender)
			assert.Empty(t, inv.GroupID)
			return nil
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".hash   hello   world  "))
	assert.Equal(t, OutcomeSucceeded, got)
}

func TestDispatchGroupContext(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Register(&Command{
		Name:     "ping",
		Triggers: []string{"ping"},
		Category: "info",
		Run: func(ctx context.Context, inv *Context) error {
			assert.True(t, inv.IsGroup)
			assert.Equal(t, groupID, inv.GroupID)
			return nil
		},
	}))

	got := f.disp.Handle(context.Background(), groupMsg(memberID, ".ping"))
	assert.Equal(t, OutcomeSucceeded, got)
	assert.Equal(t, []string{groupID}, f.users.touchedGroups)
}

func TestDispatchHandlerError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Register(&Command{
		Name:     "boom",
		Triggers: []string{"boom"},
		Category: "test",
		Run: func(ctx context.Context, inv *Context) error {
			return errors.New("backend unavailable")
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".boom"))

	assert.Equal(t, OutcomeFailed, got)
	require.Len(t, f.out.replies, 1)
	assert.Contains(t, f.out.replies[0], "backend unavailable")
	assert.Zero(t, f.users.bumps)

	s, _ := f.reg.StatsFor("boom")
	assert.Zero(t, s.Usage)
	assert.Equal(t, 1, s.Errors)

	// The cooldown was marked before the handler ran, so an immediate retry
	// is throttled.
	got = f.disp.Handle(context.Background(), privateMsg(memberID, ".boom"))
	assert.Equal(t, OutcomeThrottled, got)
}

func TestDispatchHandlerPanicIsContained(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Register(&Command{
		Name:     "panic",
		Triggers: []string{"panic"},
		Category: "test",
		Run: func(ctx context.Context, inv *Context) error {
			panic("nil map write")
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".panic"))

	assert.Equal(t, OutcomeFailed, got)
	require.Len(t, f.out.replies, 1)
	assert.Contains(t, f.out.replies[0], "command panicked")
}

func TestDispatchHandlerTimeout(t *testing.T) {
	f := newFixture(t)
	f.disp.HandlerTimeout = 10 * time.Millisecond
	require.NoError(t, f.reg.Register(&Command{
		Name:     "slow",
		Triggers: []string{"slow"},
		Category: "test",
		Run: func(ctx context.Context, inv *Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".slow"))
	assert.Equal(t, OutcomeFailed, got)
}

func TestDispatchPerMinuteLimit(t *testing.T) {
	f := newFixture(t)
	c := testCommand("fast")
	c.Cooldown = 1
	c.Limit = 2
	require.NoError(t, f.reg.Register(c))

	for i := 0; i < 2; i++ {
		got := f.disp.Handle(context.Background(), privateMsg(memberID, ".fast"))
		require.Equal(t, OutcomeSucceeded, got, "call %d", i)
		f.clock.advance(time.Second)
	}

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".fast"))
	assert.Equal(t, OutcomeThrottled, got)
	assert.Contains(t, f.out.replies[len(f.out.replies)-1], "too fast")
}

func TestDispatchSendFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	c := testCommand("ping")
	c.Owner = true
	require.NoError(t, f.reg.Register(c))
	f.out.sendErr = errors.New("socket closed")

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))
	assert.Equal(t, OutcomeDenied, got)
}

func TestDispatchThrottleMessageSeconds(t *testing.T) {
	f := newFixture(t)
	c := testCommand("ping")
	c.Cooldown = 5
	require.NoError(t, f.reg.Register(c))

	require.Equal(t, OutcomeSucceeded, f.disp.Handle(context.Background(), privateMsg(memberID, ".ping")))
	f.clock.advance(2500 * time.Millisecond)

	got := f.disp.Handle(context.Background(), privateMsg(memberID, ".ping"))
	assert.Equal(t, OutcomeThrottled, got)
	// 2.5s remaining rounds up to 3.
	assert.True(t, strings.Contains(f.out.replies[len(f.out.replies)-1], "wait 3 seconds"))
}
