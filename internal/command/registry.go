package command

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultCooldownSeconds = 3

// Registry stores command definitions and their runtime state. It does not
// perform dispatch; the Dispatcher resolves triggers against it and reports
// outcomes back for statistics. Construct one instance per bot process; there
// is no package-level default.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command // by canonical name
	order    []string            // registration order, used for stable iteration
	index    map[string]*Command // lowercased trigger/alias -> command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		index:    make(map[string]*Command),
	}
}

// Register validates and adds a command definition. A malformed definition or
// a name/trigger/alias clash with an already registered command is rejected
// with an error; the caller logs and skips it without aborting startup.
// First-registered wins on any clash.
func (r *Registry) Register(c *Command) error {
	if c == nil {
		return fmt.Errorf("command is nil")
	}
	if c.Name == "" {
		return fmt.Errorf("command name is required")
	}
	if len(c.Triggers) == 0 {
		return fmt.Errorf("command %q: at least one trigger is required", c.Name)
	}
	if c.Category == "" {
		return fmt.Errorf("command %q: category is required", c.Name)
	}
	if c.Run == nil {
		return fmt.Errorf("command %q: run function is required", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[c.Name]; exists {
		return fmt.Errorf("command %q is already registered", c.Name)
	}

	words := make([]string, 0, len(c.Triggers)+len(c.Aliases))
	for _, w := range append(append([]string{}, c.Triggers...), c.Aliases...) {
		lw := strings.ToLower(strings.TrimSpace(w))
		if lw == "" {
			return fmt.Errorf("command %q: empty trigger", c.Name)
		}
		if other, taken := r.index[lw]; taken {
			return fmt.Errorf("command %q: trigger %q is already used by %q", c.Name, lw, other.Name)
		}
		words = append(words, lw)
	}

	if c.Cooldown == 0 {
		c.Cooldown = defaultCooldownSeconds
	}
	c.createdAt = time.Now()

	r.commands[c.Name] = c
	r.order = append(r.order, c.Name)
	for _, w := range words {
		r.index[w] = c
	}
	return nil
}

// Remove deletes a command and its triggers. Administrative, rarely used.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.commands[name]
	if !ok {
		return false
	}
	delete(r.commands, name)
	for w, cmd := range r.index {
		if cmd == c {
			delete(r.index, w)
		}
	}
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Resolve returns the command whose trigger or alias set contains the given
// word, case-insensitively, or nil when no command matches.
func (r *Registry) Resolve(word string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index[strings.ToLower(word)]
}

// Get returns the command with the given canonical name, or nil.
func (r *Registry) Get(name string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// SetEnabled toggles a command on or off. Returns false if the name is unknown.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.commands[name]
	if !ok {
		return false
	}
	c.disabled = !enabled
	return true
}

// Enabled reports whether the named command is enabled. Unknown names report false.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.commands[name]
	return ok && !c.disabled
}

// RecordSuccess bumps the usage counter and last-used time. No-op for unknown names.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.commands[name]; ok {
		c.usage++
		c.lastUsed = time.Now()
	}
}

// RecordFailure bumps the error counter. No-op for unknown names.
func (r *Registry) RecordFailure(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.commands[name]; ok {
		c.errors++
	}
}

// Filter narrows List results. Zero value matches everything.
type Filter struct {
	Category      string
	EnabledOnly   bool
	ExcludeHidden bool
}

// List returns commands matching the filter, in registration order.
func (r *Registry) List(f Filter) []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Command
	for _, name := range r.order {
		c := r.commands[name]
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if f.EnabledOnly && c.disabled {
			continue
		}
		if f.ExcludeHidden && c.Hidden {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	var out []string
	for _, name := range r.order {
		cat := r.commands[name].Category
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}

// Stats is the aggregate over all registered commands.
type Stats struct {
	TotalCommands int
	TotalUsage    int
	TotalErrors   int
	SuccessRate   float64 // percentage, two decimals; 0 when nothing was used
}

// AggregateStats sums counters across all commands.
func (r *Registry) AggregateStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{TotalCommands: len(r.commands)}
	for _, c := range r.commands {
		s.TotalUsage += c.usage
		s.TotalErrors += c.errors
	}
	if s.TotalUsage > 0 {
		rate := float64(s.TotalUsage-s.TotalErrors) / float64(s.TotalUsage) * 100
		s.SuccessRate = math.Round(rate*100) / 100
	}
	return s
}

// CommandStats is a point-in-time snapshot of one command's counters.
type CommandStats struct {
	Name     string
	Usage    int
	Errors   int
	LastUsed time.Time
}

// StatsFor returns the counters of one command.
func (r *Registry) StatsFor(name string) (CommandStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.commands[name]
	if !ok {
		return CommandStats{}, false
	}
	return CommandStats{Name: c.Name, Usage: c.usage, Errors: c.errors, LastUsed: c.lastUsed}, true
}

// TopByUsage returns up to n commands sorted descending by usage count.
// Ties keep registration order.
func (r *Registry) TopByUsage(n int) []CommandStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CommandStats, 0, len(r.order))
	for _, name := range r.order {
		c := r.commands[name]
		out = append(out, CommandStats{Name: c.Name, Usage: c.usage, Errors: c.errors, LastUsed: c.lastUsed})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Usage > out[j].Usage })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Help builds the per-command help text shown by the help command, or ""
// when the query resolves to nothing.
func (r *Registry) Help(query, prefix string) string {
	c := r.Resolve(query)
	if c == nil {
		return ""
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", strings.ToUpper(c.Name))
	fmt.Fprintf(&b, "📝 %s\n", c.Description)
	if c.Usage != "" {
		fmt.Fprintf(&b, "📋 Usage: %s%s %s\n", prefix, c.Triggers[0], c.Usage)
	}
	if c.Example != "" {
		fmt.Fprintf(&b, "📖 Example: %s%s %s\n", prefix, c.Triggers[0], c.Example)
	}
	if len(c.Aliases) > 0 {
		fmt.Fprintf(&b, "🔗 Aliases: %s\n", strings.Join(c.Aliases, ", "))
	}
	fmt.Fprintf(&b, "📂 Category: %s\n", c.Category)
	fmt.Fprintf(&b, "⏱️ Cooldown: %ds\n", c.Cooldown)

	var restrictions []string
	if c.Owner {
		restrictions = append(restrictions, "Owner Only")
	}
	if c.Admin {
		restrictions = append(restrictions, "Admin Only")
	}
	if c.Group {
		restrictions = append(restrictions, "Group Only")
	}
	if c.Private {
		restrictions = append(restrictions, "Private Only")
	}
	if c.Premium {
		restrictions = append(restrictions, "Premium Only")
	}
	if c.BotAdmin {
		restrictions = append(restrictions, "Bot Admin Required")
	}
	if len(restrictions) > 0 {
		fmt.Fprintf(&b, "🚫 Restrictions: %s\n", strings.Join(restrictions, ", "))
	}
	return b.String()
}
