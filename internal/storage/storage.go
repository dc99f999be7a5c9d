// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const (
	usersKey    = "users"
	groupsKey   = "groups"
	settingsKey = "settings"
)

// User is the per-sender record the bot keeps.
type User struct {
	ID           string    `json:"id"`
	Registered   time.Time `json:"registered"`
	LastSeen     time.Time `json:"last_seen"`
	CommandsUsed int       `json:"commands_used"`
	Blocked      bool      `json:"blocked"`
}

// Group is the per-group record with its boolean feature settings.
type Group struct {
	ID       string          `json:"id"`
	Added    time.Time       `json:"added"`
	Settings map[string]bool `json:"settings"`
}

func defaultGroupSettings() map[string]bool {
	return map[string]bool{
		"antilink": false,
		"antispam": true,
		"commands": true,
		"welcome":  false,
		"goodbye":  false,
	}
}

// Storage keeps user, group and bot settings records in a flat JSON datastore.
// Writes are last-writer-wins full-record overwrites; there is no
// transactionality beyond the datastore's atomic file save.
type Storage struct {
	mu sync.Mutex
	ds *datastore.DataStore
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// bucket reads a whole top-level map through a JSON roundtrip, since the
// datastore returns plain decoded values after a reload.
func bucket[T any](s *Storage, key string) map[string]T {
	out := make(map[string]T)
	data, exists := s.ds.Get(key)
	if !exists {
		return out
	}

	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("[ERR] Storage: marshalling %s bucket: %v", key, err)
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("[ERR] Storage: unmarshalling %s bucket: %v", key, err)
		return make(map[string]T)
	}
	return out
}

// --- Users ---

// TouchUser ensures a record exists for the sender and refreshes last-seen.
func (s *Storage) TouchUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := bucket[User](s, usersKey)
	u, ok := users[id]
	if !ok {
		u = User{ID: id, Registered: time.Now()}
		log.Printf("[INFO] New user registered: %s", id)
	}
	u.LastSeen = time.Now()
	users[id] = u
	s.ds.Add(usersKey, users)
}

func (s *Storage) GetUser(id string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := bucket[User](s, usersKey)[id]
	return u, ok
}

// UpdateUser applies mutate to the user's record, creating it if missing.
func (s *Storage) UpdateUser(id string, mutate func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := bucket[User](s, usersKey)
	u, ok := users[id]
	if !ok {
		u = User{ID: id, Registered: time.Now()}
	}
	mutate(&u)
	u.LastSeen = time.Now()
	users[id] = u
	s.ds.Add(usersKey, users)
}

func (s *Storage) IsBlocked(id string) bool {
	u, ok := s.GetUser(id)
	return ok && u.Blocked
}

func (s *Storage) SetBlocked(id string, blocked bool) {
	s.UpdateUser(id, func(u *User) { u.Blocked = blocked })
	if blocked {
		log.Printf("[WARN] User blocked: %s", id)
	} else {
		log.Printf("[INFO] User unblocked: %s", id)
	}
}

func (s *Storage) BumpCommandsUsed(id string) {
	s.UpdateUser(id, func(u *User) { u.CommandsUsed++ })
}

func (s *Storage) ListUserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := bucket[User](s, usersKey)
	out := make([]string, 0, len(users))
	for id := range users {
		out = append(out, id)
	}
	return out
}

// BlockedUsers returns the records currently flagged blocked.
func (s *Storage) BlockedUsers() []User {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []User
	for _, u := range bucket[User](s, usersKey) {
		if u.Blocked {
			out = append(out, u)
		}
	}
	return out
}

// --- Groups ---

// TouchGroup ensures a record exists for the group.
func (s *Storage) TouchGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := bucket[Group](s, groupsKey)
	if _, ok := groups[id]; ok {
		return
	}
	groups[id] = Group{ID: id, Added: time.Now(), Settings: defaultGroupSettings()}
	s.ds.Add(groupsKey, groups)
	log.Printf("[INFO] New group registered: %s", id)
}

func (s *Storage) GetGroup(id string) (Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := bucket[Group](s, groupsKey)[id]
	return g, ok
}

func (s *Storage) GroupSetting(id, name string) bool {
	g, ok := s.GetGroup(id)
	if !ok || g.Settings == nil {
		return false
	}
	return g.Settings[name]
}

func (s *Storage) SetGroupSetting(id, name string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := bucket[Group](s, groupsKey)
	g, ok := groups[id]
	if !ok {
		g = Group{ID: id, Added: time.Now(), Settings: defaultGroupSettings()}
	}
	if g.Settings == nil {
		g.Settings = defaultGroupSettings()
	}
	g.Settings[name] = value
	groups[id] = g
	s.ds.Add(groupsKey, groups)
	log.Printf("[INFO] Group setting updated: %s - %s: %v", id, name, value)
}

func (s *Storage) ListGroupIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := bucket[Group](s, groupsKey)
	out := make([]string, 0, len(groups))
	for id := range groups {
		out = append(out, id)
	}
	return out
}

// --- Settings ---

func (s *Storage) Setting(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := bucket[string](s, settingsKey)[key]
	return v, ok
}

func (s *Storage) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := bucket[string](s, settingsKey)
	settings[key] = value
	s.ds.Add(settingsKey, settings)
}

// --- Maintenance ---

// Totals summarizes the stored records.
type Totals struct {
	Users        int
	Groups       int
	BlockedUsers int
	CommandsUsed int
}

func (s *Storage) Stats() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Totals{}
	for _, u := range bucket[User](s, usersKey) {
		t.Users++
		if u.Blocked {
			t.BlockedUsers++
		}
		t.CommandsUsed += u.CommandsUsed
	}
	t.Groups = len(bucket[Group](s, groupsKey))
	return t
}

// Cleanup removes users not seen within maxAge and returns how many were
// dropped. Intended to run from a scheduled job or an owner command.
func (s *Storage) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := bucket[User](s, usersKey)
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, u := range users {
		if u.LastSeen.Before(cutoff) {
			delete(users, id)
			removed++
		}
	}
	if removed > 0 {
		s.ds.Add(usersKey, users)
		log.Printf("[INFO] Cleaned %d inactive users", removed)
	}
	return removed
}

// Describe returns a short human-readable datastore summary for diagnostics.
func (s *Storage) Describe() string {
	stats := s.ds.Stats()
	return fmt.Sprintf("keys: %v, memory: %v bytes", stats["keys"], stats["memory_size"])
}
