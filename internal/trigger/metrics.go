package trigger

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Usage counts commands and macro playbacks.
type Usage struct {
	mu sync.RWMutex

	commands map[string]uint64
	actions  map[string]*ActionUsage
}

// ActionUsage holds counters for one macro.
type ActionUsage struct {
	Name          string
	PlayCount     uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	LastPlayed    time.Time
}

// NewUsage creates empty counters.
func NewUsage() *Usage {
	return &Usage{
		commands: make(map[string]uint64),
		actions:  make(map[string]*ActionUsage),
	}
}

// RecordCommand counts one use of a command.
func (u *Usage) RecordCommand(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commands[name]++
}

// RecordPlay counts one playback of a macro.
func (u *Usage) RecordPlay(name string, duration time.Duration, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	au := u.actions[name]
	if au == nil {
		au = &ActionUsage{Name: name}
		u.actions[name] = au
	}
	au.PlayCount++
	au.TotalDuration += duration
	au.LastPlayed = time.Now()
	if err != nil {
		au.ErrorCount++
	}
}

// CommandCount returns how often a command was used.
func (u *Usage) CommandCount(name string) uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.commands[name]
}

// Action returns a copy of the counters for a macro.
func (u *Usage) Action(name string) (ActionUsage, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	au, ok := u.actions[name]
	if !ok {
		return ActionUsage{}, false
	}
	return *au, true
}

// Report formats all counters, sorted by name.
func (u *Usage) Report() string {
	u.mu.RLock()
	defer u.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Commands used:\n")
	for _, name := range sortedKeys(u.commands) {
		fmt.Fprintf(&b, "- %s: %d\n", name, u.commands[name])
	}
	b.WriteString("Actions played:\n")
	for _, name := range sortedKeys(u.actions) {
		au := u.actions[name]
		fmt.Fprintf(&b, "- %s: %d", name, au.PlayCount)
		if au.ErrorCount > 0 {
			fmt.Fprintf(&b, " (%d failed)", au.ErrorCount)
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
