package bus

import (
	"sync"
	"time"
)

// CommandDedupe is a TTL cache over command IDs. Collaborators that
// reconnect can redeliver commands they never saw a reply for; the service
// drops IDs it has already handled.
//
// Entries expire after TTL and are pruned lazily on each check.
type CommandDedupe struct {
	mu      sync.Mutex
	entries map[string]int64 // id → unix millis
	ttl     time.Duration
	maxSize int
}

// NewCommandDedupe creates a dedupe cache.
func NewCommandDedupe(ttl time.Duration, maxSize int) *CommandDedupe {
	return &CommandDedupe{
		entries: make(map[string]int64, 256),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// IsDuplicate reports whether id was already seen within the TTL window.
// If not, the id is recorded for future checks. Empty ids are never
// duplicates.
func (d *CommandDedupe) IsDuplicate(id string) bool {
	if id == "" {
		return false
	}
	now := time.Now().UnixMilli()
	cutoff := now - d.ttl.Milliseconds()

	d.mu.Lock()
	defer d.mu.Unlock()

	if ts, ok := d.entries[id]; ok && ts >= cutoff {
		return true
	}

	d.cleanup(cutoff)
	d.entries[id] = now
	return false
}

// cleanup removes expired entries and evicts arbitrary ones if still over
// maxSize. Must be called with d.mu held.
func (d *CommandDedupe) cleanup(cutoff int64) {
	for k, ts := range d.entries {
		if ts < cutoff {
			delete(d.entries, k)
		}
	}
	if d.maxSize > 0 && len(d.entries) >= d.maxSize {
		excess := len(d.entries) - d.maxSize + 1
		for k := range d.entries {
			if excess <= 0 {
				break
			}
			delete(d.entries, k)
			excess--
		}
	}
}
