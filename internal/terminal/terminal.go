package terminal

import (
	"fmt"
	"time"
)

// DefaultCapacity is the number of entries retained in the terminal history.
const DefaultCapacity = 50

// NewLog creates a terminal log that retains at most maxSize entries.
func NewLog(maxSize int) *Log {
	if maxSize <= 0 {
		maxSize = DefaultCapacity
	}
	return &Log{
		entries: make([]Entry, 0),
		seen:    make(map[string]struct{}),
		maxSize: maxSize,
	}
}

// Append inserts a locally synthesized entry. It always succeeds; the new
// entry's id is derived from the current time so it can never collide with a
// backend-assigned id.
func (l *Log) Append(category Category, format string, args ...interface{}) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	entry := Entry{
		ID:        fmt.Sprintf("local-%d-%d", time.Now().UnixNano(), l.counter),
		Timestamp: time.Now(),
		Category:  category,
		Message:   fmt.Sprintf(format, args...),
	}

	l.entries = append(l.entries, entry)
	l.seen[entry.ID] = struct{}{}
	l.trim()
	return entry
}

// Merge folds a batch retrieved from the backend into the history. The batch
// must be in ascending time order. Entries whose id is already present are
// discarded; the rest are appended in the order supplied. Interleaving with
// local entries means insertion order is not strict timestamp order; that
// approximation is accepted, not corrected.
func (l *Log) Merge(remote []Entry) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A batch larger than capacity would evict its own head and the pruned
	// dedup set would re-admit that head on the next identical poll. Only
	// the newest maxSize entries can survive, so only those are considered.
	if len(remote) > l.maxSize {
		remote = remote[len(remote)-l.maxSize:]
	}

	added := 0
	for _, entry := range remote {
		if _, dup := l.seen[entry.ID]; dup {
			continue
		}
		l.entries = append(l.entries, entry)
		l.seen[entry.ID] = struct{}{}
		added++
	}
	l.trim()
	return added
}

// trim evicts oldest entries past capacity. Eviction is unconditional and
// silent. Caller must hold l.mu.
func (l *Log) trim() {
	if len(l.entries) <= l.maxSize {
		return
	}
	evicted := l.entries[:len(l.entries)-l.maxSize]
	for _, e := range evicted {
		delete(l.seen, e.ID)
	}
	l.entries = l.entries[len(l.entries)-l.maxSize:]
}

// Entries returns a copy of the history in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Count returns the number of retained entries.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]Entry, 0)
	l.seen = make(map[string]struct{})
}

// Export returns the history as a formatted string for the clipboard.
func (l *Log) Export() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result string
	for _, entry := range l.entries {
		result += fmt.Sprintf("[%s] %-8s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Category,
			entry.Message)
	}
	return result
}
