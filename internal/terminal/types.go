package terminal

import (
	"sync"
	"time"
)

//
// TERMINAL LOG
//

// Category classifies a terminal log entry.
type Category string

const (
	CategorySentinel Category = "sentinel"
	CategoryRisk     Category = "risk"
	CategoryTrade    Category = "trade"
	CategorySystem   Category = "system"
)

// Entry is one immutable record in the terminal history. Identity is by ID:
// two entries with the same ID are the same event regardless of origin.
type Entry struct {
	ID        string
	Timestamp time.Time
	Category  Category
	Message   string
}

// Log is the merged, bounded event history shown in the terminal panel.
// Entries come from two uncoordinated producers: locally synthesized events
// and batches retrieved from the backend's /api/logs feed.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	seen    map[string]struct{}
	maxSize int
	counter uint64
}
