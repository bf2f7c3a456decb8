// Package history keeps a bounded, newest-first log of classification lookups.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxItems is the log capacity when none is configured
const DefaultMaxItems = 50

// Mode identifies what produced an item
type Mode string

const (
	ModeSearch  Mode = "search"
	ModeText    Mode = "text"
	ModeFile    Mode = "file"
	ModeCompute Mode = "compute"
)

// Item is one history record
type Item struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Mode      Mode      `json:"mode"`

	// Preview is the query, or a file name for file mode
	Preview string `json:"preview"`

	// Text is the full input for text mode
	Text string `json:"text,omitempty"`

	// Result is a short outcome summary
	Result string `json:"result"`

	// Codes are the display codes produced
	Codes []string `json:"codes"`
}

// Log is a concurrency-safe bounded history
type Log struct {
	mu    sync.RWMutex
	items []Item
	max   int
	now   func() time.Time
	newID func() string
}

// New creates a log holding at most max items
func New(max int) *Log {
	if max <= 0 {
		max = DefaultMaxItems
	}
	return &Log{
		max:   max,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Add stores an item at the front, assigning its id and timestamp, and drops the oldest
// items past capacity.
func (l *Log) Add(item Item) Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	item.ID = l.newID()
	item.Timestamp = l.now().UTC()
	if item.Codes == nil {
		item.Codes = []string{}
	} else {
		item.Codes = append([]string(nil), item.Codes...)
	}

	next := make([]Item, 0, min(len(l.items)+1, l.max))
	next = append(next, item)
	for _, it := range l.items {
		if len(next) >= l.max {
			break
		}
		next = append(next, it)
	}
	l.items = next
	return item
}

// List returns the items newest first
func (l *Log) List() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Item{}, l.items...)
}

// Get returns the item with id
func (l *Log) Get(id string) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Remove deletes the item with id and reports whether it existed
func (l *Log) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.ID == id {
			l.items = append(append([]Item(nil), l.items[:i]...), l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes all items
func (l *Log) Clear() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}

// Len returns the number of items
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
