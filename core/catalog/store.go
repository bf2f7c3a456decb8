package catalog

import (
	"strings"
	"sync"
	"sync/atomic"

	"tariff-duty/core/tariff"
)

const (
	// DefaultSearchLimit is used by Search when limit <= 0
	DefaultSearchLimit = 10

	// DefaultCategoryLimit is used by FindByCategory when limit <= 0
	DefaultCategoryLimit = 20
)

// Stats summarizes the current catalog contents
type Stats struct {
	TotalCodes int `json:"totalCodes"`
	Categories int `json:"categories"`
	Sections   int `json:"sections"`
}

// snapshot is an immutable generation of the catalog.
// Readers hold a pointer to one generation; writers publish a new one.
type snapshot struct {
	entries []Entry
	folded  []folded
	index   map[string]int
}

// folded holds the lower-cased text of an entry used for scoring
type folded struct {
	name     string
	keywords []string
	category string
	text     string
}

func foldEntry(e Entry) folded {
	f := folded{
		name:     strings.ToLower(e.Name),
		keywords: make([]string, len(e.Keywords)),
		category: strings.ToLower(e.Category),
	}
	for i, k := range e.Keywords {
		f.keywords[i] = strings.ToLower(k)
	}
	f.text = strings.ToLower(e.Name + " " + strings.Join(e.Keywords, " ") + " " + e.Category)
	return f
}

var emptySnapshot = &snapshot{index: map[string]int{}}

// Store is the in-memory catalog.
// Reads are lock-free against an immutable snapshot; writes are serialized and copy-on-write.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot)
	return s
}

func (s *Store) snap() *snapshot {
	if sn := s.current.Load(); sn != nil {
		return sn
	}
	return emptySnapshot
}

// Load atomically replaces the catalog contents.
// Duplicate codes keep the position of the first occurrence and the content of the last.
func (s *Store) Load(entries []Entry) {
	next := &snapshot{
		entries: make([]Entry, 0, len(entries)),
		folded:  make([]folded, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		c := e.clone()
		if i, ok := next.index[c.Code]; ok {
			next.entries[i] = c
			next.folded[i] = foldEntry(c)
			continue
		}
		next.index[c.Code] = len(next.entries)
		next.entries = append(next.entries, c)
		next.folded = append(next.folded, foldEntry(c))
	}

	s.mu.Lock()
	s.current.Store(next)
	s.mu.Unlock()
}

// Upsert inserts an entry or merges it into the entry with the same normalized code.
// It reports whether a new entry was inserted.
func (s *Store) Upsert(entry Entry) bool {
	c := entry.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap()
	next := &snapshot{
		entries: append([]Entry(nil), cur.entries...),
		folded:  append([]folded(nil), cur.folded...),
		index:   make(map[string]int, len(cur.index)+1),
	}
	for k, v := range cur.index {
		next.index[k] = v
	}

	i, exists := next.index[c.Code]
	if exists {
		merged := next.entries[i].merge(c)
		next.entries[i] = merged
		next.folded[i] = foldEntry(merged)
	} else {
		next.index[c.Code] = len(next.entries)
		next.entries = append(next.entries, c)
		next.folded = append(next.folded, foldEntry(c))
	}

	s.current.Store(next)
	return !exists
}

// Clear removes all entries
func (s *Store) Clear() {
	s.mu.Lock()
	s.current.Store(emptySnapshot)
	s.mu.Unlock()
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.snap().entries)
}

// Export returns a copy of the catalog in catalog order
func (s *Store) Export() []Entry {
	sn := s.snap()
	out := make([]Entry, len(sn.entries))
	for i, e := range sn.entries {
		out[i] = e.clone()
	}
	return out
}

// FindByCode returns the entry whose normalized code equals the normalized query
func (s *Store) FindByCode(code string) (Entry, bool) {
	sn := s.snap()
	i, ok := sn.index[tariff.Normalize(code)]
	if !ok {
		return Entry{}, false
	}
	return sn.entries[i].clone(), true
}

// FindByCategory returns up to limit entries whose category contains the substring,
// case-insensitively, in catalog order.
func (s *Store) FindByCategory(category string, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	needle := strings.ToLower(category)

	sn := s.snap()
	out := make([]Entry, 0)
	for i, f := range sn.folded {
		if len(out) >= limit {
			break
		}
		if strings.Contains(f.category, needle) {
			out = append(out, sn.entries[i].clone())
		}
	}
	return out
}

// Stats counts codes, distinct categories and distinct sections
func (s *Store) Stats() Stats {
	sn := s.snap()
	categories := make(map[string]struct{})
	sections := make(map[string]struct{})
	for _, e := range sn.entries {
		categories[e.Category] = struct{}{}
		sections[e.Section] = struct{}{}
	}
	return Stats{
		TotalCodes: len(sn.entries),
		Categories: len(categories),
		Sections:   len(sections),
	}
}
