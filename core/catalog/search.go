package catalog

import (
	"sort"
	"strings"
	"unicode/utf8"

	"tariff-duty/core/tariff"
)

// Relevance weights per match tier. A token may hit several tiers at once.
const (
	WeightName     = 10
	WeightKeyword  = 5
	WeightCategory = 3
	WeightText     = 1
)

// minTokenLength is exclusive: tokens of this many characters or fewer are dropped
const minTokenLength = 2

// Hit is an entry with its relevance score
type Hit struct {
	Entry Entry `json:"entry"`
	Score int   `json:"score"`
}

// Tokenize lower-cases a query, splits it on whitespace and drops short tokens
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func score(f folded, tokens []string) int {
	total := 0
	for _, tok := range tokens {
		if strings.Contains(f.name, tok) {
			total += WeightName
		}
		for _, k := range f.keywords {
			if strings.Contains(k, tok) {
				total += WeightKeyword
				break
			}
		}
		if strings.Contains(f.category, tok) {
			total += WeightCategory
		}
		if strings.Contains(f.text, tok) {
			total += WeightText
		}
	}
	return total
}

// Score returns the relevance of a single entry for a query
func Score(e Entry, query string) int {
	return score(foldEntry(e), Tokenize(query))
}

// SearchScored ranks entries against a free-text query.
// Entries scoring zero are dropped; ties keep catalog order.
func (s *Store) SearchScored(query string, limit int) []Hit {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []Hit{}
	}

	sn := s.snap()
	hits := make([]Hit, 0)
	for i, f := range sn.folded {
		if sc := score(f, tokens); sc > 0 {
			hits = append(hits, Hit{Entry: sn.entries[i], Score: sc})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	for i := range hits {
		hits[i].Entry = hits[i].Entry.clone()
	}
	return hits
}

// Search returns up to limit entries ordered by descending relevance
func (s *Store) Search(query string, limit int) []Entry {
	hits := s.SearchScored(query, limit)
	out := make([]Entry, len(hits))
	for i, h := range hits {
		out[i] = h.Entry
	}
	return out
}

// Mode tells which path answered a lookup
type Mode string

const (
	ModeCode        Mode = "code"
	ModeDescription Mode = "description"
)

// Result is the answer to a caller-facing query
type Result struct {
	Mode    Mode    `json:"mode"`
	Entries []Entry `json:"results"`
}

// Codes returns the display codes of the result entries
func (r Result) Codes() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Display()
	}
	return out
}

// Reader is the read side of the catalog used by Lookup
type Reader interface {
	FindByCode(code string) (Entry, bool)
	Search(query string, limit int) []Entry
}

// Lookup dispatches a free-text query: a ten-digit numeral is tried as an exact code first,
// and anything else (or an exact miss) falls through to relevance search.
func Lookup(r Reader, query string, limit int) Result {
	q := strings.TrimSpace(query)
	if tariff.IsCodeQuery(q) {
		if e, ok := r.FindByCode(q); ok {
			return Result{Mode: ModeCode, Entries: []Entry{e}}
		}
	}
	return Result{Mode: ModeDescription, Entries: r.Search(q, limit)}
}
