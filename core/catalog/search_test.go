package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"кофе", "жареный"}, Tokenize("  Кофе  и  ЖАРЕНЫЙ в "))
	assert.Equal(t, []string{"abc"}, Tokenize("ab abc"))
	assert.Empty(t, Tokenize("a bb"))
}

func TestScoreTiers(t *testing.T) {
	e := Entry{
		Name:     "Кофе жареный",
		Keywords: []string{"кофе", "напиток"},
		Category: "Продукты питания",
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"name keyword and text", "кофе", WeightName + WeightKeyword + WeightText},
		{"keyword only", "напиток", WeightKeyword + WeightText},
		{"category only", "питания", WeightCategory + WeightText},
		{"name only", "жареный", WeightName + WeightText},
		{"tokens accumulate", "кофе питания", WeightName + WeightKeyword + WeightCategory + 2*WeightText},
		{"repeated token counts twice", "кофе кофе", 2 * (WeightName + WeightKeyword + WeightText)},
		{"short tokens dropped", "ко фе", 0},
		{"no match", "чай", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(e, tt.query))
		})
	}
}

func TestScoreAllFourTiers(t *testing.T) {
	e := Entry{Name: "хлопок", Keywords: []string{"хлопок"}, Category: "хлопок"}
	assert.Equal(t, 19, Score(e, "хлопок"))
}

func TestScoreMonotonicInNameTokens(t *testing.T) {
	for _, e := range sampleEntries() {
		base := Score(e, "телефон")
		for _, tok := range Tokenize(e.Name) {
			with := Score(e, "телефон "+tok)
			assert.GreaterOrEqual(t, with-base, WeightName, "%s +%s", e.Code, tok)
		}
	}
}

func TestSearchOrdering(t *testing.T) {
	s := NewStore()
	s.Load([]Entry{
		{Code: "0000000001", Name: "стул", Category: "мебель"},
		{Code: "0000000002", Name: "стол", Category: "мебель"},
		{Code: "0000000003", Name: "стол офисный", Keywords: []string{"стол"}, Category: "мебель"},
		{Code: "0000000004", Name: "шкаф", Category: "мебель"},
	})

	hits := s.SearchScored("стол мебель", 10)
	require.Len(t, hits, 4)
	assert.Equal(t, "0000000003", hits[0].Entry.Code)
	assert.Equal(t, "0000000002", hits[1].Entry.Code)
	assert.Equal(t, "0000000001", hits[2].Entry.Code)
	assert.Equal(t, "0000000004", hits[3].Entry.Code)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchLimitAndEmpty(t *testing.T) {
	s := loadedStore(t)

	got := s.Search("электроника", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "8517120000", got[0].Code)

	assert.Len(t, s.Search("электроника", 0), 2)
	assert.Empty(t, s.Search("zz", 10))
	assert.Empty(t, s.Search("трактор", 10))
}

func TestLookupDispatch(t *testing.T) {
	s := loadedStore(t)

	t.Run("grouped code hits exact", func(t *testing.T) {
		r := Lookup(s, " 8517 12 00 00 ", 20)
		assert.Equal(t, ModeCode, r.Mode)
		assert.Equal(t, []string{"8517 12 00 00"}, r.Codes())
	})

	t.Run("unknown code falls back to search", func(t *testing.T) {
		r := Lookup(s, "9999999999", 20)
		assert.Equal(t, ModeDescription, r.Mode)
		assert.Empty(t, r.Entries)
	})

	t.Run("partial code is a description", func(t *testing.T) {
		r := Lookup(s, "8517", 20)
		assert.Equal(t, ModeDescription, r.Mode)
	})

	t.Run("text query", func(t *testing.T) {
		r := Lookup(s, "ноутбук", 20)
		assert.Equal(t, ModeDescription, r.Mode)
		require.Len(t, r.Entries, 1)
		assert.Equal(t, "8471300000", r.Entries[0].Code)
	})
}
