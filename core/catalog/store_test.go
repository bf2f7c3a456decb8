package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			Code:     "8517120000",
			Name:     "Телефоны мобильные, включая смартфоны",
			Section:  "XVI",
			Keywords: []string{"смартфон", "телефон", "мобильный"},
			Category: "Электроника",
		},
		{
			Code:     "8471300000",
			Name:     "Машины вычислительные портативные, ноутбуки",
			Section:  "XVI",
			Keywords: []string{"ноутбук", "компьютер"},
			Category: "Электроника",
		},
		{
			Code:     "6302310000",
			Name:     "Белье постельное из хлопка",
			Section:  "XI",
			Keywords: []string{"постельное", "хлопок"},
			Category: "Текстиль",
		},
		{
			Code:     "0901210000",
			Name:     "Кофе жареный",
			Section:  "II",
			Keywords: []string{"кофе"},
			Category: "Продукты питания",
		},
	}
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.Load(sampleEntries())
	require.Equal(t, 4, s.Len())
	return s
}

func TestFindByCode(t *testing.T) {
	s := loadedStore(t)

	t.Run("bare and grouped forms match", func(t *testing.T) {
		for _, e := range sampleEntries() {
			bare, ok := s.FindByCode(e.Code)
			require.True(t, ok)
			grouped, ok := s.FindByCode(e.Display())
			require.True(t, ok)
			assert.Equal(t, bare, grouped)
		}
	})

	t.Run("miss is not an error", func(t *testing.T) {
		_, ok := s.FindByCode("9999 99 99 99")
		assert.False(t, ok)
	})

	t.Run("stored codes are normalized", func(t *testing.T) {
		s2 := NewStore()
		s2.Load([]Entry{{Code: "8517 12 00 00", Name: "x"}})
		e, ok := s2.FindByCode("8517120000")
		require.True(t, ok)
		assert.Equal(t, "8517120000", e.Code)
		assert.Equal(t, "8517 12 00 00", e.Display())
		assert.Equal(t, "8517", e.Position())
		assert.Equal(t, "85", e.Group())
		assert.Equal(t, "851712", e.Subsection())
		assert.Equal(t, "8517120000", e.Subsubsection())
	})
}

func TestLoadReplacesContents(t *testing.T) {
	s := loadedStore(t)
	s.Load([]Entry{{Code: "9403100000", Name: "Мебель металлическая", Category: "Мебель"}})

	assert.Equal(t, 1, s.Len())
	_, ok := s.FindByCode("8517120000")
	assert.False(t, ok)
}

func TestLoadDuplicatesKeepLastContent(t *testing.T) {
	s := NewStore()
	s.Load([]Entry{
		{Code: "8517120000", Name: "first"},
		{Code: "6302310000", Name: "linen"},
		{Code: "8517 12 00 00", Name: "second"},
	})

	require.Equal(t, 2, s.Len())
	exported := s.Export()
	assert.Equal(t, "second", exported[0].Name)
	assert.Equal(t, "linen", exported[1].Name)
}

func TestUpsert(t *testing.T) {
	t.Run("replaces instead of duplicating", func(t *testing.T) {
		s := NewStore()
		assert.True(t, s.Upsert(Entry{Code: "8517120000", Name: "old"}))
		assert.False(t, s.Upsert(Entry{Code: "8517 12 00 00", Name: "new"}))

		assert.Equal(t, 1, s.Len())
		e, ok := s.FindByCode("8517120000")
		require.True(t, ok)
		assert.Equal(t, "new", e.Name)
	})

	t.Run("merges populated fields and keeps position", func(t *testing.T) {
		s := loadedStore(t)
		rate := decimal.NewFromInt(5)
		s.Upsert(Entry{Code: "6302310000", Notes: "из хлопка", DutyRate: &rate})

		exported := s.Export()
		require.Len(t, exported, 4)
		e := exported[2]
		assert.Equal(t, "6302310000", e.Code)
		assert.Equal(t, "Белье постельное из хлопка", e.Name)
		assert.Equal(t, "Текстиль", e.Category)
		assert.Equal(t, []string{"постельное", "хлопок"}, e.Keywords)
		assert.Equal(t, "из хлопка", e.Notes)
		require.NotNil(t, e.DutyRate)
		assert.True(t, e.DutyRate.Equal(rate))
	})

	t.Run("merged entry is searchable by new name", func(t *testing.T) {
		s := loadedStore(t)
		s.Upsert(Entry{Code: "0901210000", Name: "Чай черный"})
		got := s.Search("чай", 10)
		require.Len(t, got, 1)
		assert.Equal(t, "0901210000", got[0].Code)
	})
}

func TestExportIsACopy(t *testing.T) {
	s := loadedStore(t)
	exported := s.Export()
	exported[0].Name = "mutated"
	exported[0].Keywords[0] = "mutated"

	e, _ := s.FindByCode("8517120000")
	assert.Equal(t, "Телефоны мобильные, включая смартфоны", e.Name)
	assert.Equal(t, "смартфон", e.Keywords[0])
}

func TestFindByCategory(t *testing.T) {
	s := loadedStore(t)

	got := s.FindByCategory("электро", 0)
	require.Len(t, got, 2)
	assert.Equal(t, "8517120000", got[0].Code)
	assert.Equal(t, "8471300000", got[1].Code)

	got = s.FindByCategory("ЭЛЕКТРОНИКА", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "8517120000", got[0].Code)

	assert.Empty(t, s.FindByCategory("мебель", 5))
}

func TestStats(t *testing.T) {
	s := loadedStore(t)
	assert.Equal(t, Stats{TotalCodes: 4, Categories: 3, Sections: 3}, s.Stats())

	s.Clear()
	assert.Equal(t, Stats{}, s.Stats())
}

func TestConcurrentReadsDuringReload(t *testing.T) {
	s := NewStore()
	gen := func(n int, name string) []Entry {
		out := make([]Entry, n)
		for i := range out {
			out[i] = Entry{Code: fmt.Sprintf("%010d", i+1), Name: name, Category: name}
		}
		return out
	}
	s.Load(gen(100, "alpha"))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				exported := s.Export()
				if len(exported) == 0 {
					continue
				}
				name := exported[0].Name
				for _, e := range exported {
					if e.Name != name {
						t.Errorf("mixed generations: %s and %s", name, e.Name)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			s.Load(gen(100, "beta"))
		} else {
			s.Load(gen(100, "alpha"))
		}
	}
	close(stop)
	wg.Wait()
}

func TestConcurrentReadsDuringUpsert(t *testing.T) {
	s := NewStore()
	initial := make([]Entry, 100)
	for i := range initial {
		initial[i] = Entry{Code: fmt.Sprintf("%010d", i+1), Name: "gen0", Category: "gen0"}
	}
	s.Load(initial)

	check := func(entries []Entry) string {
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			if e.Name != e.Category {
				return fmt.Sprintf("torn entry %s: name %q category %q", e.Code, e.Name, e.Category)
			}
			if seen[e.Code] {
				return "duplicate code " + e.Code
			}
			seen[e.Code] = true
		}
		return ""
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0
			for {
				select {
				case <-stop:
					return
				default:
				}
				exported := s.Export()
				if len(exported) < last {
					t.Errorf("catalog shrank from %d to %d", last, len(exported))
					return
				}
				last = len(exported)
				if msg := check(exported); msg != "" {
					t.Error(msg)
					return
				}
				if msg := check(s.Search("gen", 0)); msg != "" {
					t.Error(msg)
					return
				}
				if msg := check(s.FindByCategory("gen", 0)); msg != "" {
					t.Error(msg)
					return
				}
			}
		}()
	}

	for i := 1; i <= 200; i++ {
		gen := fmt.Sprintf("gen%d", i)
		s.Upsert(Entry{Code: fmt.Sprintf("%010d", 100+i), Name: gen, Category: gen})
		s.Upsert(Entry{Code: fmt.Sprintf("%010d", i%100+1), Name: gen, Category: gen})
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 300, s.Len())
	assert.Empty(t, check(s.Export()))
}
