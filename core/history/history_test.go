package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	l := New(0)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	it := l.Add(Item{Mode: ModeSearch, Preview: "кофе", Codes: []string{"0901 21 00 00"}})

	_, err := uuid.Parse(it.ID)
	require.NoError(t, err)
	assert.Equal(t, fixed, it.Timestamp)

	got, ok := l.Get(it.ID)
	require.True(t, ok)
	assert.Equal(t, it, got)
}

func TestNewestFirstAndBounded(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Add(Item{Mode: ModeText, Preview: fmt.Sprintf("q%d", i)})
	}

	items := l.List()
	require.Len(t, items, 3)
	assert.Equal(t, "q4", items[0].Preview)
	assert.Equal(t, "q3", items[1].Preview)
	assert.Equal(t, "q2", items[2].Preview)
	assert.NotNil(t, items[0].Codes)
}

func TestRemoveAndClear(t *testing.T) {
	l := New(10)
	a := l.Add(Item{Preview: "a"})
	b := l.Add(Item{Preview: "b"})

	assert.True(t, l.Remove(a.ID))
	assert.False(t, l.Remove(a.ID))
	require.Equal(t, 1, l.Len())
	assert.Equal(t, b.ID, l.List()[0].ID)

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.List())
}

func TestDefaultCapacity(t *testing.T) {
	l := New(-1)
	for i := 0; i < DefaultMaxItems+10; i++ {
		l.Add(Item{Preview: "x"})
	}
	assert.Equal(t, DefaultMaxItems, l.Len())
}
