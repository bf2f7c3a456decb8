package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tariff-duty/adapters/ingest"
	"tariff-duty/core/catalog"
	"tariff-duty/internal/logging"
)

func TestReloaderPicksUpChanges(t *testing.T) {
	logging.Nop()
	dir := t.TempDir()
	path := filepath.Join(dir, "tnved.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"code":"0901210000","name":"Кофе"}]`), 0o644))

	store := catalog.NewStore()
	var reloads atomic.Int32
	r := NewReloader(path, store).WithDebounce(20 * time.Millisecond)
	r.OnReload = func(ingest.Report, error) { reloads.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	body := []byte(`[{"code":"8517120000","name":"Телефоны"},{"code":"8471300000","name":"Ноутбуки"}]`)
	require.Eventually(t, func() bool {
		_ = os.WriteFile(other, []byte("ignored"), 0o644)
		_ = os.WriteFile(path, body, 0o644)
		return store.Len() == 2
	}, 5*time.Second, 100*time.Millisecond)

	_, ok := store.FindByCode("8517 12 00 00")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop")
	}
}

func TestReloaderKeepsCatalogOnBadFile(t *testing.T) {
	logging.Nop()
	path := filepath.Join(t.TempDir(), "tnved.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	store := catalog.NewStore()
	store.Load([]catalog.Entry{{Code: "0901210000", Name: "Кофе"}})

	failures := make(chan error, 16)
	r := NewReloader(path, store).WithDebounce(10 * time.Millisecond)
	r.OnReload = func(_ ingest.Report, err error) {
		if err == nil {
			return
		}
		select {
		case failures <- err:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"code":`), 0o644)
		return len(failures) > 0
	}, 5*time.Second, 100*time.Millisecond)

	assert.Equal(t, 1, store.Len())
}

func TestRunFailsOnMissingDirectory(t *testing.T) {
	logging.Nop()
	r := NewReloader(filepath.Join(t.TempDir(), "absent", "tnved.json"), catalog.NewStore())
	err := r.Run(context.Background())
	assert.Error(t, err)
}
