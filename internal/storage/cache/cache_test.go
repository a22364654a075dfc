package cache

import (
	"context"
	"io"
	"log/slog"
	"printshop/internal/storage"
	"printshop/internal/storage/memory"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Порт 1 закрыт: любая команда Redis падает сразу, кэш должен уходить в хранилище.
func unreachable(t *testing.T) *Storage {
	t.Helper()

	backend := memory.New(memory.Catalog{
		Technologies: []storage.TechnologyPrice{{Code: "digital", PriceColorSingle: 12}},
		Markup:       2.5,
	})

	rdb := NewClient("127.0.0.1:1", "", 0)
	t.Cleanup(func() { rdb.Close() })

	return New(backend, rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCache_FallsThroughWhenRedisDown(t *testing.T) {
	s := unreachable(t)
	ctx := context.Background()

	tech, err := s.GetTechnologyPrice(ctx, "digital")
	require.NoError(t, err)
	assert.Equal(t, 12.0, tech.PriceColorSingle)

	markup, err := s.GetMarkup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.5, markup)
}

func TestCache_NotFoundIsNotHidden(t *testing.T) {
	_, err := unreachable(t).GetTechnologyPrice(context.Background(), "offset")

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCache_UpdateMarkupReachesBackend(t *testing.T) {
	s := unreachable(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateMarkup(ctx, 3))

	markup, err := s.GetMarkup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, markup)
}

func TestCache_PassThroughMethods(t *testing.T) {
	s := unreachable(t)

	// остальные методы идут в хранилище напрямую
	_, err := s.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
