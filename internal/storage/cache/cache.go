// Package cache кэширует прайсы печати и наценку в Redis поверх основного хранилища.
// Любая ошибка Redis не ломает расчёт: читаем из основного хранилища.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"printshop/internal/service/pricing"
	"printshop/internal/storage"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "printshop:"
	markupKey     = keyPrefix + "markup"
	technologyKey = keyPrefix + "technology:"
)

// Backend: основное хранилище; UpdateMarkup нужен, чтобы сбрасывать кэш наценки.
type Backend interface {
	pricing.Storage
	UpdateMarkup(ctx context.Context, markup float64) error
}

type Storage struct {
	Backend

	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func New(next Backend, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Storage {
	return &Storage{Backend: next, rdb: rdb, ttl: ttl, log: log}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 500 * time.Millisecond,
		ReadTimeout: 500 * time.Millisecond,
	})
}

func (s *Storage) GetTechnologyPrice(ctx context.Context, code string) (*storage.TechnologyPrice, error) {
	const op = "storage.cache.GetTechnologyPrice"

	key := technologyKey + code

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var t storage.TechnologyPrice
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.warn(op, err)
	}

	t, err := s.Backend.GetTechnologyPrice(ctx, code)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(t); err == nil {
		if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.warn(op, err)
		}
	}

	return t, nil
}

func (s *Storage) GetMarkup(ctx context.Context) (float64, error) {
	const op = "storage.cache.GetMarkup"

	raw, err := s.rdb.Get(ctx, markupKey).Result()
	if err == nil {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.warn(op, err)
	}

	markup, err := s.Backend.GetMarkup(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.rdb.Set(ctx, markupKey, strconv.FormatFloat(markup, 'f', -1, 64), s.ttl).Err(); err != nil {
		s.warn(op, err)
	}

	return markup, nil
}

// UpdateMarkup пишет наценку в основное хранилище и сбрасывает кэш.
func (s *Storage) UpdateMarkup(ctx context.Context, markup float64) error {
	const op = "storage.cache.UpdateMarkup"

	if err := s.Backend.UpdateMarkup(ctx, markup); err != nil {
		return err
	}

	if err := s.rdb.Del(ctx, markupKey).Err(); err != nil {
		s.warn(op, err)
	}

	return nil
}

func (s *Storage) warn(op string, err error) {
	s.log.Warn("redis недоступен, читаем из базы",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
