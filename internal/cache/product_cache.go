package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const defaultSearchTTL = 2 * time.Minute

// searchStore — минимальный контракт ключ-значение для кэша поиска.
// Выделен в интерфейс, чтобы декоратор можно было тестировать без
// подключения к Redis.
type searchStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisSearchStore struct {
	rdb *redis.Client
}

func (s *redisSearchStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisSearchStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// ProductSearchCache кэширует результаты поиска товаров поверх шлюза
// данных. Промахи и ошибки кэша прозрачны для вызывающего: при любой
// проблеме запрос уходит в нижний слой, а ошибка пишется в лог.
type ProductSearchCache struct {
	domain.StoreGateway

	store  searchStore
	ttl    time.Duration
	logger *log.Entry
}

// Option настраивает кэш при создании.
type Option func(*ProductSearchCache)

// WithTTL задаёт время жизни закэшированных результатов.
func WithTTL(ttl time.Duration) Option {
	return func(c *ProductSearchCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger подменяет логгер по умолчанию.
func WithLogger(logger *log.Entry) Option {
	return func(c *ProductSearchCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewProductSearchCache оборачивает шлюз кэшем на go-redis.
func NewProductSearchCache(next domain.StoreGateway, rdb *redis.Client, opts ...Option) *ProductSearchCache {
	return newWithStore(next, &redisSearchStore{rdb: rdb}, opts...)
}

func newWithStore(next domain.StoreGateway, store searchStore, opts ...Option) *ProductSearchCache {
	c := &ProductSearchCache{
		StoreGateway: next,
		store:        store,
		ttl:          defaultSearchTTL,
		logger:       log.WithField("component", "product_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchProducts сначала смотрит в кэш и только затем в нижний слой.
func (c *ProductSearchCache) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return c.cached(ctx, cacheKey("search", query, limit), func() ([]domain.Product, error) {
		return c.StoreGateway.SearchProducts(ctx, query, limit)
	})
}

// SearchProductsFTS кэшируется отдельно от подстрочного поиска,
// потому что движки дают разные результаты на одном запросе.
func (c *ProductSearchCache) SearchProductsFTS(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return c.cached(ctx, cacheKey("fts", query, limit), func() ([]domain.Product, error) {
		return c.StoreGateway.SearchProductsFTS(ctx, query, limit)
	})
}

func (c *ProductSearchCache) cached(ctx context.Context, key string, load func() ([]domain.Product, error)) ([]domain.Product, error) {
	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.WithError(err).Warn("cache read failed, falling through")
	} else if ok {
		var hits []domain.Product
		if err := json.Unmarshal([]byte(raw), &hits); err == nil {
			return hits, nil
		}
		c.logger.WithField("key", key).Warn("cache entry is not decodable, ignoring")
	}

	hits, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(hits); err == nil {
		if err := c.store.Set(ctx, key, string(raw), c.ttl); err != nil {
			c.logger.WithError(err).Warn("cache write failed")
		}
	}
	return hits, nil
}

func cacheKey(kind, query string, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("voicedesk:products:%s:%s:%d", kind, normalized, limit)
}
