package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/storage/memory"
)

type mapStore struct {
	data    map[string]string
	getErr  error
	setErr  error
	getHits int
	setHits int
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string]string)}
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.getHits++
	if s.getErr != nil {
		return "", false, s.getErr
	}
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.setHits++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

type countingGateway struct {
	domain.StoreGateway
	searches int
}

func (g *countingGateway) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	g.searches++
	return g.StoreGateway.SearchProducts(ctx, query, limit)
}

func TestProductSearchCache_SecondLookupServedFromCache(t *testing.T) {
	inner := &countingGateway{StoreGateway: memory.NewGateway(nil, nil)}
	store := newMapStore()
	c := newWithStore(inner, store)

	first, err := c.SearchProducts(context.Background(), "rtx", 10)
	if err != nil {
		t.Fatalf("cold search failed: %v", err)
	}
	second, err := c.SearchProducts(context.Background(), "RTX", 10)
	if err != nil {
		t.Fatalf("warm search failed: %v", err)
	}

	if inner.searches != 1 {
		t.Fatalf("expected one pass to the gateway, got %d", inner.searches)
	}
	if len(first) != len(second) || first[0].SKU != second[0].SKU {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
}

func TestProductSearchCache_ReadErrorFallsThrough(t *testing.T) {
	inner := &countingGateway{StoreGateway: memory.NewGateway(nil, nil)}
	store := newMapStore()
	store.getErr = errors.New("connection refused")
	c := newWithStore(inner, store)

	hits, err := c.SearchProducts(context.Background(), "rtx", 10)
	if err != nil {
		t.Fatalf("search must survive cache outage: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected catalog hits")
	}
	if inner.searches != 1 {
		t.Fatalf("expected gateway pass, got %d", inner.searches)
	}
}

func TestProductSearchCache_WriteErrorIsIgnored(t *testing.T) {
	inner := &countingGateway{StoreGateway: memory.NewGateway(nil, nil)}
	store := newMapStore()
	store.setErr = errors.New("readonly replica")
	c := newWithStore(inner, store)

	if _, err := c.SearchProducts(context.Background(), "rtx", 10); err != nil {
		t.Fatalf("search must survive cache write failure: %v", err)
	}
}

func TestProductSearchCache_FTSKeyedSeparately(t *testing.T) {
	inner := memory.NewGateway(nil, nil)
	store := newMapStore()
	c := newWithStore(inner, store)

	if _, err := c.SearchProducts(context.Background(), "samsung", 10); err != nil {
		t.Fatalf("substring search failed: %v", err)
	}
	if _, err := c.SearchProductsFTS(context.Background(), "samsung", 10); err != nil {
		t.Fatalf("fts search failed: %v", err)
	}
	if len(store.data) != 2 {
		t.Fatalf("expected two cache entries, got %d", len(store.data))
	}
}
