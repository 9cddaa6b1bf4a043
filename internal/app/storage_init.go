package app

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/storage/postgres"
)

const storageConnectTimeout = 10 * time.Second

// liveStorage — живое хранилище со всеми репозиториями. Подключение
// ленивое: если база недоступна на старте, репозитории всё равно
// остаются подключёнными к facade, а схема накатывается при первой
// успешной проверке.
type liveStorage struct {
	store    *postgres.Store
	gateway  domain.StoreGateway
	timeline domain.ConversationTimeline
	webhooks domain.WebhookDeduplicator
	logger   *log.Entry

	mu    sync.Mutex
	ready bool
}

// initLiveStorage готовит подключение к Supabase. Возвращает nil без
// ошибки, когда DSN не задан. Если база недоступна, хранилище всё
// равно возвращается вместе с ошибкой: prober продолжит проверять
// живое и вернёт его в строй.
func initLiveStorage(ctx context.Context, dsn string, logger *log.Entry) (*liveStorage, error) {
	if dsn == "" {
		return nil, nil
	}

	store, err := postgres.OpenLazy(dsn)
	if err != nil {
		return nil, err
	}

	s := &liveStorage{
		store:    store,
		gateway:  postgres.NewGateway(store),
		timeline: postgres.NewTimelineRepository(store),
		webhooks: postgres.NewWebhookRepository(store),
		logger:   logger,
	}

	connectCtx, cancel := context.WithTimeout(ctx, storageConnectTimeout)
	defer cancel()
	if err := s.Ping(connectCtx); err != nil {
		return s, err
	}
	return s, nil
}

// Ping реализует gateway.Pinger: проверяет базу и при первом успехе
// накатывает миграции. Пока схема не готова, Ping возвращает ошибку,
// и facade остаётся на fallback-хранилище.
func (s *liveStorage) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return err
	}
	return s.ensureReady(ctx)
}

// Ready сообщает, накачена ли схема живого хранилища.
func (s *liveStorage) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *liveStorage) ensureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		return err
	}
	s.ready = true
	s.logger.Info("connected to live storage, schema is up to date")
	return nil
}

func (s *liveStorage) Close(logger *log.Entry) {
	if s == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close live storage")
	}
}
