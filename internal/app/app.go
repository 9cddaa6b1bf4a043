package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/cache"
	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/gateway"
	healthcheck "github.com/vladislavdragonenkov/voicedesk/internal/health"
	"github.com/vladislavdragonenkov/voicedesk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/voicedesk/internal/metrics"
	"github.com/vladislavdragonenkov/voicedesk/internal/service/events"
	"github.com/vladislavdragonenkov/voicedesk/internal/service/httpapi"
	"github.com/vladislavdragonenkov/voicedesk/internal/service/webhook"
	"github.com/vladislavdragonenkov/voicedesk/internal/storage/memory"
	"github.com/vladislavdragonenkov/voicedesk/internal/vapi"
	"github.com/vladislavdragonenkov/voicedesk/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает и запускает сервис: шлюз данных с резервным
// хранилищем, публичный JSON API и служебный сервер с метриками.
// Блокируется до отмены ctx или фатальной ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	applyLogLevel(cfg.LogLevel)
	cfg.WarnOnMissing(logger)

	gatewayMetrics := metrics.NewGatewayMetrics()
	recorder := gateway.NewMetricsRecorder(gatewayMetrics)

	// Живое хранилище опционально: без него сервис честно стартует
	// на резервном in-memory каталоге. При недоступной на старте базе
	// хранилище остаётся подключённым, prober дождётся её возвращения.
	live, liveErr := initLiveStorage(ctx, cfg.SupabaseDBURL, logger)
	if liveErr != nil {
		logger.WithError(liveErr).Warn("live storage unavailable, starting on fallback")
	}
	defer live.Close(logger)

	fallback := memory.NewGateway(recorder, nil)

	var (
		liveGateway domain.StoreGateway
		livePinger  gateway.Pinger
	)
	if live != nil {
		liveGateway = live.gateway
		livePinger = live
	}

	facade := gateway.NewFacade(liveGateway, fallback, gatewayMetrics, nil)
	if live != nil && !live.Ready() {
		facade.MarkDegraded(liveErr)
	}

	prober := gateway.NewProber(facade, livePinger, gatewayMetrics,
		gateway.WithInterval(cfg.ProbeInterval),
	)
	go prober.Run(ctx)

	// Кэш поиска включается только при настроенном Redis.
	var store domain.StoreGateway = facade
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.WithError(err).Warn("failed to close redis client")
			}
		}()
		store = cache.NewProductSearchCache(facade, redisClient)
		logger.WithField("addr", cfg.RedisAddr).Info("product search cache enabled")
	}

	// Таймлайн и дедупликация webhook живут рядом с основным
	// хранилищем; без живой базы — в памяти процесса.
	var (
		timeline   domain.ConversationTimeline
		webhookDed domain.WebhookDeduplicator
	)
	if live != nil {
		timeline = live.timeline
		webhookDed = live.webhooks
	} else {
		timeline = memory.NewTimelineRepository()
		webhookDed = memory.NewWebhookRepository()
	}

	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	var spooler *events.Spooler
	if producer != nil {
		spooler = events.NewSpooler(kafka.NewAnalyticsPublisher(producer, cfg.AnalyticsTopic))
		go spooler.Run(ctx)
	}

	tracker := &fanoutTracker{
		gateway: facade,
		spooler: spooler,
		logger:  logger,
	}

	webhookSvc := webhook.NewService(facade, webhookDed, timeline, tracker, nil)

	cleanupWorker := webhook.NewCleanupWorker(webhookDed)
	go cleanupWorker.Run(ctx)

	handler := httpapi.NewHandler(store, webhookSvc, timeline, httpapi.PublicConfig{
		AssistantName: cfg.AssistantName,
		Language:      cfg.Language,
		StoreName:     cfg.StoreName,
		AssistantID:   cfg.VapiAssistantID,
	}, nil)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		ReleaseMode:    true,
	})

	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("storage", healthcheck.NewGatewayChecker("storage", facade))
	if redisClient != nil {
		healthHandler.RegisterChecker("redis", healthcheck.NewOptionalPingChecker("redis", redisPinger{client: redisClient}))
	}
	if cfg.VapiAPIKey != "" {
		vapiClient := vapi.NewClient(cfg.VapiAPIKey)
		healthHandler.RegisterChecker("vapi", healthcheck.NewOptionalPingChecker("vapi", vapiClient))
	}

	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("JSON API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		if spooler != nil {
			// Последний шанс отдать накопленную аналитику.
			spooler.FlushOnce(context.Background())
		}
		closeKafka(producer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		closeKafka(producer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// fanoutTracker сохраняет событие через шлюз данных и параллельно
// отдаёт его спулеру аналитики.
type fanoutTracker struct {
	gateway domain.StoreGateway
	spooler *events.Spooler
	logger  *log.Entry
}

func (t *fanoutTracker) Track(event domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := t.gateway.TrackEvent(ctx, event); err != nil {
		t.logger.WithError(err).Debug("failed to persist analytics event")
	}
	if t.spooler != nil {
		t.spooler.Track(event)
	}
}

// redisPinger адаптирует go-redis клиент под health.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// startOpsServer запускает служебный HTTP-сервер: метрики и health checks.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

func applyLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
