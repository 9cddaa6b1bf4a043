package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const (
	defaultFlushInterval  = 1 * time.Second
	defaultBatchSize      = 100
	defaultCapacity       = 1000
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

var (
	eventsSpooledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicedesk_events_spooled_total",
		Help: "Total number of analytics events accepted into the spool.",
	})
	eventsPublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicedesk_events_publish_attempts_total",
		Help: "Total number of analytics publish attempts grouped by result.",
	}, []string{"result"})
	eventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicedesk_events_dropped_total",
		Help: "Total number of analytics events dropped grouped by reason.",
	}, []string{"reason"})
	eventsPendingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voicedesk_events_pending",
		Help: "Current number of analytics events waiting in the spool.",
	})
)

// Publisher доставляет аналитическое событие во внешний брокер.
type Publisher interface {
	Publish(event domain.Event) error
}

// SpoolerOptions задаёт параметры спулера аналитики.
type SpoolerOptions struct {
	Logger         *log.Entry
	FlushInterval  time.Duration
	BatchSize      int
	Capacity       int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Spooler.
type Option func(*SpoolerOptions)

// WithLogger задаёт logger для спулера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *SpoolerOptions) {
		opts.Logger = logger
	}
}

// WithFlushInterval задаёт частоту выгрузки буфера.
func WithFlushInterval(interval time.Duration) Option {
	return func(opts *SpoolerOptions) {
		opts.FlushInterval = interval
	}
}

// WithBatchSize задаёт размер батча на один проход.
func WithBatchSize(batchSize int) Option {
	return func(opts *SpoolerOptions) {
		opts.BatchSize = batchSize
	}
}

// WithCapacity задаёт вместимость буфера. При переполнении
// вытесняются самые старые события.
func WithCapacity(capacity int) Option {
	return func(opts *SpoolerOptions) {
		opts.Capacity = capacity
	}
}

// WithMaxAttempts задаёт число попыток публикации события.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *SpoolerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *SpoolerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Spooler буферизует аналитические события и в фоне выгружает их
// паблишеру. Контракт fire-and-forget: Track никогда не возвращает
// ошибку вызывающему, потерянные события только считаются в метриках.
type Spooler struct {
	publisher      Publisher
	logger         *log.Entry
	flushInterval  time.Duration
	batchSize      int
	capacity       int
	maxAttempts    int
	retryBaseDelay time.Duration

	mu      sync.Mutex
	pending []domain.Event
}

// NewSpooler создаёт спулер аналитики. При nil-паблишере спулер
// работает вхолостую: события логируются на debug и отбрасываются.
func NewSpooler(publisher Publisher, options ...Option) *Spooler {
	opts := SpoolerOptions{
		FlushInterval:  defaultFlushInterval,
		BatchSize:      defaultBatchSize,
		Capacity:       defaultCapacity,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "events-spooler")
	}

	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Spooler{
		publisher:      publisher,
		logger:         logger,
		flushInterval:  opts.FlushInterval,
		batchSize:      opts.BatchSize,
		capacity:       opts.Capacity,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// Track принимает событие в буфер. Никогда не блокирует и не
// возвращает ошибку.
func (s *Spooler) Track(event domain.Event) {
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	if s.publisher == nil {
		s.logger.WithField("event_type", event.Type).Debug("analytics publisher is not configured, event dropped")
		eventsDroppedTotal.WithLabelValues("no_publisher").Inc()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= s.capacity {
		// Вытесняем самое старое событие, свежие данные ценнее.
		s.pending = s.pending[1:]
		eventsDroppedTotal.WithLabelValues("overflow").Inc()
	}
	s.pending = append(s.pending, event)
	eventsSpooledTotal.Inc()
	eventsPendingGauge.Set(float64(len(s.pending)))
}

// Run запускает периодическую выгрузку буфера до отмены ctx.
func (s *Spooler) Run(ctx context.Context) {
	if s.publisher == nil {
		s.logger.Warn("events spooler is disabled: publisher is nil")
		return
	}

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushOnce(context.Background())
			return
		case <-ticker.C:
			s.FlushOnce(ctx)
		}
	}
}

// FlushOnce выгружает один батч из буфера.
func (s *Spooler) FlushOnce(ctx context.Context) {
	if s.publisher == nil {
		return
	}

	batch := s.takeBatch()
	if len(batch) == 0 {
		return
	}

	for _, event := range batch {
		if ctx.Err() != nil {
			s.requeue(event)
			continue
		}

		if err := s.publishWithRetry(ctx, event); err != nil {
			s.logger.WithError(err).WithField("event_type", event.Type).Error("analytics publish failed after retries")
			eventsDroppedTotal.WithLabelValues("publish_failed").Inc()
		}
	}

	s.mu.Lock()
	eventsPendingGauge.Set(float64(len(s.pending)))
	s.mu.Unlock()
}

func (s *Spooler) takeBatch() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pending)
	if n == 0 {
		return nil
	}
	if n > s.batchSize {
		n = s.batchSize
	}

	batch := make([]domain.Event, n)
	copy(batch, s.pending[:n])
	s.pending = append(s.pending[:0], s.pending[n:]...)
	return batch
}

func (s *Spooler) requeue(event domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= s.capacity {
		eventsDroppedTotal.WithLabelValues("overflow").Inc()
		return
	}
	s.pending = append(s.pending, event)
}

func (s *Spooler) publishWithRetry(ctx context.Context, event domain.Event) error {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.publisher.Publish(event)
		if err == nil {
			eventsPublishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		eventsPublishAttempts.WithLabelValues("retry_error").Inc()

		if attempt >= s.maxAttempts {
			break
		}

		delay := s.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Spooler) retryBackoff(attempt int) time.Duration {
	if s.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return s.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := s.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}
