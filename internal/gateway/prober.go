package gateway

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/metrics"
)

const defaultProbeInterval = 30 * time.Second

// Pinger проверяет доступность живого бэкенда.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProberOptions задаёт параметры фоновой проверки живого бэкенда.
type ProberOptions struct {
	Logger   *log.Entry
	Interval time.Duration
}

// ProberOption настраивает Prober.
type ProberOption func(*ProberOptions)

// WithLogger задаёт logger для prober-а.
func WithLogger(logger *log.Entry) ProberOption {
	return func(opts *ProberOptions) {
		opts.Logger = logger
	}
}

// WithInterval задаёт интервал между проверками.
func WithInterval(interval time.Duration) ProberOption {
	return func(opts *ProberOptions) {
		opts.Interval = interval
	}
}

// Prober периодически проверяет живой бэкенд и переключает facade
// обратно в живой режим после восстановления. Выбор fallback таким
// образом не является необратимым для процесса.
type Prober struct {
	facade   *Facade
	pinger   Pinger
	metrics  *metrics.GatewayMetrics
	logger   *log.Entry
	interval time.Duration
}

// NewProber создаёт prober для заданного facade.
func NewProber(facade *Facade, pinger Pinger, m *metrics.GatewayMetrics, options ...ProberOption) *Prober {
	opts := ProberOptions{
		Interval: defaultProbeInterval,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "live-store-prober")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultProbeInterval
	}

	return &Prober{
		facade:   facade,
		pinger:   pinger,
		metrics:  m,
		logger:   logger,
		interval: opts.Interval,
	}
}

// Run запускает периодические проверки до отмены ctx.
func (p *Prober) Run(ctx context.Context) {
	if p.pinger == nil || p.facade == nil || p.facade.live == nil {
		p.logger.Info("live store prober is disabled: no live store configured")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	err := p.pinger.Ping(ctx)
	if errors.Is(err, context.Canceled) {
		return
	}

	if p.metrics != nil {
		p.metrics.RecordProbe(err == nil)
	}

	switch {
	case err == nil && p.facade.Degraded():
		p.facade.markRecovered()
	case err != nil && !p.facade.Degraded():
		p.facade.markDegraded("probe", err)
	case err != nil:
		p.logger.WithError(err).Debug("live store still unreachable")
	}
}
