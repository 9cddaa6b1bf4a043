package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics содержит метрики слоя доступа к данным магазина.
type GatewayMetrics struct {
	// Операции по источнику ответа (live / fallback)
	operations *prometheus.CounterVec

	// Деградированные записи (приняты, но не сохранены)
	degradedWrites *prometheus.CounterVec

	// Переключения режима facade
	fallbackSwitches prometheus.Counter
	liveRecoveries   prometheus.Counter

	// Результаты фоновой проверки живого бэкенда
	probeResults *prometheus.CounterVec

	// Гистограмма времени поиска по каталогу
	searchDuration prometheus.Histogram

	// Gauge текущего режима: 0 = live, 1 = fallback
	fallbackMode prometheus.Gauge
}

// NewGatewayMetrics создаёт новый экземпляр метрик шлюза данных.
func NewGatewayMetrics() *GatewayMetrics {
	return newGatewayMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newGatewayMetricsWithRegisterer(registerer prometheus.Registerer) *GatewayMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &GatewayMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "voicedesk_gateway_operations_total",
			Help: "Total number of data gateway operations grouped by operation and source.",
		}, []string{"operation", "source"}),
		degradedWrites: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "voicedesk_degraded_writes_total",
			Help: "Total number of writes acknowledged but not persisted in fallback mode.",
		}, []string{"operation"}),
		fallbackSwitches: registerCounter(registerer, prometheus.CounterOpts{
			Name: "voicedesk_fallback_switches_total",
			Help: "Total number of switches from the live store to the fallback store.",
		}),
		liveRecoveries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "voicedesk_live_recoveries_total",
			Help: "Total number of recoveries from fallback back to the live store.",
		}),
		probeResults: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "voicedesk_live_probe_results_total",
			Help: "Results of background live store health probes.",
		}, []string{"result"}),
		searchDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "voicedesk_product_search_duration_seconds",
			Help:    "Duration of product search operations in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		fallbackMode: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "voicedesk_fallback_mode",
			Help: "Whether the gateway currently serves from the fallback store (1) or live (0).",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation фиксирует выполненную операцию шлюза.
func (m *GatewayMetrics) RecordOperation(operation, source string) {
	m.operations.WithLabelValues(operation, source).Inc()
}

// RecordDegradedWrite увеличивает счётчик несохранённых записей.
func (m *GatewayMetrics) RecordDegradedWrite(operation string) {
	m.degradedWrites.WithLabelValues(operation).Inc()
}

// RecordFallbackSwitch фиксирует переход в fallback-режим.
func (m *GatewayMetrics) RecordFallbackSwitch() {
	m.fallbackSwitches.Inc()
	m.fallbackMode.Set(1)
}

// RecordLiveRecovery фиксирует возврат к живому бэкенду.
func (m *GatewayMetrics) RecordLiveRecovery() {
	m.liveRecoveries.Inc()
	m.fallbackMode.Set(0)
}

// RecordProbe фиксирует результат фоновой проверки живого бэкенда.
func (m *GatewayMetrics) RecordProbe(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.probeResults.WithLabelValues(result).Inc()
}

// RecordSearchDuration записывает длительность поиска по каталогу.
func (m *GatewayMetrics) RecordSearchDuration(duration time.Duration) {
	m.searchDuration.Observe(duration.Seconds())
}
