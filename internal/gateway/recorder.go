package gateway

import (
	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/metrics"
)

// MetricsRecorder доводит degraded-write сигналы fallback-хранилища
// до prometheus. Журналирование самих потерь делает fallback-слой.
type MetricsRecorder struct {
	metrics *metrics.GatewayMetrics
}

// NewMetricsRecorder создаёт recorder поверх метрик шлюза.
func NewMetricsRecorder(m *metrics.GatewayMetrics) *MetricsRecorder {
	return &MetricsRecorder{metrics: m}
}

// RecordDegradedWrite фиксирует несохранённую запись в метриках.
func (r *MetricsRecorder) RecordDegradedWrite(operation, _ string) {
	if r.metrics != nil {
		r.metrics.RecordDegradedWrite(operation)
	}
}

var _ domain.DegradedWriteRecorder = (*MetricsRecorder)(nil)
