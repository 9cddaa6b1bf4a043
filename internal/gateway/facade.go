package gateway

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/metrics"
)

// Source идентифицирует, какая реализация обслужила операцию.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Facade выбирает между живым бэкендом и fallback-хранилищем, сохраняя
// единый контракт StoreGateway. Ответы обеих реализаций неразличимы по
// форме: деградация видна только через состояние здоровья и метрики.
//
// Правила маршрутизации:
//   - живой бэкенд не сконфигурирован -> постоянный fallback;
//   - ошибка живого вызова (кроме "запись не найдена") -> ответ отдаёт
//     fallback, facade переходит в деградированный режим;
//   - фоновый prober возвращает facade в живой режим после восстановления.
type Facade struct {
	live     domain.StoreGateway
	fallback domain.StoreGateway
	metrics  *metrics.GatewayMetrics
	logger   *log.Entry
	degraded atomic.Bool
}

// NewFacade собирает facade. live может быть nil — тогда каждый вызов
// обслуживает fallback и facade стартует в деградированном режиме.
func NewFacade(live, fallback domain.StoreGateway, m *metrics.GatewayMetrics, logger *log.Entry) *Facade {
	if logger == nil {
		logger = log.WithField("component", "gateway-facade")
	}

	f := &Facade{
		live:     live,
		fallback: fallback,
		metrics:  m,
		logger:   logger,
	}
	if live == nil {
		f.degraded.Store(true)
		if m != nil {
			m.RecordFallbackSwitch()
		}
		logger.Warn("live store is not configured, serving from fallback")
	}
	return f
}

// Degraded сообщает, обслуживаются ли запросы из fallback-хранилища.
func (f *Facade) Degraded() bool {
	return f.degraded.Load()
}

// Source возвращает текущий источник ответов.
func (f *Facade) Source() string {
	if f.Degraded() {
		return SourceFallback
	}
	return SourceLive
}

// MarkDegraded переводит facade в fallback-режим извне, например когда
// живое хранилище не прошло проверку при старте процесса. Prober вернёт
// живой режим, как только бэкенд ответит.
func (f *Facade) MarkDegraded(err error) {
	f.markDegraded("startup_check", err)
}

// useLive решает, стоит ли направлять вызов в живой бэкенд.
func (f *Facade) useLive() bool {
	return f.live != nil && !f.degraded.Load()
}

// markDegraded переводит facade в fallback-режим после ошибки живого вызова.
func (f *Facade) markDegraded(operation string, err error) {
	if f.degraded.CompareAndSwap(false, true) {
		f.logger.WithError(err).WithField("operation", operation).
			Warn("live store call failed, switching to fallback")
		if f.metrics != nil {
			f.metrics.RecordFallbackSwitch()
		}
		return
	}
	f.logger.WithError(err).WithField("operation", operation).
		Debug("live store call failed while already degraded")
}

// markRecovered возвращает facade в живой режим. Вызывается prober-ом.
func (f *Facade) markRecovered() {
	if f.degraded.CompareAndSwap(true, false) {
		f.logger.Info("live store recovered, switching back from fallback")
		if f.metrics != nil {
			f.metrics.RecordLiveRecovery()
		}
	}
}

// recordOperation фиксирует операцию и её источник в метриках.
func (f *Facade) recordOperation(operation, source string) {
	if f.metrics != nil {
		f.metrics.RecordOperation(operation, source)
	}
}

// failover решает, нужно ли после ошибки живого вызова уходить в fallback.
// Ошибки класса "запись не найдена" — валидные ответы живого бэкенда,
// деградацию они не запускают.
func (f *Facade) failover(operation string, err error) bool {
	if err == nil || domain.IsNotFound(err) {
		return false
	}
	f.markDegraded(operation, err)
	return true
}

// SearchProducts направляет поиск в живой бэкенд, при сбое — в fallback.
func (f *Facade) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	const op = "search_products"
	started := time.Now()
	defer func() {
		if f.metrics != nil {
			f.metrics.RecordSearchDuration(time.Since(started))
		}
	}()

	if f.useLive() {
		products, err := f.live.SearchProducts(ctx, query, limit)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return products, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.SearchProducts(ctx, query, limit)
}

// SearchProductsFTS — полнотекстовый поиск; в fallback-режиме неотличим
// от подстрочного.
func (f *Facade) SearchProductsFTS(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	const op = "search_products_fts"
	if f.useLive() {
		products, err := f.live.SearchProductsFTS(ctx, query, limit)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return products, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.SearchProductsFTS(ctx, query, limit)
}

// GetProductBySKUOrName возвращает товар по коду или названию.
func (f *Facade) GetProductBySKUOrName(ctx context.Context, ident string) (domain.Product, error) {
	const op = "get_product"
	if f.useLive() {
		product, err := f.live.GetProductBySKUOrName(ctx, ident)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return product, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.GetProductBySKUOrName(ctx, ident)
}

// CheckAvailability проверяет доступность времени для записи.
func (f *Facade) CheckAvailability(ctx context.Context, at time.Time, durationMinutes int) (bool, error) {
	const op = "check_availability"
	if f.useLive() {
		available, err := f.live.CheckAvailability(ctx, at, durationMinutes)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return available, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.CheckAvailability(ctx, at, durationMinutes)
}

// CreateAppointment создаёт запись на визит.
func (f *Facade) CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, error) {
	const op = "create_appointment"
	if f.useLive() {
		appt, err := f.live.CreateAppointment(ctx, req)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return appt, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.CreateAppointment(ctx, req)
}

// GetAvailableSlots предлагает свободные слоты на дату.
func (f *Facade) GetAvailableSlots(ctx context.Context, date time.Time, serviceType string, durationMinutes int) ([]domain.TimeSlot, error) {
	const op = "get_available_slots"
	if f.useLive() {
		slots, err := f.live.GetAvailableSlots(ctx, date, serviceType, durationMinutes)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return slots, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.GetAvailableSlots(ctx, date, serviceType, durationMinutes)
}

// CreateConversation регистрирует новую беседу.
func (f *Facade) CreateConversation(ctx context.Context, conv domain.Conversation) (domain.Conversation, error) {
	const op = "create_conversation"
	if f.useLive() {
		created, err := f.live.CreateConversation(ctx, conv)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return created, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.CreateConversation(ctx, conv)
}

// UpdateConversation применяет частичные обновления по vapi_call_id.
func (f *Facade) UpdateConversation(ctx context.Context, vapiCallID string, updates map[string]any) (map[string]any, error) {
	const op = "update_conversation"
	if f.useLive() {
		echo, err := f.live.UpdateConversation(ctx, vapiCallID, updates)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return echo, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.UpdateConversation(ctx, vapiCallID, updates)
}

// UpdateCallCost фиксирует стоимость звонка.
func (f *Facade) UpdateCallCost(ctx context.Context, vapiCallID string, costMinor int64, breakdown map[string]any) (map[string]any, error) {
	const op = "update_call_cost"
	if f.useLive() {
		echo, err := f.live.UpdateCallCost(ctx, vapiCallID, costMinor, breakdown)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return echo, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.UpdateCallCost(ctx, vapiCallID, costMinor, breakdown)
}

// TrackEvent записывает аналитический сигнал. Ошибки живого вызова не
// доходят до вызывающей стороны: контракт fire-and-forget.
func (f *Facade) TrackEvent(ctx context.Context, event domain.Event) error {
	const op = "track_event"
	if f.useLive() {
		err := f.live.TrackEvent(ctx, event)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return nil
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.TrackEvent(ctx, event)
}

// GetCustomerByPhone возвращает клиента по номеру телефона.
func (f *Facade) GetCustomerByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	const op = "get_customer"
	if f.useLive() {
		customer, err := f.live.GetCustomerByPhone(ctx, phone)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return customer, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.GetCustomerByPhone(ctx, phone)
}

// GetCustomerOrderHistory возвращает историю покупок клиента.
func (f *Facade) GetCustomerOrderHistory(ctx context.Context, phone string, limit int) ([]domain.OrderSummary, error) {
	const op = "get_order_history"
	if f.useLive() {
		history, err := f.live.GetCustomerOrderHistory(ctx, phone, limit)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return history, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.GetCustomerOrderHistory(ctx, phone, limit)
}

// SearchCustomersByName ищет клиентов по имени.
func (f *Facade) SearchCustomersByName(ctx context.Context, name string, limit int) ([]domain.Customer, error) {
	const op = "search_customers"
	if f.useLive() {
		customers, err := f.live.SearchCustomersByName(ctx, name, limit)
		if !f.failover(op, err) {
			f.recordOperation(op, SourceLive)
			return customers, err
		}
	}
	f.recordOperation(op, SourceFallback)
	return f.fallback.SearchCustomersByName(ctx, name, limit)
}

var _ domain.StoreGateway = (*Facade)(nil)
