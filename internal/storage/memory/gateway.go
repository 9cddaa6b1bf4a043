package memory

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const (
	// Рабочие часы магазина для генерации слотов: 9:00–17:00, шаг 2 часа.
	slotFirstHour = 9
	slotLastHour  = 17
	slotStepHours = 2
	maxSlots      = 5
)

// gatewayInMemory — fallback-реализация StoreGateway поверх статического
// демонстрационного каталога. Каталог неизменяем после конструирования,
// а все write-операции лишь подтверждают приём данных: каждая такая
// запись — гарантированная потеря данных относительно живого бэкенда
// и обязана оставлять наблюдаемый сигнал через recorder.
type gatewayInMemory struct {
	products  []domain.Product
	customers []domain.Customer
	recorder  domain.DegradedWriteRecorder
	logger    *log.Entry
	idSeq     atomic.Int64
}

// NewGateway возвращает fallback-шлюз с демонстрационными данными.
func NewGateway(recorder domain.DegradedWriteRecorder, logger *log.Entry) domain.StoreGateway {
	if logger == nil {
		logger = log.WithField("component", "memory-gateway")
	}
	return &gatewayInMemory{
		products:  demoCatalog(),
		customers: demoCustomers(),
		recorder:  recorder,
		logger:    logger,
	}
}

// SearchProducts ищет по вхождению запроса в название, бренд или категорию.
// Порядок выдачи — порядок каталога, ранжирования нет.
func (g *gatewayInMemory) SearchProducts(_ context.Context, query string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	result := make([]domain.Product, 0, limit)
	for _, p := range g.products {
		if !p.MatchesQuery(query) {
			continue
		}
		result = append(result, p)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// SearchProductsFTS в fallback-режиме не отличается от подстрочного поиска:
// полнотекстовый индекс есть только у живого бэкенда.
func (g *gatewayInMemory) SearchProductsFTS(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	return g.SearchProducts(ctx, query, limit)
}

// GetProductBySKUOrName возвращает товар по коду либо названию. Точное
// регистронезависимое совпадение SKU имеет приоритет над вхождением в название.
func (g *gatewayInMemory) GetProductBySKUOrName(_ context.Context, ident string) (domain.Product, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return domain.Product{}, domain.ErrProductNotFound
	}

	for _, p := range g.products {
		if p.MatchesSKU(ident) {
			return p, nil
		}
	}

	lower := strings.ToLower(ident)
	for _, p := range g.products {
		if strings.Contains(strings.ToLower(p.Name), lower) {
			return p, nil
		}
	}

	return domain.Product{}, domain.ErrProductNotFound
}

// CheckAvailability в fallback-режиме всегда оптимистична: без живого
// календаря реальная проверка конфликтов невозможна.
func (g *gatewayInMemory) CheckAvailability(_ context.Context, _ time.Time, _ int) (bool, error) {
	return true, nil
}

// CreateAppointment подтверждает бронирование без сохранения. Вызывающая
// сторона обязана считать персистентность best-effort.
func (g *gatewayInMemory) CreateAppointment(_ context.Context, req domain.AppointmentRequest) (domain.Appointment, error) {
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = domain.DefaultSlotMinutes
	}

	appt := domain.Appointment{
		ID:              g.nextID("appt"),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		ServiceType:     req.ServiceType,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
		Status:          domain.AppointmentStatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	g.recordDegradedWrite("create_appointment", appt.ID)
	return appt, nil
}

// GetAvailableSlots предлагает слоты по фиксированной сетке рабочих часов.
// Это заглушка планирования, а не настоящий движок доступности.
func (g *gatewayInMemory) GetAvailableSlots(_ context.Context, date time.Time, serviceType string, durationMinutes int) ([]domain.TimeSlot, error) {
	if durationMinutes <= 0 {
		durationMinutes = domain.DefaultSlotMinutes
	}

	slots := make([]domain.TimeSlot, 0, maxSlots)
	for hour := slotFirstHour; hour <= slotLastHour && len(slots) < maxSlots; hour += slotStepHours {
		starts := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
		slots = append(slots, domain.TimeSlot{
			StartsAt:        starts,
			DurationMinutes: durationMinutes,
			ServiceType:     serviceType,
		})
	}
	return slots, nil
}

// CreateConversation возвращает эхо беседы с новым идентификатором.
func (g *gatewayInMemory) CreateConversation(_ context.Context, conv domain.Conversation) (domain.Conversation, error) {
	now := time.Now().UTC()
	conv.ID = g.nextID("conv")
	if conv.Status == "" {
		conv.Status = domain.ConversationStatusActive
	}
	conv.CreatedAt = now
	conv.UpdatedAt = now

	g.recordDegradedWrite("create_conversation", conv.VapiCallID)
	return conv, nil
}

// UpdateConversation сливает обновления в эхо-ответ. Merge идемпотентен:
// предварительного CreateConversation не требуется.
func (g *gatewayInMemory) UpdateConversation(_ context.Context, vapiCallID string, updates map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		result[k] = v
	}
	result["vapi_call_id"] = vapiCallID
	result["updated_at"] = time.Now().UTC()

	g.recordDegradedWrite("update_conversation", vapiCallID)
	return result, nil
}

// UpdateCallCost возвращает эхо стоимости без какой-либо агрегации.
func (g *gatewayInMemory) UpdateCallCost(_ context.Context, vapiCallID string, costMinor int64, breakdown map[string]any) (map[string]any, error) {
	result := map[string]any{
		"vapi_call_id": vapiCallID,
		"cost_minor":   costMinor,
		"updated_at":   time.Now().UTC(),
	}
	if len(breakdown) > 0 {
		result["breakdown"] = breakdown
	}

	g.recordDegradedWrite("update_call_cost", vapiCallID)
	return result, nil
}

// TrackEvent журналирует сигнал и никогда не возвращает ошибку.
func (g *gatewayInMemory) TrackEvent(_ context.Context, event domain.Event) error {
	g.logger.WithFields(log.Fields{
		"event_type":      event.Type,
		"conversation_id": event.ConversationID,
	}).Debug("event dropped in fallback mode")
	return nil
}

// GetCustomerByPhone ищет клиента среди демонстрационных данных.
func (g *gatewayInMemory) GetCustomerByPhone(_ context.Context, phone string) (domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	for _, c := range g.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

// GetCustomerOrderHistory возвращает демонстрационную историю покупок, новые первыми.
func (g *gatewayInMemory) GetCustomerOrderHistory(_ context.Context, phone string, limit int) ([]domain.OrderSummary, error) {
	history := demoOrderHistory(phone)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// SearchCustomersByName ищет клиентов по вхождению в имя без учёта регистра.
func (g *gatewayInMemory) SearchCustomersByName(_ context.Context, name string, limit int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	result := make([]domain.Customer, 0, limit)
	if needle == "" {
		return result, nil
	}

	for _, c := range g.customers {
		if !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		result = append(result, c)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// nextID генерирует эфемерный идентификатор. Счётчик гарантирует
// уникальность даже при совпадении таймстемпов.
func (g *gatewayInMemory) nextID(prefix string) string {
	return fmt.Sprintf("fallback-%s-%d-%d", prefix, time.Now().UnixNano(), g.idSeq.Add(1))
}

// recordDegradedWrite фиксирует принятую, но не сохранённую запись.
func (g *gatewayInMemory) recordDegradedWrite(operation, correlationKey string) {
	g.logger.WithFields(log.Fields{
		"operation":       operation,
		"correlation_key": correlationKey,
	}).Warn("degraded write: accepted but not persisted")

	if g.recorder != nil {
		g.recorder.RecordDegradedWrite(operation, correlationKey)
	}
}

var _ domain.StoreGateway = (*gatewayInMemory)(nil)
