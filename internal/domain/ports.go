package domain

import (
	"context"
	"time"
)

// DefaultSearchLimit применяется, когда вызывающая сторона не задала лимит выборки.
const DefaultSearchLimit = 10

// DefaultSlotMinutes — длительность слота записи по умолчанию.
const DefaultSlotMinutes = 30

// StoreGateway — единый контракт доступа к данным магазина. Две реализации:
// живая (управляемая Postgres-совместимая база) и fallback (in-memory подмена
// той же формы). Вызывающая сторона не различает их по ответам — только по
// отдельно публикуемому состоянию здоровья.
type StoreGateway interface {
	// SearchProducts ищет товары по регистронезависимому вхождению запроса
	// в название, бренд или категорию. Возвращает не более limit записей.
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
	// SearchProductsFTS — полнотекстовый вариант поиска. Ранжирование доступно
	// только живому бэкенду; fallback отвечает так же, как SearchProducts.
	SearchProductsFTS(ctx context.Context, query string, limit int) ([]Product, error)
	// GetProductBySKUOrName возвращает товар по складскому коду (точное
	// регистронезависимое совпадение имеет приоритет) либо по вхождению в название.
	GetProductBySKUOrName(ctx context.Context, ident string) (Product, error)

	// CheckAvailability сообщает, свободно ли время для записи.
	CheckAvailability(ctx context.Context, at time.Time, durationMinutes int) (bool, error)
	// CreateAppointment создаёт запись со статусом pending и новым идентификатором.
	CreateAppointment(ctx context.Context, req AppointmentRequest) (Appointment, error)
	// GetAvailableSlots предлагает до пяти слотов на указанную дату.
	GetAvailableSlots(ctx context.Context, date time.Time, serviceType string, durationMinutes int) ([]TimeSlot, error)

	// CreateConversation регистрирует новую беседу по входящему звонку.
	CreateConversation(ctx context.Context, conv Conversation) (Conversation, error)
	// UpdateConversation применяет частичные обновления к беседе по vapi_call_id.
	// Семантика merge идемпотентна: предварительный CreateConversation не обязателен.
	UpdateConversation(ctx context.Context, vapiCallID string, updates map[string]any) (map[string]any, error)
	// UpdateCallCost фиксирует стоимость звонка и её разбивку.
	UpdateCallCost(ctx context.Context, vapiCallID string, costMinor int64, breakdown map[string]any) (map[string]any, error)
	// TrackEvent записывает аналитический сигнал. Контракт fire-and-forget:
	// сбои журналирования проглатываются и не доходят до вызывающей стороны.
	TrackEvent(ctx context.Context, event Event) error

	// GetCustomerByPhone возвращает клиента по номеру телефона.
	GetCustomerByPhone(ctx context.Context, phone string) (Customer, error)
	// GetCustomerOrderHistory возвращает сводки заказов клиента, новые первыми.
	GetCustomerOrderHistory(ctx context.Context, phone string, limit int) ([]OrderSummary, error)
	// SearchCustomersByName ищет клиентов по вхождению в имя.
	SearchCustomersByName(ctx context.Context, name string, limit int) ([]Customer, error)
}

// ConversationTimeline хранит события жизненного цикла беседы.
type ConversationTimeline interface {
	Append(event ConversationEvent) error
	List(vapiCallID string) ([]ConversationEvent, error)
}

// WebhookDeduplicator отсекает повторные доставки webhook-сообщений вендора.
type WebhookDeduplicator interface {
	// FirstSeen регистрирует сообщение и возвращает true, если оно встретилось впервые.
	FirstSeen(record WebhookRecord) (bool, error)
	// DeleteExpired удаляет записи с истёкшим TTL, не более limit за проход.
	DeleteExpired(before time.Time, limit int) (int, error)
}

// DegradedWriteRecorder получает сигнал о каждой записи, принятой fallback-слоем
// без долговременного сохранения. Инжектируется, чтобы потеря данных была
// наблюдаемой в тестах и мониторинге, а не побочным эффектом консольного лога.
type DegradedWriteRecorder interface {
	RecordDegradedWrite(operation, correlationKey string)
}
