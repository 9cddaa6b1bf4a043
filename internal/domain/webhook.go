package domain

import "time"

// WebhookRecord фиксирует обработанное webhook-сообщение голосовой
// платформы. Вендор повторяет доставку при таймаутах, поэтому записи
// используются для дедупликации по идентификатору сообщения.
type WebhookRecord struct {
	MessageID string
	EventType string
	TTLAt     time.Time
	CreatedAt time.Time
}
