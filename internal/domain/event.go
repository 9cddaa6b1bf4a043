package domain

import "time"

// Event — аналитический сигнал вида (тип, свойства, ссылка на беседу).
// Отправляется по принципу fire-and-forget и не имеет собственной
// идентичности за пределами журнала.
type Event struct {
	Type string
	// Properties — произвольные атрибуты события.
	Properties map[string]any
	// ConversationID — опциональная ссылка на беседу.
	ConversationID string
	Occurred       time.Time
}
