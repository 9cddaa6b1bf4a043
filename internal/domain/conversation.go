package domain

import "time"

// ConversationStatus описывает состояние звонка на стороне ассистента.
type ConversationStatus string

const (
	// ConversationStatusActive — звонок идёт прямо сейчас.
	ConversationStatusActive ConversationStatus = "active"
	// ConversationStatusCompleted — звонок завершён штатно.
	ConversationStatusCompleted ConversationStatus = "completed"
	// ConversationStatusFailed — звонок оборвался или завершился ошибкой вендора.
	ConversationStatusFailed ConversationStatus = "failed"
)

// Conversation представляет одну беседу голосового ассистента с клиентом.
// Корреляционный ключ для всех последующих обновлений — VapiCallID,
// внешний идентификатор звонка от голосовой платформы.
type Conversation struct {
	ID          string
	VapiCallID  string
	PhoneNumber string
	Status      ConversationStatus
	// Metadata — произвольные атрибуты звонка (язык, выбранный ассистент и т.п.).
	Metadata map[string]any
	// CostMinor — стоимость звонка в минимальных денежных единицах, заполняется по окончании.
	CostMinor int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConversationEvent описывает событие в жизненном цикле беседы
// (создание, смена статуса, отчёт о стоимости).
type ConversationEvent struct {
	VapiCallID string
	Type       string
	Reason     string
	Occurred   time.Time
}

// ValidateInvariants проверяет обязательные поля беседы.
func (c *Conversation) ValidateInvariants() []error {
	var errs []error

	if c.VapiCallID == "" {
		errs = append(errs, ErrCallIDRequired)
	}
	if c.CostMinor < 0 {
		errs = append(errs, ErrCostNegative)
	}

	return errs
}
