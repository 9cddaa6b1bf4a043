package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// Topics для Kafka
const (
	TopicAnalyticsEvents    = "voicedesk.analytics.events"
	TopicConversationEvents = "voicedesk.conversation.events"
)

// AnalyticsEnvelope — формат, в котором аналитические события уходят
// в брокер. Payload сохраняет свойства события как есть.
type AnalyticsEnvelope struct {
	Type           string         `json:"type"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
	Source         string         `json:"source"`
	PublishedAt    time.Time      `json:"published_at"`
}

// NewAnalyticsEnvelope оборачивает доменное событие для публикации.
func NewAnalyticsEnvelope(event domain.Event) AnalyticsEnvelope {
	return AnalyticsEnvelope{
		Type:           event.Type,
		ConversationID: event.ConversationID,
		Properties:     event.Properties,
		Source:         "voicedesk",
		PublishedAt:    time.Now().UTC(),
	}
}
