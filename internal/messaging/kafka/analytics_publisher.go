package kafka

import (
	"fmt"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/service/events"
)

// conversationEventTypes — lifecycle события звонка. Они уходят в
// отдельный topic, чтобы потребители истории бесед не разбирали весь
// аналитический поток.
var conversationEventTypes = map[string]struct{}{
	"call_started":       {},
	"call_ended":         {},
	"call_cost_reported": {},
}

// AnalyticsTopicPublisher публикует аналитические события в заданный topic,
// lifecycle события бесед — в TopicConversationEvents.
type AnalyticsTopicPublisher struct {
	producer          *Producer
	topic             string
	conversationTopic string
}

// NewAnalyticsPublisher создаёт Kafka-паблишер для спулера аналитики.
func NewAnalyticsPublisher(producer *Producer, topic string) events.Publisher {
	if topic == "" {
		topic = TopicAnalyticsEvents
	}
	return &AnalyticsTopicPublisher{
		producer:          producer,
		topic:             topic,
		conversationTopic: TopicConversationEvents,
	}
}

func (p *AnalyticsTopicPublisher) Publish(event domain.Event) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka analytics publisher is not initialized")
	}

	key := event.ConversationID
	if key == "" {
		key = event.Type
	}

	return p.producer.PublishEvent(p.topicFor(event), key, NewAnalyticsEnvelope(event))
}

// topicFor выбирает topic по типу события.
func (p *AnalyticsTopicPublisher) topicFor(event domain.Event) string {
	if _, ok := conversationEventTypes[event.Type]; ok {
		return p.conversationTopic
	}
	return p.topic
}

var _ events.Publisher = (*AnalyticsTopicPublisher)(nil)
