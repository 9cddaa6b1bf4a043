package webhook

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// Типы сообщений голосовой платформы.
const (
	MessageTypeStatusUpdate    = "status-update"
	MessageTypeEndOfCallReport = "end-of-call-report"
)

// Статусы звонка в терминах вендора.
const (
	callStatusInProgress = "in-progress"
	callStatusEnded      = "ended"
)

// Message — входящее webhook-сообщение вендора. Поля повторяют
// JSON-схему платформы, лишние атрибуты игнорируются при разборе.
type Message struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Status        string         `json:"status,omitempty"`
	EndedReason   string         `json:"endedReason,omitempty"`
	Cost          float64        `json:"cost,omitempty"`
	CostBreakdown map[string]any `json:"costBreakdown,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	Call          Call           `json:"call"`
}

// Call — ссылка на звонок внутри webhook-сообщения.
type Call struct {
	ID       string   `json:"id"`
	Customer Customer `json:"customer"`
}

// Customer — клиент звонка в формате вендора.
type Customer struct {
	Number string `json:"number"`
}

// Result — итог обработки сообщения.
type Result struct {
	// Duplicate выставляется для повторной доставки: сообщение
	// подтверждено вендору, но повторно не обработано.
	Duplicate bool
	// Handled — тип сообщения был распознан и обработан.
	Handled bool
}

// Tracker принимает аналитические события по принципу fire-and-forget.
type Tracker interface {
	Track(event domain.Event)
}

// Service обрабатывает webhook-сообщения голосовой платформы:
// дедуплицирует доставки, ведёт беседы через шлюз данных и пишет
// таймлайн звонка.
type Service struct {
	gateway  domain.StoreGateway
	dedup    domain.WebhookDeduplicator
	timeline domain.ConversationTimeline
	tracker  Tracker
	logger   *log.Entry
}

// NewService создаёт обработчик webhook-сообщений. Tracker и timeline
// опциональны.
func NewService(gateway domain.StoreGateway, dedup domain.WebhookDeduplicator, timeline domain.ConversationTimeline, tracker Tracker, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "webhook-service")
	}
	return &Service{
		gateway:  gateway,
		dedup:    dedup,
		timeline: timeline,
		tracker:  tracker,
		logger:   logger,
	}
}

// Handle обрабатывает одно сообщение вендора. Ошибка возвращается
// только когда запись в хранилище не удалась: вендор повторит доставку,
// а дедупликации у неудавшейся обработки нет.
func (s *Service) Handle(ctx context.Context, msg Message) (Result, error) {
	if msg.Call.ID == "" {
		return Result{}, domain.ErrCallIDRequired
	}

	if s.dedup != nil {
		first, err := s.dedup.FirstSeen(domain.WebhookRecord{
			MessageID: msg.ID,
			EventType: msg.Type,
		})
		if err != nil {
			// Дедупликация не должна ронять обработку: хуже потерять
			// событие, чем обработать его дважды.
			s.logger.WithError(err).Warn("webhook dedup check failed, processing anyway")
		} else if !first {
			s.logger.WithFields(log.Fields{
				"message_id": msg.ID,
				"type":       msg.Type,
			}).Debug("duplicate webhook delivery ignored")
			return Result{Duplicate: true}, nil
		}
	}

	switch msg.Type {
	case MessageTypeStatusUpdate:
		return s.handleStatusUpdate(ctx, msg)
	case MessageTypeEndOfCallReport:
		return s.handleEndOfCallReport(ctx, msg)
	default:
		s.logger.WithField("type", msg.Type).Debug("unhandled webhook message type")
		s.track(domain.Event{
			Type:           "webhook_unhandled",
			ConversationID: msg.Call.ID,
			Properties:     map[string]any{"message_type": msg.Type},
		})
		return Result{}, nil
	}
}

func (s *Service) handleStatusUpdate(ctx context.Context, msg Message) (Result, error) {
	switch strings.ToLower(msg.Status) {
	case callStatusInProgress:
		conv := domain.Conversation{
			VapiCallID:  msg.Call.ID,
			PhoneNumber: msg.Call.Customer.Number,
			Status:      domain.ConversationStatusActive,
		}
		if _, err := s.gateway.CreateConversation(ctx, conv); err != nil {
			return Result{}, fmt.Errorf("create conversation: %w", err)
		}
		s.appendTimeline(msg.Call.ID, "call_started", "")
		s.track(domain.Event{
			Type:           "call_started",
			ConversationID: msg.Call.ID,
			Properties:     map[string]any{"phone": msg.Call.Customer.Number},
		})
	case callStatusEnded:
		updates := map[string]any{"status": string(domain.ConversationStatusCompleted)}
		if msg.EndedReason != "" {
			updates["ended_reason"] = msg.EndedReason
		}
		if _, err := s.gateway.UpdateConversation(ctx, msg.Call.ID, updates); err != nil {
			return Result{}, fmt.Errorf("update conversation: %w", err)
		}
		s.appendTimeline(msg.Call.ID, "call_ended", msg.EndedReason)
		s.track(domain.Event{
			Type:           "call_ended",
			ConversationID: msg.Call.ID,
			Properties:     map[string]any{"ended_reason": msg.EndedReason},
		})
	default:
		s.logger.WithFields(log.Fields{
			"call_id": msg.Call.ID,
			"status":  msg.Status,
		}).Debug("ignoring intermediate call status")
	}

	return Result{Handled: true}, nil
}

func (s *Service) handleEndOfCallReport(ctx context.Context, msg Message) (Result, error) {
	costMinor := dollarsToMinor(msg.Cost)
	if _, err := s.gateway.UpdateCallCost(ctx, msg.Call.ID, costMinor, msg.CostBreakdown); err != nil {
		return Result{}, fmt.Errorf("update call cost: %w", err)
	}

	updates := map[string]any{"status": string(domain.ConversationStatusCompleted)}
	if msg.Summary != "" {
		updates["summary"] = msg.Summary
	}
	if msg.EndedReason != "" {
		updates["ended_reason"] = msg.EndedReason
	}
	if _, err := s.gateway.UpdateConversation(ctx, msg.Call.ID, updates); err != nil {
		return Result{}, fmt.Errorf("update conversation: %w", err)
	}

	s.appendTimeline(msg.Call.ID, "cost_reported", msg.EndedReason)
	s.track(domain.Event{
		Type:           "call_cost_reported",
		ConversationID: msg.Call.ID,
		Properties:     map[string]any{"cost_minor": costMinor},
	})

	return Result{Handled: true}, nil
}

func (s *Service) appendTimeline(callID, eventType, reason string) {
	if s.timeline == nil {
		return
	}
	event := domain.ConversationEvent{
		VapiCallID: callID,
		Type:       eventType,
		Reason:     reason,
		Occurred:   time.Now().UTC(),
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithField("call_id", callID).Warn("failed to append timeline entry")
	}
}

func (s *Service) track(event domain.Event) {
	if s.tracker == nil {
		return
	}
	s.tracker.Track(event)
}

// dollarsToMinor переводит стоимость вендора (доллары с дробной
// частью) в минимальные единицы с округлением до цента.
func dollarsToMinor(cost float64) int64 {
	if cost <= 0 {
		return 0
	}
	return int64(math.Round(cost * 100))
}
