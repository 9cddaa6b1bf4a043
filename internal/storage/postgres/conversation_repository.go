package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// CreateConversation регистрирует беседу. Повторный входящий webhook
// с тем же vapi_call_id не создаёт дубликата.
func (g *Gateway) CreateConversation(ctx context.Context, conv domain.Conversation) (domain.Conversation, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Status == "" {
		conv.Status = domain.ConversationStatusActive
	}
	conv.CreatedAt = now
	conv.UpdatedAt = now

	metadata, err := marshalMetadata(conv.Metadata)
	if err != nil {
		return domain.Conversation{}, err
	}

	if _, err := g.db.ExecContext(queryCtx, `
		INSERT INTO conversations (
			id, vapi_call_id, phone_number, status, metadata, cost_minor, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (vapi_call_id) DO UPDATE
		SET phone_number = EXCLUDED.phone_number,
		    metadata = conversations.metadata || EXCLUDED.metadata,
		    updated_at = EXCLUDED.updated_at
	`,
		conv.ID, conv.VapiCallID, conv.PhoneNumber, string(conv.Status),
		metadata, conv.CostMinor, conv.CreatedAt, conv.UpdatedAt,
	); err != nil {
		return domain.Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}

	return conv, nil
}

// UpdateConversation применяет частичные обновления по vapi_call_id.
// Upsert-семантика: беседа создаётся при первом же обновлении, поэтому
// merge идемпотентен и не требует предварительного CreateConversation.
func (g *Gateway) UpdateConversation(ctx context.Context, vapiCallID string, updates map[string]any) (map[string]any, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	status := ""
	if s, ok := updates["status"].(string); ok {
		status = s
	}

	metadata, err := marshalMetadata(updates)
	if err != nil {
		return nil, err
	}

	if _, err := g.db.ExecContext(queryCtx, `
		INSERT INTO conversations (id, vapi_call_id, status, metadata, created_at, updated_at)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'active'), $4, $5, $5)
		ON CONFLICT (vapi_call_id) DO UPDATE
		SET metadata = conversations.metadata || EXCLUDED.metadata,
		    status = COALESCE(NULLIF($3, ''), conversations.status),
		    updated_at = EXCLUDED.updated_at
	`, uuid.NewString(), vapiCallID, status, metadata, now); err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}

	// Форма ответа совпадает с fallback-эхом: вызывающая сторона
	// не должна различать источники по структуре.
	result := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		result[k] = v
	}
	result["vapi_call_id"] = vapiCallID
	result["updated_at"] = now
	return result, nil
}

// UpdateCallCost фиксирует стоимость звонка и разбивку в метаданных.
func (g *Gateway) UpdateCallCost(ctx context.Context, vapiCallID string, costMinor int64, breakdown map[string]any) (map[string]any, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	metadata, err := marshalMetadata(map[string]any{"cost_breakdown": breakdown})
	if err != nil {
		return nil, err
	}

	if _, err := g.db.ExecContext(queryCtx, `
		INSERT INTO conversations (id, vapi_call_id, status, metadata, cost_minor, created_at, updated_at)
		VALUES ($1, $2, 'completed', $3, $4, $5, $5)
		ON CONFLICT (vapi_call_id) DO UPDATE
		SET cost_minor = EXCLUDED.cost_minor,
		    metadata = conversations.metadata || EXCLUDED.metadata,
		    updated_at = EXCLUDED.updated_at
	`, uuid.NewString(), vapiCallID, metadata, costMinor, now); err != nil {
		return nil, fmt.Errorf("update call cost: %w", err)
	}

	result := map[string]any{
		"vapi_call_id": vapiCallID,
		"cost_minor":   costMinor,
		"updated_at":   now,
	}
	if len(breakdown) > 0 {
		result["breakdown"] = breakdown
	}
	return result, nil
}

// TrackEvent сохраняет аналитический сигнал.
func (g *Gateway) TrackEvent(ctx context.Context, event domain.Event) error {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	properties, err := marshalMetadata(event.Properties)
	if err != nil {
		return err
	}

	if _, err := g.db.ExecContext(queryCtx, `
		INSERT INTO analytics_events (type, properties, conversation_id, occurred)
		VALUES ($1,$2,$3,$4)
	`, event.Type, properties, event.ConversationID, event.Occurred); err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}

	return nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}
