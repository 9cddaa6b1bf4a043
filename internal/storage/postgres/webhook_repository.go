package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const defaultWebhookTTL = 24 * time.Hour

type webhookRepository struct {
	db *sql.DB
}

// NewWebhookRepository создаёт PostgreSQL-реализацию WebhookDeduplicator.
func NewWebhookRepository(store *Store) domain.WebhookDeduplicator {
	return &webhookRepository{db: store.DB()}
}

// FirstSeen регистрирует сообщение вендора. Повторная доставка
// определяется по конфликту первичного ключа.
func (r *webhookRepository) FirstSeen(record domain.WebhookRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	record.MessageID = strings.TrimSpace(record.MessageID)
	if record.MessageID == "" {
		// Сообщения без идентификатора не дедуплицируются.
		return true, nil
	}

	now := time.Now().UTC()
	if record.TTLAt.IsZero() {
		record.TTLAt = now.Add(defaultWebhookTTL)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (message_id, event_type, ttl_at, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (message_id) DO NOTHING
	`, record.MessageID, record.EventType, record.TTLAt, now)
	if err != nil {
		return false, fmt.Errorf("insert webhook record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("webhook rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteExpired удаляет записи с истёкшим TTL, не более limit за проход.
func (r *webhookRepository) DeleteExpired(before time.Time, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if before.IsZero() {
		before = time.Now().UTC()
	}

	var (
		res sql.Result
		err error
	)
	if limit > 0 {
		res, err = r.db.ExecContext(ctx, `
			DELETE FROM webhook_events
			WHERE message_id IN (
				SELECT message_id
				FROM webhook_events
				WHERE ttl_at < $1
				ORDER BY ttl_at ASC
				LIMIT $2
			)
		`, before, limit)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM webhook_events WHERE ttl_at < $1`, before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired webhook records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("webhook cleanup rows affected: %w", err)
	}
	return int(affected), nil
}

var _ domain.WebhookDeduplicator = (*webhookRepository)(nil)
