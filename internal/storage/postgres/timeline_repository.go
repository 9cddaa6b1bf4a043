package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

type timelineRepository struct {
	db *sql.DB
}

// NewTimelineRepository создаёт PostgreSQL-реализацию ConversationTimeline.
func NewTimelineRepository(store *Store) domain.ConversationTimeline {
	return &timelineRepository{db: store.DB()}
}

func (r *timelineRepository) Append(event domain.ConversationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_events (vapi_call_id, type, reason, occurred)
		VALUES ($1,$2,$3,$4)
	`, event.VapiCallID, event.Type, event.Reason, event.Occurred); err != nil {
		return fmt.Errorf("append conversation event: %w", err)
	}

	return nil
}

func (r *timelineRepository) List(vapiCallID string) ([]domain.ConversationEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT vapi_call_id, type, reason, occurred
		FROM conversation_events
		WHERE vapi_call_id = $1
		ORDER BY occurred ASC, id ASC
	`, vapiCallID)
	if err != nil {
		return nil, fmt.Errorf("list conversation events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.ConversationEvent, 0)
	for rows.Next() {
		var event domain.ConversationEvent
		if err := rows.Scan(&event.VapiCallID, &event.Type, &event.Reason, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan conversation event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation events: %w", err)
	}

	return events, nil
}

var _ domain.ConversationTimeline = (*timelineRepository)(nil)
