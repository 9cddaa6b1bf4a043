package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const defaultWebhookTTL = 24 * time.Hour

// webhookRepositoryInMemory — in-memory дедупликация webhook-сообщений вендора.
type webhookRepositoryInMemory struct {
	mu    sync.Mutex
	items map[string]domain.WebhookRecord
}

// NewWebhookRepository создаёт in-memory реализацию WebhookDeduplicator.
func NewWebhookRepository() domain.WebhookDeduplicator {
	return &webhookRepositoryInMemory{
		items: make(map[string]domain.WebhookRecord),
	}
}

// FirstSeen регистрирует сообщение; повторная доставка возвращает false.
func (r *webhookRepositoryInMemory) FirstSeen(record domain.WebhookRecord) (bool, error) {
	record.MessageID = strings.TrimSpace(record.MessageID)
	if record.MessageID == "" {
		// Сообщения без идентификатора не дедуплицируются.
		return true, nil
	}

	now := time.Now().UTC()
	if record.TTLAt.IsZero() {
		record.TTLAt = now.Add(defaultWebhookTTL)
	}
	record.CreatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[record.MessageID]; ok {
		return false, nil
	}
	r.items[record.MessageID] = record
	return true, nil
}

// DeleteExpired удаляет записи с истёкшим TTL, не более limit за проход.
func (r *webhookRepositoryInMemory) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make([]string, 0)
	for id, record := range r.items {
		if record.TTLAt.Before(before) {
			expired = append(expired, id)
		}
	}
	// Детерминированный порядок удаления при ограниченном limit.
	sort.Strings(expired)

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	for _, id := range expired {
		delete(r.items, id)
	}
	return len(expired), nil
}

var _ domain.WebhookDeduplicator = (*webhookRepositoryInMemory)(nil)
