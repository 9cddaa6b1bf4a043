package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// timelineRepositoryInMemory хранит события бесед в памяти (fallback-режим и тесты).
type timelineRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.ConversationEvent
}

// NewTimelineRepository создаёт in-memory реализацию ConversationTimeline.
func NewTimelineRepository() domain.ConversationTimeline {
	return &timelineRepositoryInMemory{events: make(map[string][]domain.ConversationEvent)}
}

// Append добавляет событие беседы в хранилище.
func (r *timelineRepositoryInMemory) Append(event domain.ConversationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.VapiCallID] = append(r.events[event.VapiCallID], event)

	sort.Slice(r.events[event.VapiCallID], func(i, j int) bool {
		return r.events[event.VapiCallID][i].Occurred.Before(r.events[event.VapiCallID][j].Occurred)
	})

	return nil
}

// List возвращает события беседы в хронологическом порядке.
func (r *timelineRepositoryInMemory) List(vapiCallID string) ([]domain.ConversationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[vapiCallID]
	result := make([]domain.ConversationEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.ConversationTimeline = (*timelineRepositoryInMemory)(nil)
