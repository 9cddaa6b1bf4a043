package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/storage/memory"
)

type recordingTracker struct {
	events []domain.Event
}

func (t *recordingTracker) Track(event domain.Event) {
	t.events = append(t.events, event)
}

func newTestService(t *testing.T) (*Service, *recordingTracker, domain.ConversationTimeline) {
	t.Helper()

	tracker := &recordingTracker{}
	timeline := memory.NewTimelineRepository()
	svc := NewService(
		memory.NewGateway(nil, nil),
		memory.NewWebhookRepository(),
		timeline,
		tracker,
		nil,
	)
	return svc, tracker, timeline
}

func TestService_CallStartedCreatesConversation(t *testing.T) {
	svc, tracker, timeline := newTestService(t)

	res, err := svc.Handle(context.Background(), Message{
		ID:     "msg-1",
		Type:   MessageTypeStatusUpdate,
		Status: "in-progress",
		Call: Call{
			ID:       "call-1",
			Customer: Customer{Number: "+306912345678"},
		},
	})
	require.NoError(t, err)
	require.True(t, res.Handled)
	require.False(t, res.Duplicate)

	entries, err := timeline.List("call-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "call_started", entries[0].Type)

	require.Len(t, tracker.events, 1)
	require.Equal(t, "call_started", tracker.events[0].Type)
	require.Equal(t, "call-1", tracker.events[0].ConversationID)
}

func TestService_DuplicateDeliveryIsAcknowledgedOnce(t *testing.T) {
	svc, tracker, _ := newTestService(t)

	msg := Message{
		ID:     "msg-dup",
		Type:   MessageTypeStatusUpdate,
		Status: "in-progress",
		Call:   Call{ID: "call-2"},
	}

	first, err := svc.Handle(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, first.Handled)

	second, err := svc.Handle(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.False(t, second.Handled)

	require.Len(t, tracker.events, 1, "duplicate must not be re-tracked")
}

func TestService_EndOfCallReportRecordsCost(t *testing.T) {
	svc, tracker, timeline := newTestService(t)

	res, err := svc.Handle(context.Background(), Message{
		ID:            "msg-cost",
		Type:          MessageTypeEndOfCallReport,
		Cost:          1.25,
		CostBreakdown: map[string]any{"llm": 0.8, "tts": 0.4},
		EndedReason:   "customer-ended-call",
		Summary:       "asked about RTX 4090 stock",
		Call:          Call{ID: "call-3"},
	})
	require.NoError(t, err)
	require.True(t, res.Handled)

	entries, err := timeline.List("call-3")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "cost_reported", entries[0].Type)

	require.Len(t, tracker.events, 1)
	require.Equal(t, "call_cost_reported", tracker.events[0].Type)
	require.Equal(t, int64(125), tracker.events[0].Properties["cost_minor"])
}

func TestService_CallEndedStatusUpdates(t *testing.T) {
	svc, _, timeline := newTestService(t)

	_, err := svc.Handle(context.Background(), Message{
		ID:     "msg-start",
		Type:   MessageTypeStatusUpdate,
		Status: "in-progress",
		Call:   Call{ID: "call-4"},
	})
	require.NoError(t, err)

	res, err := svc.Handle(context.Background(), Message{
		ID:          "msg-end",
		Type:        MessageTypeStatusUpdate,
		Status:      "ended",
		EndedReason: "assistant-ended-call",
		Call:        Call{ID: "call-4"},
	})
	require.NoError(t, err)
	require.True(t, res.Handled)

	entries, err := timeline.List("call-4")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "call_ended", entries[1].Type)
	require.Equal(t, "assistant-ended-call", entries[1].Reason)
}

func TestService_MissingCallIDRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Handle(context.Background(), Message{
		ID:   "msg-broken",
		Type: MessageTypeStatusUpdate,
	})
	require.ErrorIs(t, err, domain.ErrCallIDRequired)
}

func TestService_UnknownTypeIsTrackedNotFailed(t *testing.T) {
	svc, tracker, _ := newTestService(t)

	res, err := svc.Handle(context.Background(), Message{
		ID:   "msg-odd",
		Type: "speech-update",
		Call: Call{ID: "call-5"},
	})
	require.NoError(t, err)
	require.False(t, res.Handled)

	require.Len(t, tracker.events, 1)
	require.Equal(t, "webhook_unhandled", tracker.events[0].Type)
}

func TestDollarsToMinor(t *testing.T) {
	require.Equal(t, int64(0), dollarsToMinor(0))
	require.Equal(t, int64(0), dollarsToMinor(-1))
	require.Equal(t, int64(100), dollarsToMinor(1))
	require.Equal(t, int64(163), dollarsToMinor(1.625))
}
