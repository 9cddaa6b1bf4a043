package memory_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
	"github.com/vladislavdragonenkov/voicedesk/internal/storage/memory"
)

// recorderStub собирает degraded-write сигналы для проверок.
type recorderStub struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorderStub) RecordDegradedWrite(operation, correlationKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, operation+":"+correlationKey)
}

func (r *recorderStub) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newGateway(t *testing.T) (domain.StoreGateway, *recorderStub) {
	t.Helper()
	rec := &recorderStub{}
	return memory.NewGateway(rec, nil), rec
}

func TestSearchProducts_DemoCatalogScenario(t *testing.T) {
	gw, _ := newGateway(t)
	ctx := context.Background()

	hits, err := gw.SearchProducts(ctx, "rtx", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "NVIDIA GeForce RTX 4090" {
		t.Fatalf("expected single RTX 4090 hit, got %+v", hits)
	}

	hits, err = gw.SearchProducts(ctx, "i9", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Intel Core i9-13900K" {
		t.Fatalf("expected single i9-13900K hit, got %+v", hits)
	}

	hits, err = gw.SearchProducts(ctx, "zzz", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty result, got %+v", hits)
	}
}

func TestSearchProducts_LimitAndMatchProperty(t *testing.T) {
	gw, _ := newGateway(t)
	ctx := context.Background()

	for _, query := range []string{"a", "e", "o", "samsung", "GPU"} {
		for _, limit := range []int{1, 2, 10} {
			hits, err := gw.SearchProducts(ctx, query, limit)
			if err != nil {
				t.Fatalf("search %q failed: %v", query, err)
			}
			if len(hits) > limit {
				t.Fatalf("query %q: got %d hits, limit %d", query, len(hits), limit)
			}
			q := strings.ToLower(query)
			for _, p := range hits {
				haystack := strings.ToLower(p.Name + " " + p.Brand + " " + p.Category)
				if !strings.Contains(haystack, q) {
					t.Fatalf("query %q: hit %q does not match", query, p.Name)
				}
			}
		}
	}
}

func TestSearchProducts_DefaultLimit(t *testing.T) {
	gw, _ := newGateway(t)

	hits, err := gw.SearchProducts(context.Background(), "e", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected hits with default limit")
	}
}

func TestSearchProductsFTS_EqualsSubstringSearch(t *testing.T) {
	gw, _ := newGateway(t)
	ctx := context.Background()

	plain, err := gw.SearchProducts(ctx, "intel", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	fts, err := gw.SearchProductsFTS(ctx, "intel", 10)
	if err != nil {
		t.Fatalf("fts search failed: %v", err)
	}
	if len(plain) != len(fts) {
		t.Fatalf("fts and substring search diverge: %d vs %d", len(fts), len(plain))
	}
	for i := range plain {
		if plain[i].SKU != fts[i].SKU {
			t.Fatalf("fts order diverges at %d: %s vs %s", i, fts[i].SKU, plain[i].SKU)
		}
	}
}

func TestGetProductBySKUOrName_SKUPrecedence(t *testing.T) {
	gw, _ := newGateway(t)
	ctx := context.Background()

	// Код не является подстрокой названия, но найтись обязан.
	p, err := gw.GetProductBySKUOrName(ctx, "ssd-990pro-2tb")
	if err != nil {
		t.Fatalf("sku lookup failed: %v", err)
	}
	if p.Name != "Samsung 990 PRO 2TB" {
		t.Fatalf("expected 990 PRO, got %q", p.Name)
	}

	p, err = gw.GetProductBySKUOrName(ctx, "geforce")
	if err != nil {
		t.Fatalf("name lookup failed: %v", err)
	}
	if p.SKU != "GPU-RTX4090" {
		t.Fatalf("expected RTX 4090 by name substring, got %q", p.SKU)
	}
}

func TestGetProductBySKUOrName_NotFound(t *testing.T) {
	gw, _ := newGateway(t)

	for _, ident := range []string{"nope", "", "   "} {
		if _, err := gw.GetProductBySKUOrName(context.Background(), ident); err != domain.ErrProductNotFound {
			t.Fatalf("ident %q: expected ErrProductNotFound, got %v", ident, err)
		}
	}
}

func TestCheckAvailability_AlwaysOptimistic(t *testing.T) {
	gw, _ := newGateway(t)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC),
		{},
	}
	for _, at := range times {
		for _, dur := range []int{0, 30, 240} {
			ok, err := gw.CheckAvailability(ctx, at, dur)
			if err != nil {
				t.Fatalf("availability failed: %v", err)
			}
			if !ok {
				t.Fatalf("fallback availability must always be true (at=%v dur=%d)", at, dur)
			}
		}
	}
}

func TestGetAvailableSlots_FixedBusinessHours(t *testing.T) {
	gw, _ := newGateway(t)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	slots, err := gw.GetAvailableSlots(context.Background(), date, "pc-build", 30)
	if err != nil {
		t.Fatalf("slots failed: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected exactly 5 slots, got %d", len(slots))
	}

	wantHours := []int{9, 11, 13, 15, 17}
	for i, slot := range slots {
		if slot.StartsAt.Hour() != wantHours[i] {
			t.Errorf("slot %d: hour %d, want %d", i, slot.StartsAt.Hour(), wantHours[i])
		}
		y, m, d := slot.StartsAt.Date()
		if y != 2025 || m != time.March || d != 10 {
			t.Errorf("slot %d: wrong date %v", i, slot.StartsAt)
		}
		if slot.DurationMinutes != 30 {
			t.Errorf("slot %d: duration %d, want 30", i, slot.DurationMinutes)
		}
		if slot.ServiceType != "pc-build" {
			t.Errorf("slot %d: service type %q", i, slot.ServiceType)
		}
	}
}

func TestCreateAppointment_EchoWithPendingStatus(t *testing.T) {
	gw, rec := newGateway(t)
	req := domain.AppointmentRequest{
		ScheduledAt:     time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		ServiceType:     "pc-build",
		CustomerPhone:   "+306912345678",
		Notes:           "water cooling",
	}

	first, err := gw.CreateAppointment(context.Background(), req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Status != domain.AppointmentStatusPending {
		t.Fatalf("expected pending status, got %q", first.Status)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	if !first.ScheduledAt.Equal(req.ScheduledAt) || first.DurationMinutes != 45 ||
		first.ServiceType != req.ServiceType || first.CustomerPhone != req.CustomerPhone ||
		first.Notes != req.Notes {
		t.Fatalf("appointment does not echo request: %+v", first)
	}

	second, err := gw.CreateAppointment(context.Background(), req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be distinct across calls: %s", first.ID)
	}

	if rec.count() != 2 {
		t.Fatalf("expected 2 degraded-write signals, got %d", rec.count())
	}
}

func TestUpdateConversation_IdempotentMerge(t *testing.T) {
	gw, rec := newGateway(t)

	// Обновление без предварительного создания беседы.
	echo, err := gw.UpdateConversation(context.Background(), "call-42", map[string]any{"foo": 1})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if echo["vapi_call_id"] != "call-42" {
		t.Fatalf("expected vapi_call_id echo, got %v", echo["vapi_call_id"])
	}
	if echo["foo"] != 1 {
		t.Fatalf("expected merged update, got %v", echo["foo"])
	}
	if _, ok := echo["updated_at"]; !ok {
		t.Fatal("expected updated_at timestamp")
	}
	if rec.count() != 1 {
		t.Fatalf("expected degraded-write signal, got %d", rec.count())
	}
}

func TestCreateConversation_DegradedWrite(t *testing.T) {
	gw, rec := newGateway(t)

	conv, err := gw.CreateConversation(context.Background(), domain.Conversation{
		VapiCallID:  "call-7",
		PhoneNumber: "+306912345678",
		Metadata:    map[string]any{"language": "el"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected generated id")
	}
	if conv.VapiCallID != "call-7" {
		t.Fatalf("expected call id echo, got %q", conv.VapiCallID)
	}
	if conv.Status != domain.ConversationStatusActive {
		t.Fatalf("expected active status, got %q", conv.Status)
	}
	if rec.count() != 1 {
		t.Fatalf("expected degraded-write signal, got %d", rec.count())
	}
}

func TestUpdateCallCost_Echo(t *testing.T) {
	gw, _ := newGateway(t)

	echo, err := gw.UpdateCallCost(context.Background(), "call-7", 125, map[string]any{"llm": 80, "tts": 45})
	if err != nil {
		t.Fatalf("update cost failed: %v", err)
	}
	if echo["vapi_call_id"] != "call-7" {
		t.Fatalf("expected call id echo, got %v", echo["vapi_call_id"])
	}
	if echo["cost_minor"] != int64(125) {
		t.Fatalf("expected cost echo, got %v", echo["cost_minor"])
	}
	if _, ok := echo["breakdown"]; !ok {
		t.Fatal("expected breakdown echo")
	}
}

func TestTrackEvent_NeverFails(t *testing.T) {
	gw, rec := newGateway(t)

	err := gw.TrackEvent(context.Background(), domain.Event{
		Type:           "assistant_selected",
		Properties:     map[string]any{"assistant": "maria"},
		ConversationID: "call-7",
	})
	if err != nil {
		t.Fatalf("track event must not fail: %v", err)
	}
	if err := gw.TrackEvent(context.Background(), domain.Event{}); err != nil {
		t.Fatalf("track event must not fail on empty event: %v", err)
	}
	// TrackEvent — не write в смысле деградации, отдельного сигнала нет.
	if rec.count() != 0 {
		t.Fatalf("unexpected degraded-write signals: %d", rec.count())
	}
}

func TestCustomerLookups_DemoData(t *testing.T) {
	gw, _ := newGateway(t)
	ctx := context.Background()

	customer, err := gw.GetCustomerByPhone(ctx, "+306912345678")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if customer.Name == "" || customer.OrderCount == 0 {
		t.Fatalf("expected populated demo customer, got %+v", customer)
	}

	if _, err := gw.GetCustomerByPhone(ctx, "+300000000000"); err != domain.ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	history, err := gw.GetCustomerOrderHistory(ctx, customer.Phone, 1)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected limit applied, got %d", len(history))
	}

	found, err := gw.SearchCustomersByName(ctx, "eleni", 10)
	if err != nil {
		t.Fatalf("customer search failed: %v", err)
	}
	if len(found) != 1 || found[0].Phone != "+306998765432" {
		t.Fatalf("expected Eleni, got %+v", found)
	}
}
