package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

// productView — представление товара в JSON API.
type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int32  `json:"stock"`
	SKU         string `json:"sku"`
	Description string `json:"description,omitempty"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		PriceMinor:  p.PriceMinor,
		Stock:       p.Stock,
		SKU:         p.SKU,
		Description: p.Description,
	}
}

func toProductViews(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}

// appointmentRequest — тело POST /appointments.
type appointmentRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	ServiceType     string    `json:"service_type" binding:"required"`
	CustomerPhone   string    `json:"customer_phone" binding:"required"`
	Notes           string    `json:"notes"`
}

func (r appointmentRequest) toDomain() domain.AppointmentRequest {
	return domain.AppointmentRequest{
		ScheduledAt:     r.ScheduledAt,
		DurationMinutes: r.DurationMinutes,
		ServiceType:     r.ServiceType,
		CustomerPhone:   r.CustomerPhone,
		Notes:           r.Notes,
	}
}

type appointmentView struct {
	ID              string    `json:"id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	ServiceType     string    `json:"service_type"`
	CustomerPhone   string    `json:"customer_phone"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func toAppointmentView(a domain.Appointment) appointmentView {
	return appointmentView{
		ID:              a.ID,
		ScheduledAt:     a.ScheduledAt,
		DurationMinutes: a.DurationMinutes,
		ServiceType:     a.ServiceType,
		CustomerPhone:   a.CustomerPhone,
		Notes:           a.Notes,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
	}
}

type slotView struct {
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	ServiceType     string    `json:"service_type,omitempty"`
}

func toSlotViews(slots []domain.TimeSlot) []slotView {
	views := make([]slotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, slotView{
			StartsAt:        s.StartsAt,
			DurationMinutes: s.DurationMinutes,
			ServiceType:     s.ServiceType,
		})
	}
	return views
}

type customerView struct {
	Phone           string     `json:"phone"`
	Name            string     `json:"name"`
	Email           string     `json:"email,omitempty"`
	OrderCount      int        `json:"order_count"`
	TotalSpentMinor int64      `json:"total_spent_minor"`
	AvgOrderMinor   int64      `json:"avg_order_minor"`
	LastOrderAt     *time.Time `json:"last_order_at,omitempty"`
}

func toCustomerView(c domain.Customer) customerView {
	view := customerView{
		Phone:           c.Phone,
		Name:            c.Name,
		Email:           c.Email,
		OrderCount:      c.OrderCount,
		TotalSpentMinor: c.TotalSpentMinor,
		AvgOrderMinor:   c.AvgOrderMinor,
	}
	if !c.LastOrderAt.IsZero() {
		last := c.LastOrderAt
		view.LastOrderAt = &last
	}
	return view
}

func toCustomerViews(customers []domain.Customer) []customerView {
	views := make([]customerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, toCustomerView(c))
	}
	return views
}

type orderView struct {
	ID          string    `json:"id"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	ItemCount   int       `json:"item_count"`
	Status      string    `json:"status"`
	PlacedAt    time.Time `json:"placed_at"`
}

func toOrderViews(orders []domain.OrderSummary) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			ID:          o.ID,
			AmountMinor: o.AmountMinor,
			Currency:    o.Currency,
			ItemCount:   o.ItemCount,
			Status:      o.Status,
			PlacedAt:    o.PlacedAt,
		})
	}
	return views
}
