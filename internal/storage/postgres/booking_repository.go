package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const (
	slotFirstHour = 9
	slotLastHour  = 17
	slotStepHours = 2
	maxSlots      = 5
)

// CheckAvailability проверяет пересечение запрошенного интервала
// с уже созданными (не отменёнными) записями.
func (g *Gateway) CheckAvailability(ctx context.Context, at time.Time, durationMinutes int) (bool, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if durationMinutes <= 0 {
		durationMinutes = domain.DefaultSlotMinutes
	}
	end := at.Add(time.Duration(durationMinutes) * time.Minute)

	var conflicts int
	err := g.db.QueryRowContext(queryCtx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE status <> 'canceled'
		  AND scheduled_at < $2
		  AND scheduled_at + make_interval(mins => duration_minutes) > $1
	`, at, end).Scan(&conflicts)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}

	return conflicts == 0, nil
}

// CreateAppointment сохраняет запись со статусом pending.
func (g *Gateway) CreateAppointment(ctx context.Context, req domain.AppointmentRequest) (domain.Appointment, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if req.DurationMinutes <= 0 {
		req.DurationMinutes = domain.DefaultSlotMinutes
	}

	appt := domain.Appointment{
		ID:              uuid.NewString(),
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		ServiceType:     req.ServiceType,
		CustomerPhone:   req.CustomerPhone,
		Notes:           req.Notes,
		Status:          domain.AppointmentStatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := g.db.ExecContext(queryCtx, `
		INSERT INTO appointments (
			id, scheduled_at, duration_minutes, service_type, customer_phone, notes, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		appt.ID, appt.ScheduledAt, appt.DurationMinutes, appt.ServiceType,
		appt.CustomerPhone, appt.Notes, string(appt.Status), appt.CreatedAt,
	); err != nil {
		return domain.Appointment{}, fmt.Errorf("insert appointment: %w", err)
	}

	return appt, nil
}

// GetAvailableSlots строит сетку рабочих часов и отбрасывает занятые интервалы.
func (g *Gateway) GetAvailableSlots(ctx context.Context, date time.Time, serviceType string, durationMinutes int) ([]domain.TimeSlot, error) {
	if durationMinutes <= 0 {
		durationMinutes = domain.DefaultSlotMinutes
	}

	slots := make([]domain.TimeSlot, 0, maxSlots)
	for hour := slotFirstHour; hour <= slotLastHour && len(slots) < maxSlots; hour += slotStepHours {
		starts := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())

		available, err := g.CheckAvailability(ctx, starts, durationMinutes)
		if err != nil {
			return nil, err
		}
		if !available {
			continue
		}

		slots = append(slots, domain.TimeSlot{
			StartsAt:        starts,
			DurationMinutes: durationMinutes,
			ServiceType:     serviceType,
		})
	}
	return slots, nil
}
