package domain

import "time"

// AppointmentStatus описывает жизненный цикл записи на обслуживание.
type AppointmentStatus string

const (
	// AppointmentStatusPending — запись создана, подтверждение ещё не выполнено.
	AppointmentStatusPending AppointmentStatus = "pending"
	// AppointmentStatusConfirmed — запись подтверждена магазином.
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	// AppointmentStatusCanceled — запись отменена до визита.
	AppointmentStatusCanceled AppointmentStatus = "canceled"
)

// Appointment представляет запись клиента на визит/обслуживание.
// Этот слой только создаёт записи со статусом pending; дальнейшие
// переходы статуса — ответственность живого бэкенда.
type Appointment struct {
	ID              string
	ScheduledAt     time.Time
	DurationMinutes int
	ServiceType     string
	CustomerPhone   string
	Notes           string
	Status          AppointmentStatus
	CreatedAt       time.Time
}

// AppointmentRequest — входные данные запроса на бронирование.
type AppointmentRequest struct {
	ScheduledAt     time.Time
	DurationMinutes int
	ServiceType     string
	CustomerPhone   string
	Notes           string
}

// TimeSlot — предлагаемый интервал для записи.
type TimeSlot struct {
	StartsAt        time.Time
	DurationMinutes int
	ServiceType     string
}

// ValidateInvariants проверяет корректность запроса на бронирование.
func (r *AppointmentRequest) ValidateInvariants() []error {
	var errs []error

	if r.ScheduledAt.IsZero() {
		errs = append(errs, ErrScheduleTimeRequired)
	}
	if r.DurationMinutes < 0 {
		errs = append(errs, ErrDurationInvalid)
	}

	return errs
}
