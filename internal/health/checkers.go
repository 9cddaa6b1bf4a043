package health

import (
	"context"
	"time"
)

const defaultPingTimeout = 2 * time.Second

// DegradationReporter сообщает, работает ли шлюз данных на резервном
// in-memory хранилище.
type DegradationReporter interface {
	Degraded() bool
	Source() string
}

// GatewayChecker отражает режим шлюза данных: healthy на живом
// хранилище, degraded на резервном. Сервис при этом остаётся
// работоспособным, поэтому статус unhealthy здесь не используется.
type GatewayChecker struct {
	name     string
	reporter DegradationReporter
}

// NewGatewayChecker создаёт проверку режима шлюза данных.
func NewGatewayChecker(name string, reporter DegradationReporter) *GatewayChecker {
	return &GatewayChecker{
		name:     name,
		reporter: reporter,
	}
}

// Check возвращает состояние шлюза.
func (c *GatewayChecker) Check() Check {
	start := time.Now()

	if c.reporter.Degraded() {
		return Check{
			Name:       c.name,
			Status:     StatusDegraded,
			Message:    "serving from in-memory fallback, writes are not persisted",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		Message:    "serving from " + c.reporter.Source(),
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// Pinger — компонент с сетевой проверкой доступности.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker проверяет внешнюю зависимость (Postgres, Redis, брокер)
// через Ping с таймаутом.
type PingChecker struct {
	name       string
	pinger     Pinger
	timeout    time.Duration
	failStatus Status
}

// NewPingChecker создаёт проверку критичной зависимости: её отказ
// делает сервис not ready.
func NewPingChecker(name string, pinger Pinger) *PingChecker {
	return &PingChecker{
		name:       name,
		pinger:     pinger,
		timeout:    defaultPingTimeout,
		failStatus: StatusUnhealthy,
	}
}

// NewOptionalPingChecker создаёт проверку опциональной зависимости
// (кэш, брокер): её отказ понижает статус до degraded, сервис
// продолжает принимать трафик.
func NewOptionalPingChecker(name string, pinger Pinger) *PingChecker {
	return &PingChecker{
		name:       name,
		pinger:     pinger,
		timeout:    defaultPingTimeout,
		failStatus: StatusDegraded,
	}
}

// Check выполняет Ping с таймаутом.
func (c *PingChecker) Check() Check {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.pinger.Ping(ctx); err != nil {
		return Check{
			Name:       c.name,
			Status:     c.failStatus,
			Message:    err.Error(),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
}
