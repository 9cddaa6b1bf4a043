package postgres

import (
	"database/sql"
	"time"

	"github.com/vladislavdragonenkov/voicedesk/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// Gateway — живая реализация StoreGateway поверх управляемой базы.
// Методы разнесены по файлам по предметным областям: товары,
// бронирования, беседы, клиенты.
type Gateway struct {
	db *sql.DB
}

// NewGateway создаёт PostgreSQL-реализацию StoreGateway.
func NewGateway(store *Store) *Gateway {
	return &Gateway{db: store.DB()}
}

var _ domain.StoreGateway = (*Gateway)(nil)
