// internal/infrastructure/persistence/postgres/models/alert_record.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertRecord — запись журнала алертов
type AlertRecord struct {
	ID         uuid.UUID `db:"id"`
	Kind       string    `db:"kind"`
	Instrument string    `db:"instrument"`
	Caption    string    `db:"caption"`
	ImagePath  string    `db:"image_path"`
	Delivered  bool      `db:"delivered"`
	CreatedAt  time.Time `db:"created_at"`
}
