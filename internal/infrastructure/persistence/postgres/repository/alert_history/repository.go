// internal/infrastructure/persistence/postgres/repository/alert_history/repository.go
package alert_history_repo

import (
	"context"
	"fmt"
	"time"

	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/models"
	"crypto-market-pulse-bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AlertHistoryRepository журнал отправленных алертов
type AlertHistoryRepository struct {
	db *sqlx.DB
}

// NewAlertHistoryRepository создаёт репозиторий
func NewAlertHistoryRepository(db *sqlx.DB) *AlertHistoryRepository {
	return &AlertHistoryRepository{db: db}
}

// Save записывает алерт; пустые ID и CreatedAt заполняются
func (r *AlertHistoryRepository) Save(ctx context.Context, record *models.AlertRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alert_history (id, kind, instrument, caption, image_path, delivered, created_at)
		VALUES (:id, :kind, :instrument, :caption, :image_path, :delivered, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("AlertHistoryRepo.Save: %w", err)
	}

	logger.Debug("💾 Алерт %s (%s) записан в журнал", record.Kind, record.ID)
	return nil
}

// Recent возвращает последние алерты, новые первыми
func (r *AlertHistoryRepository) Recent(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.AlertRecord
	query := `
		SELECT id, kind, instrument, caption, image_path, delivered, created_at
		FROM alert_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("AlertHistoryRepo.Recent: %w", err)
	}
	return records, nil
}
