// internal/infrastructure/persistence/postgres/repository/score/repository.go
package score_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crypto-market-pulse-bot/internal/infrastructure/persistence/postgres/models"
	"crypto-market-pulse-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

// ScoreRepository — история индекса; последняя строка служит «вчерашним» значением
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository создаёт репозиторий
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Load возвращает последний сохранённый индекс
func (r *ScoreRepository) Load(ctx context.Context) (int, bool, error) {
	var score int
	err := r.db.GetContext(ctx, &score, `SELECT score FROM sentiment_scores ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ScoreRepo.Load: %w", err)
	}
	return score, true, nil
}

// Save добавляет индекс в историю
func (r *ScoreRepository) Save(ctx context.Context, score int) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO sentiment_scores (score) VALUES ($1)`, score); err != nil {
		return fmt.Errorf("ScoreRepo.Save: %w", err)
	}
	logger.Debug("💾 Индекс %d записан в sentiment_scores", score)
	return nil
}

// History возвращает последние limit записей, новые первыми
func (r *ScoreRepository) History(ctx context.Context, limit int) ([]models.SentimentScore, error) {
	if limit <= 0 {
		limit = 30
	}
	var rows []models.SentimentScore
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, score, recorded_at FROM sentiment_scores ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ScoreRepo.History: %w", err)
	}
	return rows, nil
}
