// internal/infrastructure/persistence/postgres/models/sentiment_score.go
package models

import "time"

// SentimentScore — строка истории индекса
type SentimentScore struct {
	ID         int64     `db:"id"`
	Score      int       `db:"score"`
	RecordedAt time.Time `db:"recorded_at"`
}
