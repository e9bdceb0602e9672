// internal/infrastructure/persistence/file_storage/score_store.go
package file_storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"crypto-market-pulse-bot/pkg/logger"
)

// ScoreFileStore хранит последний индекс в текстовом файле.
// Запись атомарна: временный файл + rename.
type ScoreFileStore struct {
	path string
	mu   sync.Mutex
}

// NewScoreFileStore создает хранилище
func NewScoreFileStore(path string) *ScoreFileStore {
	return &ScoreFileStore{path: path}
}

// Load читает индекс; ok=false если файла еще нет
func (s *ScoreFileStore) Load(_ context.Context) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read %s: %w", s.path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, false, nil
	}

	score, err := strconv.Atoi(text)
	if err != nil {
		logger.Warn("⚠️ Повреждённый файл индекса %s: %q", s.path, text)
		return 0, false, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return score, true, nil
}

// Save записывает индекс
func (s *ScoreFileStore) Save(_ context.Context, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".score-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.Itoa(score)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", s.path, err)
	}

	logger.Debug("💾 Индекс %d сохранён в %s", score, s.path)
	return nil
}
