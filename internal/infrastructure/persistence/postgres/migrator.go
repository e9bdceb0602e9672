// internal/infrastructure/persistence/postgres/migrator.go
package postgres

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"crypto-market-pulse-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrator управляет миграциями базы данных
type Migrator struct {
	db         *sqlx.DB
	migrations map[int]*Migration
}

// Migration представляет одну миграцию
type Migration struct {
	ID          int
	Name        string
	Description string
	SQL         string
	Checksum    string
}

// MigrationRecord — строка таблицы migrations
type MigrationRecord struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	AppliedAt time.Time `db:"applied_at"`
	Checksum  string    `db:"checksum"`
}

// NewMigrator создает новый мигратор
func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: make(map[int]*Migration),
	}
}

// RunMigrations применяет встроенные миграции
func RunMigrations(db *sqlx.DB) error {
	migrator := NewMigrator(db)
	if err := migrator.LoadMigrations(embeddedMigrations); err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrator.Validate(); err != nil {
		return fmt.Errorf("migration validation failed: %w", err)
	}
	return migrator.Migrate()
}

// Init инициализирует таблицу миграций
func (m *Migrator) Init() error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		checksum VARCHAR(64) NOT NULL
	);
	`
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// LoadMigrations загружает *.sql из файловой системы (формат имени: 001_name.sql)
func (m *Migrator) LoadMigrations(fsys fs.FS) error {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, path := range files {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", path, err)
		}

		filename := path[strings.LastIndex(path, "/")+1:]
		id, name, err := parseMigrationFilename(filename)
		if err != nil {
			return err
		}

		m.migrations[id] = &Migration{
			ID:          id,
			Name:        name,
			Description: extractDescription(string(content)),
			SQL:         string(content),
			Checksum:    calculateChecksum(string(content)),
		}
		logger.Debug("📄 Loaded migration: %s", filename)
	}

	logger.Info("✅ Loaded %d migrations", len(m.migrations))
	return nil
}

// Validate проверяет, что ID миграций идут подряд с 1
func (m *Migrator) Validate() error {
	if len(m.migrations) == 0 {
		return fmt.Errorf("no migrations loaded")
	}
	for id := 1; id <= len(m.migrations); id++ {
		if _, ok := m.migrations[id]; !ok {
			return fmt.Errorf("missing migration with ID %d", id)
		}
	}
	return nil
}

// Migrate применяет все непройденные миграции по порядку
func (m *Migrator) Migrate() error {
	logger.Info("🚀 Starting database migrations...")

	if err := m.Init(); err != nil {
		return err
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedCount := 0
	for id := 1; id <= len(m.migrations); id++ {
		migration := m.migrations[id]

		if record, ok := applied[id]; ok {
			if record.Checksum != migration.Checksum {
				return fmt.Errorf("checksum mismatch for migration %d: %s", id, migration.Name)
			}
			continue
		}

		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %s: %w", id, migration.Name, err)
		}
		appliedCount++
	}

	if appliedCount > 0 {
		logger.Info("✅ Applied %d new migrations", appliedCount)
	} else {
		logger.Info("✅ Database is up to date")
	}
	return nil
}

func (m *Migrator) getAppliedMigrations() (map[int]*MigrationRecord, error) {
	var records []MigrationRecord
	err := m.db.Select(&records, `SELECT id, name, applied_at, checksum FROM migrations ORDER BY id`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	applied := make(map[int]*MigrationRecord, len(records))
	for i := range records {
		applied[records[i].ID] = &records[i]
	}
	return applied, nil
}

func (m *Migrator) applyMigration(migration *Migration) error {
	logger.Info("📤 Applying migration: %s", migration.Name)

	tx, err := m.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO migrations (id, name, description, checksum) VALUES ($1, $2, $3, $4)`,
		migration.ID, migration.Name, migration.Description, migration.Checksum,
	)
	if err != nil {
		return fmt.Errorf("failed to save migration record: %w", err)
	}

	return tx.Commit()
}

func parseMigrationFilename(filename string) (int, string, error) {
	base := strings.TrimSuffix(filename, ".sql")

	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid migration filename format: %s (expected: 001_name.sql)", filename)
	}

	var id int
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid migration ID in filename: %s", filename)
	}

	return id, strings.ReplaceAll(parts[1], "_", " "), nil
}

func extractDescription(sql string) string {
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-- Description:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "-- Description:"))
		}
	}
	return "No description"
}

func calculateChecksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
