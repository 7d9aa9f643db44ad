package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/akam1o/guidl/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrator applies the embedded schema migrations in version order
type migrator struct {
	db  *sql.DB
	log *logger.Logger
}

// migration represents a single migration file.
type migration struct {
	version int
	name    string
	content string
}

// currentVersion returns the highest applied schema version, 0 for a new database
func (m *migrator) currentVersion(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	var version int
	err = m.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM schema_version
	`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

// apply runs every migration newer than the current version
func (m *migrator) apply(ctx context.Context) error {
	current, err := m.currentVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if mig.version <= current {
			continue
		}
		if err := m.applyOne(ctx, mig); err != nil {
			return fmt.Errorf("failed to apply migration %03d: %w", mig.version, err)
		}
		m.log.Debug("Applied migration",
			slog.Int("version", mig.version),
			slog.String("name", mig.name),
		)
	}
	return nil
}

func (m *migrator) applyOne(ctx context.Context, mig migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.content); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	return tx.Commit()
}

// loadMigrations returns the embedded migrations sorted by version
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		// "001_init.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%03d_", &version); err != nil {
			return nil, fmt.Errorf("invalid migration filename: %s", entry.Name())
		}

		content, err := fs.ReadFile(migrationsFS, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, migration{
			version: version,
			name:    entry.Name(),
			content: string(content),
		})
	}

	if len(migrations) == 0 {
		return nil, fmt.Errorf("no migration files found")
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}
