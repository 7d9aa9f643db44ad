package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/oklog/ulid/v2"

	"github.com/akam1o/guidl/pkg/errors"
	"github.com/akam1o/guidl/pkg/logger"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// sqliteStore implements Store using SQLite.
type sqliteStore struct {
	db     *sql.DB
	dbPath string
	log    *logger.Logger

	// entropy is monotonic so IDs minted in the same millisecond still sort
	entropyMu sync.Mutex
	entropy   io.Reader

	closeOnce sync.Once
}

// NewSQLiteStore opens (creating if needed) the history database at dbPath
// and brings its schema up to date.
func NewSQLiteStore(ctx context.Context, dbPath string, log *logger.Logger) (Store, error) {
	if dbPath == "" {
		return nil, errors.New(errors.ErrCodeHistory, "History database path is empty", "", "Set history_path or pass -history")
	}
	if log == nil {
		log = logger.Discard("history")
	}

	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, wrapErr(err, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, wrapErr(err, "failed to open database")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on lock contention
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, wrapErr(err, fmt.Sprintf("failed to set pragma %q", pragma))
		}
	}

	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxIdleTime(1 * time.Minute)
	}

	m := &migrator{db: db, log: log}
	if err := m.apply(ctx); err != nil {
		db.Close()
		return nil, wrapErr(err, "failed to apply migrations")
	}

	return &sqliteStore{
		db:      db,
		dbPath:  dbPath,
		log:     log,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database. It is safe to call more than once.
func (s *sqliteStore) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		closeErr = s.db.Close()
	})
	return closeErr
}

// newID mints a ULID for a run created at t
func (s *sqliteStore) newID(t time.Time) (string, error) {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Record implements Store.
func (s *sqliteStore) Record(ctx context.Context, run *Run) (string, error) {
	if run == nil {
		return "", errors.New(errors.ErrCodeHistory, "Run is nil", "", "")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	id, err := s.newID(run.CreatedAt)
	if err != nil {
		return "", wrapErr(err, "failed to generate run ID")
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO parse_runs
				(run_id, session_id, name, source, outline, success, diagnostic, token_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, run.SessionID, run.Name, run.Source, run.Outline, run.Success, run.Diagnostic, run.TokenCount, run.CreatedAt)
		return err
	})
	if err != nil {
		return "", wrapErr(err, "failed to record run")
	}

	run.ID = id
	return id, nil
}

// List implements Store.
func (s *sqliteStore) List(ctx context.Context, opts *ListOptions) ([]*Run, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	query := `
		SELECT run_id, session_id, name, source, outline, success, diagnostic, token_count, created_at
		FROM parse_runs
		WHERE 1=1
	`
	args := []interface{}{}

	if opts.Name != "" {
		query += " AND name = ?"
		args = append(args, opts.Name)
	}
	if opts.FailedOnly {
		query += " AND success = 0"
	}

	// ULIDs sort by creation time
	query += " ORDER BY run_id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to query run history")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, wrapErr(err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "failed to iterate run history")
	}
	return runs, nil
}

// Get implements Store.
func (s *sqliteStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, session_id, name, source, outline, success, diagnostic, token_count, created_at
		FROM parse_runs
		WHERE run_id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(
				errors.ErrCodeRunNotFound,
				fmt.Sprintf("Run not found: %s", id),
				"No run with this ID was recorded",
				"List runs with 'guidl history list'",
			)
		}
		return nil, wrapErr(err, "failed to get run")
	}
	return run, nil
}

// Compare implements Store.
func (s *sqliteStore) Compare(ctx context.Context, id1, id2 string) (*DiffResult, error) {
	run1, err := s.Get(ctx, id1)
	if err != nil {
		return nil, err
	}
	run2, err := s.Get(ctx, id2)
	if err != nil {
		return nil, err
	}
	return CompareTexts(run1.Source, run2.Source), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	err := sc.Scan(
		&run.ID,
		&run.SessionID,
		&run.Name,
		&run.Source,
		&run.Outline,
		&run.Success,
		&run.Diagnostic,
		&run.TokenCount,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// withTx executes fn within a write transaction, handling commit/rollback automatically.
func (s *sqliteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func wrapErr(err error, message string) *errors.Error {
	return errors.Wrap(err, errors.ErrCodeHistory, message, "", "")
}
