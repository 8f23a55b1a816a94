package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nvandessel/resonance/internal/constants"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements ResultStore on a SQLite file at .resonance/resonance.db.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sqlx.DB
	dir    string
	dbPath string
}

// recordRow is the column layout of the records table.
type recordRow struct {
	ID        string `db:"id"`
	Kind      string `db:"kind"`
	CreatedAt string `db:"created_at"`
	Cycles    int    `db:"cycles"`
	Summary   string `db:"summary"`
	Payload   string `db:"payload"`
}

// NewSQLiteStore opens (creating if needed) the history database under projectRoot.
func NewSQLiteStore(projectRoot string) (*SQLiteStore, error) {
	dir := LocalResonancePath(projectRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .resonance directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dir: dir, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Save inserts rec or replaces the record with the same ID.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) (string, error) {
	rec, err := prepare(rec)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO records (id, kind, created_at, cycles, summary, payload)
		VALUES (:id, :kind, :created_at, :cycles, :summary, :payload)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			created_at = excluded.created_at,
			cycles = excluded.cycles,
			summary = excluded.summary,
			payload = excluded.payload
	`, toRow(rec))
	if err != nil {
		return "", fmt.Errorf("failed to save record %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// Get returns the record with id, or nil if not found.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row recordRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, kind, created_at, cycles, summary, payload FROM records WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}

	rec, err := row.toRecord()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, kind, created_at, cycles, summary, payload FROM records`
	var args []any
	if filter.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes the record with id. Deleting a missing record is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func toRow(rec Record) recordRow {
	return recordRow{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		Cycles:    rec.Cycles,
		Summary:   rec.Summary,
		Payload:   string(rec.Payload),
	}
}

func (row recordRow) toRecord() (Record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("record %s has bad created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	return Record{
		ID:        row.ID,
		Kind:      constants.RecordKind(row.Kind),
		CreatedAt: createdAt,
		Cycles:    row.Cycles,
		Summary:   row.Summary,
		Payload:   []byte(row.Payload),
	}, nil
}
