// Package history persists the append-only command log and computes its
// derived analytics.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// sqliteTimeLayout is RFC 3339 UTC with a fixed nine-digit fraction.
// Timestamps are compared lexically in SQL, so every stored value must have
// identical width; trimmed fractions would mis-sort mixed-precision rows.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists history in a SQLite database with single-writer
// discipline. Reads never observe a partially written entry: every insert
// is one committed statement.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.llmsh/history/history.db.
func DefaultPath() string {
	return filepath.Join(userHome(), ".llmsh", "history", "history.db")
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	// synchronous=FULL so Record returns only after the entry is on disk
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=FULL;`,
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			input TEXT NOT NULL,
			command TEXT NOT NULL DEFAULT '',
			risk_tier TEXT NOT NULL,
			outcome TEXT NOT NULL,
			exit_code INTEGER,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			working_dir TEXT NOT NULL DEFAULT '',
			context_tag TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_history_outcome ON history(outcome);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return &domain.StorageError{Op: "init", Err: err}
		}
	}
	return nil
}

// Record implements ports.HistoryStore. The insert is committed before the
// call returns.
func (s *SQLiteStore) Record(entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO history
		(id, created_at, input, command, risk_tier, outcome, exit_code, duration_ms, working_dir, context_tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CreatedAt.UTC().Format(sqliteTimeLayout),
		entry.Input,
		entry.Command,
		entry.RiskTier.String(),
		string(entry.Outcome),
		nullableInt(entry.ExitCode),
		entry.DurationMS,
		entry.WorkingDir,
		entry.ContextTag,
	)
	if err != nil {
		return &domain.StorageError{Op: "record", Err: err}
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *SQLiteStore) Recent(limit int) ([]domain.HistoryEntry, error) {
	return s.query("", limit)
}

// Search matches term as a substring of input or command, most recent first.
func (s *SQLiteStore) Search(term string, limit int) ([]domain.HistoryEntry, error) {
	return s.query(term, limit)
}

func (s *SQLiteStore) query(term string, limit int) ([]domain.HistoryEntry, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, created_at, input, command, risk_tier, outcome, exit_code, duration_ms, working_dir, context_tag FROM history`)
	var args []interface{}
	if term != "" {
		builder.WriteString(" WHERE input LIKE ? OR command LIKE ?")
		args = append(args, "%"+term+"%", "%"+term+"%")
	}
	builder.WriteString(" ORDER BY created_at DESC, rowid DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan", Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats computes aggregates straight from the table; nothing is cached.
func (s *SQLiteStore) Stats(window domain.StatsWindow) (domain.HistoryStats, error) {
	entries, err := s.entriesSince(window.Since)
	if err != nil {
		return domain.HistoryStats{}, err
	}
	return computeStats(entries), nil
}

func (s *SQLiteStore) entriesSince(since time.Time) ([]domain.HistoryEntry, error) {
	query := `SELECT id, created_at, input, command, risk_tier, outcome, exit_code, duration_ms, working_dir, context_tag FROM history`
	var args []interface{}
	if !since.IsZero() {
		query += " WHERE created_at >= ?"
		args = append(args, since.UTC().Format(sqliteTimeLayout))
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "stats", Err: err}
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan", Err: err}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CommandUsage aggregates successful command frequency, optionally filtered
// to the given context tags.
func (s *SQLiteStore) CommandUsage(tags []string) ([]domain.CommandUsage, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT command, COUNT(*), MAX(created_at) FROM history
		WHERE outcome = ? AND command != ''`)
	args := []interface{}{string(domain.OutcomeSuccess)}
	if len(tags) > 0 {
		builder.WriteString(" AND context_tag IN (?" + strings.Repeat(",?", len(tags)-1) + ")")
		for _, tag := range tags {
			args = append(args, tag)
		}
	}
	builder.WriteString(" GROUP BY command")

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "usage", Err: err}
	}
	defer rows.Close()

	var usage []domain.CommandUsage
	for rows.Next() {
		var u domain.CommandUsage
		var last string
		if err := rows.Scan(&u.Command, &u.Count, &last); err != nil {
			return nil, &domain.StorageError{Op: "scan", Err: err}
		}
		if t, err := time.Parse(time.RFC3339Nano, last); err == nil {
			u.LastUsed = t
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// Export serializes all entries to a JSONL file, oldest first.
func (s *SQLiteStore) Export(path string) error {
	entries, err := s.entriesSince(time.Time{})
	if err != nil {
		return err
	}
	return writeJSONL(path, entries)
}

// Import loads entries from a JSONL file produced by Export and returns the
// number inserted.
func (s *SQLiteStore) Import(path string) (int, error) {
	entries, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := s.Record(entry); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// Clear deletes all entries in one atomic statement.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return &domain.StorageError{Op: "clear", Err: err}
	}
	return nil
}

// PruneOlderThan removes entries older than the given number of days.
func (s *SQLiteStore) PruneOlderThan(days int) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be > 0")
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(sqliteTimeLayout)
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, &domain.StorageError{Op: "prune", Err: err}
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var created, tier, outcome string
	var exitCode sql.NullInt64
	if err := row.Scan(&entry.ID, &created, &entry.Input, &entry.Command,
		&tier, &outcome, &exitCode, &entry.DurationMS, &entry.WorkingDir, &entry.ContextTag); err != nil {
		return domain.HistoryEntry{}, err
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		entry.CreatedAt = t
	}
	entry.RiskTier = domain.ParseRiskTier(tier)
	entry.Outcome = domain.Outcome(outcome)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		entry.ExitCode = &code
	}
	return entry, nil
}

func nullableInt(value *int) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func userHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.HistoryStore = (*SQLiteStore)(nil)
