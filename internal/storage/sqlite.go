// Package storage provides SQLite-based persistence for finished game sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// Only session outcomes are stored. A running game is never persisted, so a
// restart always begins with a fresh board.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/games/t2048"
)

// Store manages the SQLite database connection for session history.
type Store struct {
	db *sql.DB
}

// SessionEntry represents a single finished session record.
type SessionEntry struct {
	ID        int64
	SessionID string
	Status    string // "won" or "lost"
	MaxTile   int
	Moves     int
	Rotations int
	Seed      uint64
	Board     t2048.Board
	StartedAt time.Time
	Duration  time.Duration
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			max_tile INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			rotations INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			board TEXT NOT NULL,
			started_at_ms INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
		CREATE INDEX IF NOT EXISTS idx_sessions_best ON sessions(max_tile DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at_ms DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a finished session.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(r dispatch.Result) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO sessions
		 (session_id, status, max_tile, moves, rotations, seed, board, started_at_ms, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Status.String(),
		int(r.MaxTile),
		r.Moves,
		r.Rotations,
		int64(r.Seed), // Stored as the same 64 bits
		formatBoard(r.Board),
		r.StartedAt.UnixMilli(),
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveSessionResult implements dispatch.ResultSaver.
// This adapter allows the dispatcher to save results without direct storage dependency.
func (s *Store) SaveSessionResult(r dispatch.Result) error {
	_, err := s.SaveSession(r)
	return err
}

// Ensure Store implements ResultSaver
var _ dispatch.ResultSaver = (*Store)(nil)

const sessionColumns = `id, session_id, status, max_tile, moves, rotations, seed, board,
		        started_at_ms, duration_ms, created_at`

// SessionByID retrieves a session by its session ID.
// Returns nil if no such session was recorded.
func (s *Store) SessionByID(sessionID string) (*SessionEntry, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE session_id = ?`,
		sessionID,
	)

	e, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return &e, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.querySessions(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 ORDER BY started_at_ms DESC, id DESC
		 LIMIT ?`,
		limit,
	)
}

// BestSessions retrieves the sessions that reached the highest tiles.
// Ties are broken by fewer moves.
func (s *Store) BestSessions(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.querySessions(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 ORDER BY max_tile DESC, moves ASC
		 LIMIT ?`,
		limit,
	)
}

// ClearSessions deletes the whole session history.
func (s *Store) ClearSessions() error {
	_, err := s.db.Exec("DELETE FROM sessions")
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

func (s *Store) querySessions(query string, args ...any) ([]SessionEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		e, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionEntry, error) {
	var (
		e          SessionEntry
		seed       int64
		board      string
		startedMS  int64
		durationMS int64
		createdAt  any
	)
	if err := row.Scan(
		&e.ID,
		&e.SessionID,
		&e.Status,
		&e.MaxTile,
		&e.Moves,
		&e.Rotations,
		&seed,
		&board,
		&startedMS,
		&durationMS,
		&createdAt,
	); err != nil {
		return SessionEntry{}, err
	}

	parsed, err := parseBoard(board)
	if err != nil {
		return SessionEntry{}, err
	}

	e.Seed = uint64(seed)
	e.Board = parsed
	e.StartedAt = time.UnixMilli(startedMS)
	e.Duration = time.Duration(durationMS) * time.Millisecond
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}

// parseTimestamp handles both time.Time and string values for DATETIME columns.
func parseTimestamp(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
