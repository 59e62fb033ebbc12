package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionStats contains aggregated statistics over the session history.
type SessionStats struct {
	Sessions     int
	Wins         int
	Losses       int
	BestTile     int
	AvgMoves     float64
	TotalMoves   int64
	TotalPlaying time.Duration
	LastPlayed   time.Time
}

// WinRate returns the share of won sessions, or 0 when nothing was played.
func (st *SessionStats) WinRate() float64 {
	if st.Sessions == 0 {
		return 0
	}
	return float64(st.Wins) / float64(st.Sessions)
}

// Stats retrieves aggregated statistics for all recorded sessions.
func (s *Store) Stats() (*SessionStats, error) {
	stats := &SessionStats{}

	var durationMS int64
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'won' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'lost' THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(max_tile), 0),
		        COALESCE(AVG(moves), 0),
		        COALESCE(SUM(moves), 0),
		        COALESCE(SUM(duration_ms), 0)
		 FROM sessions`,
	).Scan(
		&stats.Sessions,
		&stats.Wins,
		&stats.Losses,
		&stats.BestTile,
		&stats.AvgMoves,
		&stats.TotalMoves,
		&durationMS,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get session stats: %w", err)
	}
	stats.TotalPlaying = time.Duration(durationMS) * time.Millisecond

	var lastStarted int64
	err = s.db.QueryRow(
		`SELECT started_at_ms FROM sessions ORDER BY started_at_ms DESC LIMIT 1`,
	).Scan(&lastStarted)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = time.UnixMilli(lastStarted)
	}

	return stats, nil
}
