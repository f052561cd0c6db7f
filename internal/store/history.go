package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// ErrHistoryNotFound is returned when a history ID does not exist.
var ErrHistoryNotFound = errors.New("history entry not found")

// maxHistoryRows bounds the history table; older rows are pruned on insert.
const maxHistoryRows = 100

// HistoryEntry is one recorded search: the query, which engine served it,
// and a summary. The full record list is stored alongside and retrievable
// by ID for export.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	Query     string `json:"query"`
	Source    string `json:"source"`
	Total     int    `json:"total"`
	CreatedAt string `json:"created_at"`
}

// SaveHistory records a completed search with its full result set.
func (s *Store) SaveHistory(query string, source engine.Source, videos []engine.Video) (int64, error) {
	data, err := json.Marshal(videos)
	if err != nil {
		return 0, fmt.Errorf("store: encode history: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO history (query, source, total, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		query, string(source), len(videos), string(data), now,
	)
	if err != nil {
		return 0, fmt.Errorf("store: save history: %w", err)
	}
	id, _ := res.LastInsertId()

	s.db.Exec( //nolint:errcheck
		`DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
		maxHistoryRows,
	)
	return id, nil
}

// ListHistory returns the most recent entries, newest first.
func (s *Store) ListHistory(limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, query, source, total, created_at FROM history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.Source, &e.Total, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HistoryVideos returns the stored record list for one history entry.
func (s *Store) HistoryVideos(id int64) ([]engine.Video, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM history WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read history %d: %w", id, err)
	}
	var videos []engine.Video
	if err := json.Unmarshal([]byte(data), &videos); err != nil {
		return nil, fmt.Errorf("store: decode history %d: %w", id, err)
	}
	return videos, nil
}
