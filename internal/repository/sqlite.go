package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	player1 TEXT NOT NULL,
	player2 TEXT NOT NULL,
	winner INTEGER NOT NULL,
	turns INTEGER NOT NULL,
	final_checksum TEXT NOT NULL,
	stats TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS matches_ended_at ON matches (ended_at);
`

// SQLiteStore keeps match records in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// SaveMatch implements MatchStore.
func (s *SQLiteStore) SaveMatch(ctx context.Context, record MatchRecord) error {
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	if err := record.Validate(); err != nil {
		return err
	}
	stats, err := json.Marshal(record.Stats)
	if err != nil {
		return fmt.Errorf("encode match stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (
		   id, session_id, player1, player2, winner, turns,
		   final_checksum, stats, started_at, ended_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.SessionID,
		record.Player1,
		record.Player2,
		record.Winner,
		record.Turns,
		record.FinalChecksum,
		string(stats),
		toMillis(record.StartedAt),
		toMillis(record.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", record.ID, err)
	}
	return nil
}

// ListMatches implements MatchStore.
func (s *SQLiteStore) ListMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, player1, player2, winner, turns,
		        final_checksum, stats, started_at, ended_at
		   FROM matches
		  ORDER BY ended_at DESC, id
		  LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var (
			rec       MatchRecord
			stats     string
			startedAt int64
			endedAt   int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Player1, &rec.Player2, &rec.Winner,
			&rec.Turns, &rec.FinalChecksum, &stats, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
			return nil, fmt.Errorf("decode stats for match %s: %w", rec.ID, err)
		}
		rec.StartedAt = fromMillis(startedAt)
		rec.EndedAt = fromMillis(endedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return records, nil
}

// Close implements MatchStore.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
