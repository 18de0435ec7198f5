package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	player1 TEXT NOT NULL,
	player2 TEXT NOT NULL,
	winner SMALLINT NOT NULL,
	turns INTEGER NOT NULL,
	final_checksum TEXT NOT NULL,
	stats JSONB NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS matches_ended_at ON matches (ended_at);
`

// PostgresStore keeps match records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// SaveMatch implements MatchStore.
func (s *PostgresStore) SaveMatch(ctx context.Context, record MatchRecord) error {
	if s == nil || s.pool == nil {
		return ErrNotConfigured
	}
	if err := record.Validate(); err != nil {
		return err
	}
	stats, err := json.Marshal(record.Stats)
	if err != nil {
		return fmt.Errorf("encode match stats: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO matches (
		   id, session_id, player1, player2, winner, turns,
		   final_checksum, stats, started_at, ended_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID,
		record.SessionID,
		record.Player1,
		record.Player2,
		record.Winner,
		record.Turns,
		record.FinalChecksum,
		stats,
		record.StartedAt.UTC(),
		record.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", record.ID, err)
	}
	return tx.Commit(ctx)
}

// ListMatches implements MatchStore.
func (s *PostgresStore) ListMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, player1, player2, winner, turns,
		        final_checksum, stats, started_at, ended_at
		   FROM matches
		  ORDER BY ended_at DESC, id
		  LIMIT $1`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MatchRecord, error) {
		var (
			rec   MatchRecord
			stats []byte
		)
		if err := row.Scan(&rec.ID, &rec.SessionID, &rec.Player1, &rec.Player2, &rec.Winner,
			&rec.Turns, &rec.FinalChecksum, &stats, &rec.StartedAt, &rec.EndedAt); err != nil {
			return rec, err
		}
		if err := json.Unmarshal(stats, &rec.Stats); err != nil {
			return rec, fmt.Errorf("decode stats for match %s: %w", rec.ID, err)
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect matches: %w", err)
	}
	return records, nil
}

// Close implements MatchStore.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
