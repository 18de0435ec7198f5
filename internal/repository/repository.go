// Package repository records finished matches.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pickledire/feign-server-go/internal/config"
	"github.com/pickledire/feign-server-go/internal/game/watchers"
)

// ErrNotConfigured is returned by stores that were never opened.
var ErrNotConfigured = errors.New("match store is not configured")

// MatchRecord is the summary of one finished game.
type MatchRecord struct {
	ID            string              `json:"id"`
	SessionID     string              `json:"session_id"`
	Player1       string              `json:"player1"`
	Player2       string              `json:"player2"`
	Winner        int                 `json:"winner"` // 0 when both players fell together
	Turns         int                 `json:"turns"`
	FinalChecksum string              `json:"final_checksum"`
	Stats         watchers.MatchStats `json:"stats"`
	StartedAt     time.Time           `json:"started_at"`
	EndedAt       time.Time           `json:"ended_at"`
}

// Validate checks the fields every store requires.
func (r MatchRecord) Validate() error {
	if r.ID == "" {
		return errors.New("match id is required")
	}
	if r.SessionID == "" {
		return errors.New("session id is required")
	}
	if r.Winner < 0 || r.Winner > 2 {
		return fmt.Errorf("invalid winner %d", r.Winner)
	}
	return nil
}

// MatchStore persists match records.
type MatchStore interface {
	SaveMatch(ctx context.Context, record MatchRecord) error
	// ListMatches returns the most recent matches first.
	ListMatches(ctx context.Context, limit int) ([]MatchRecord, error)
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (MatchStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("match store opened", zap.String("driver", cfg.Driver), zap.String("dsn", cfg.DSN))
		return store, nil
	case config.DriverPostgres:
		store, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		stats := store.pool.Stat()
		logger.Info("match store opened",
			zap.String("driver", cfg.Driver),
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		return store, nil
	case config.DriverNone, "":
		logger.Info("match store disabled")
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NopStore discards every record.
type NopStore struct{}

// SaveMatch implements MatchStore.
func (NopStore) SaveMatch(context.Context, MatchRecord) error { return nil }

// ListMatches implements MatchStore.
func (NopStore) ListMatches(context.Context, int) ([]MatchRecord, error) { return nil, nil }

// Close implements MatchStore.
func (NopStore) Close() error { return nil }

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
