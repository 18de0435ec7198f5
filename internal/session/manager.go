// Package session owns the single authoritative Feign game.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pickledire/feign-server-go/internal/catalog"
	"github.com/pickledire/feign-server-go/internal/game"
	"github.com/pickledire/feign-server-go/internal/game/rules"
	"github.com/pickledire/feign-server-go/internal/game/watchers"
	"github.com/pickledire/feign-server-go/internal/repository"
)

// ErrNoActiveGame is returned by every operation that needs a game when none exists.
var ErrNoActiveGame = game.ErrNoActiveGame

// Notification types.
const (
	NotifyGameCreated = "GAME_CREATED"
	NotifyStateChange = "STATE_CHANGE"
	NotifyGameOver    = "GAME_OVER"
	NotifyGameReset   = "GAME_RESET"
)

// Notification tells transports that the game changed.
type Notification struct {
	Type      string
	SessionID string
	State     *game.GameState // nil for NotifyGameReset
	Outcome   game.Outcome
	Timestamp time.Time
}

// NotificationHandler receives notifications after the manager lock is released.
type NotificationHandler func(notification Notification)

// Options configures a Manager.
type Options struct {
	Rules   game.Config
	Seed    uint64 // 0 draws a random seed for each game
	Catalog *catalog.Catalog
	Store   repository.MatchStore
	// Recorder keeps replays of every game; nil disables replays.
	Recorder *game.ReplayRecorder
	Logger   *zap.Logger
}

// Session is one running game with its event plumbing.
type Session struct {
	ID        string
	Seed      uint64
	StartedAt time.Time
	Engine    *game.Engine
	Events    *rules.EventBus
	Watchers  *rules.WatcherRegistry
	finished  bool
}

// Manager serializes all access to the active session.
type Manager struct {
	mu      sync.Mutex
	opts    Options
	logger  *zap.Logger
	session *Session

	handlerMu sync.RWMutex
	handler   NotificationHandler
}

// NewManager creates a manager with no active game.
func NewManager(opts Options) (*Manager, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load card catalog: %w", err)
		}
		opts.Catalog = c
	}
	if opts.Store == nil {
		opts.Store = repository.NopStore{}
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &Manager{opts: opts, logger: opts.Logger}, nil
}

// SetNotificationHandler registers the handler for game notifications.
func (m *Manager) SetNotificationHandler(handler NotificationHandler) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.handler = handler
}

func (m *Manager) emit(n Notification) {
	m.handlerMu.RLock()
	handler := m.handler
	m.handlerMu.RUnlock()

	if handler != nil {
		n.Timestamp = time.Now()
		handler(n)
	}
}

// CreateGame deals a new game, replacing any previous one.
func (m *Manager) CreateGame(ctx context.Context, player1, player2 string) (game.GameState, error) {
	if err := ctx.Err(); err != nil {
		return game.GameState{}, err
	}
	player1 = playerName(player1, "Player 1")
	player2 = playerName(player2, "Player 2")

	shuffler, seed, err := game.ShufflerForSeed(m.opts.Seed)
	if err != nil {
		return game.GameState{}, fmt.Errorf("seed shuffler: %w", err)
	}

	sessionID := uuid.NewString()
	bus := rules.NewEventBus()
	registry := watchers.NewStandardRegistry()
	registry.Attach(bus)

	engine, err := game.NewEngine(game.EngineConfig{
		Player1Name: player1,
		Player2Name: player2,
		Deck1:       m.opts.Catalog.Deck(),
		Deck2:       m.opts.Catalog.Deck(),
		Shuffler:    shuffler,
		Rules:       m.opts.Rules,
		Logger:      m.logger.With(zap.String("session_id", sessionID)),
		Events:      bus,
	})
	if err != nil {
		registry.Detach()
		return game.GameState{}, fmt.Errorf("create game: %w", err)
	}

	sess := &Session{
		ID:        sessionID,
		Seed:      seed,
		StartedAt: time.Now().UTC(),
		Engine:    engine,
		Events:    bus,
		Watchers:  registry,
	}

	m.mu.Lock()
	previous := m.session
	m.session = sess
	state := engine.State()
	if m.opts.Recorder != nil {
		m.opts.Recorder.StartRecording(sessionID)
		m.opts.Recorder.Record(sessionID, 0, nil, &state)
	}
	m.mu.Unlock()

	if previous != nil {
		m.closeSession(previous)
	}

	m.logger.Info("game created",
		zap.String("session_id", sessionID),
		zap.String("player1", player1),
		zap.String("player2", player2),
		zap.Uint64("seed", seed),
	)
	m.emit(Notification{Type: NotifyGameCreated, SessionID: sessionID, State: &state})
	return state, nil
}

func playerName(name, fallback string) string {
	if name = strings.TrimSpace(name); name == "" {
		return fallback
	}
	return name
}

// GetState returns a snapshot of the active game.
func (m *Manager) GetState() (game.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return game.GameState{}, ErrNoActiveGame
	}
	return m.session.Engine.State(), nil
}

// ProcessAction submits an action on behalf of playerID. Rule violations are
// reported in the result; the error is set only when there is no game.
func (m *Manager) ProcessAction(ctx context.Context, playerID int, action game.PlayerAction) (game.ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return game.ActionResult{}, err
	}

	m.mu.Lock()
	sess := m.session
	if sess == nil {
		m.mu.Unlock()
		return game.ActionResult{}, ErrNoActiveGame
	}

	result := sess.Engine.ProcessAction(playerID, action)
	if !result.Success {
		m.mu.Unlock()
		return result, nil
	}

	if m.opts.Recorder != nil {
		m.opts.Recorder.Record(sess.ID, playerID, action, result.NewState)
	}

	outcome := sess.Engine.IsGameOver()
	justFinished := outcome.Over && !sess.finished
	var record repository.MatchRecord
	if justFinished {
		sess.finished = true
		record = m.matchRecord(sess, outcome)
	}
	m.mu.Unlock()

	if justFinished {
		m.finishSession(ctx, sess, record)
		m.emit(Notification{Type: NotifyGameOver, SessionID: sess.ID, State: result.NewState, Outcome: outcome})
	} else {
		m.emit(Notification{Type: NotifyStateChange, SessionID: sess.ID, State: result.NewState, Outcome: outcome})
	}
	return result, nil
}

// CheckGameOver reports whether the active game has ended.
func (m *Manager) CheckGameOver() (game.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return game.Outcome{}, ErrNoActiveGame
	}
	return m.session.Engine.IsGameOver(), nil
}

// GetLog returns the active game's log.
func (m *Manager) GetLog() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, ErrNoActiveGame
	}
	return m.session.Engine.Log(), nil
}

// Stats returns the statistics collected for the active game so far.
func (m *Manager) Stats() (watchers.MatchStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return watchers.MatchStats{}, ErrNoActiveGame
	}
	return watchers.Collect(m.session.Watchers), nil
}

// SessionID returns the id of the active game, or "" when there is none.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return ""
	}
	return m.session.ID
}

// ListMatches returns recorded matches, most recent first.
func (m *Manager) ListMatches(ctx context.Context, limit int) ([]repository.MatchRecord, error) {
	records, err := m.opts.Store.ListMatches(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return records, nil
}

// ResetGame discards the active game, if any.
func (m *Manager) ResetGame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	previous := m.session
	m.session = nil
	m.mu.Unlock()

	if previous == nil {
		return nil
	}
	m.closeSession(previous)
	m.logger.Info("game reset", zap.String("session_id", previous.ID))
	m.emit(Notification{Type: NotifyGameReset, SessionID: previous.ID})
	return nil
}

// closeSession detaches a replaced or reset session and keeps its replay.
func (m *Manager) closeSession(sess *Session) {
	sess.Watchers.Detach()
	if sess.finished {
		// Replay was written when the game ended.
		return
	}
	m.saveReplay(sess.ID)
}

func (m *Manager) finishSession(ctx context.Context, sess *Session, record repository.MatchRecord) {
	m.logger.Info("game over",
		zap.String("session_id", sess.ID),
		zap.Int("winner", record.Winner),
		zap.Int("turns", record.Turns),
	)
	if err := m.opts.Store.SaveMatch(ctx, record); err != nil {
		m.logger.Error("failed to save match record",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}
	m.saveReplay(sess.ID)
}

func (m *Manager) saveReplay(sessionID string) {
	if m.opts.Recorder == nil || !m.opts.Recorder.IsRecording(sessionID) {
		return
	}
	if err := m.opts.Recorder.SaveReplay(sessionID); err != nil {
		m.logger.Warn("failed to save replay",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (m *Manager) matchRecord(sess *Session, outcome game.Outcome) repository.MatchRecord {
	state := sess.Engine.State()
	return repository.MatchRecord{
		ID:            uuid.NewString(),
		SessionID:     sess.ID,
		Player1:       state.Player1.Name,
		Player2:       state.Player2.Name,
		Winner:        outcome.Winner,
		Turns:         state.TurnNumber,
		FinalChecksum: state.Checksum().Hash,
		Stats:         watchers.Collect(sess.Watchers),
		StartedAt:     sess.StartedAt,
		EndedAt:       time.Now().UTC(),
	}
}
