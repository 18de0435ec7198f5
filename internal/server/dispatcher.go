// Package server exposes the session manager over WebSocket and gRPC.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pickledire/feign-server-go/internal/game"
	"github.com/pickledire/feign-server-go/internal/session"
)

// Commands understood by both transports.
const (
	CmdCreateGame    = "create_game"
	CmdGetGameState  = "get_game_state"
	CmdProcessAction = "process_action"
	CmdCheckGameOver = "check_game_over"
	CmdGetGameLog    = "get_game_log"
	CmdResetGame     = "reset_game"
	CmdGetStats      = "get_stats"
	CmdListMatches   = "list_matches"
)

var (
	// ErrUnknownCommand is returned for commands the dispatcher does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadRequest wraps malformed request payloads.
	ErrBadRequest = errors.New("bad request")
)

// CreateGameRequest starts a new game.
type CreateGameRequest struct {
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`
}

// ProcessActionRequest submits one player action.
type ProcessActionRequest struct {
	PlayerID int             `json:"player_id"`
	Action   json.RawMessage `json:"action"`
}

// ListMatchesRequest pages through recorded matches.
type ListMatchesRequest struct {
	Limit int `json:"limit"`
}

// Dispatcher routes decoded commands to the session manager.
type Dispatcher struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over sessions.
func NewDispatcher(sessions *session.Manager, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sessions: sessions, logger: logger}
}

// Dispatch runs command with its JSON payload and returns a JSON-encodable result.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, data json.RawMessage) (any, error) {
	switch command {
	case CmdCreateGame:
		var req CreateGameRequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		return d.sessions.CreateGame(ctx, req.Player1Name, req.Player2Name)

	case CmdGetGameState:
		return d.sessions.GetState()

	case CmdProcessAction:
		var req ProcessActionRequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		if len(req.Action) == 0 {
			return nil, fmt.Errorf("%w: action is required", ErrBadRequest)
		}
		action, err := game.DecodeAction(req.Action)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return d.sessions.ProcessAction(ctx, req.PlayerID, action)

	case CmdCheckGameOver:
		return d.sessions.CheckGameOver()

	case CmdGetGameLog:
		return d.sessions.GetLog()

	case CmdResetGame:
		if err := d.sessions.ResetGame(ctx); err != nil {
			return nil, err
		}
		return "Game reset", nil

	case CmdGetStats:
		return d.sessions.Stats()

	case CmdListMatches:
		var req ListMatchesRequest
		if err := decodeRequest(data, &req); err != nil {
			return nil, err
		}
		return d.sessions.ListMatches(ctx, req.Limit)

	default:
		d.logger.Debug("unknown command", zap.String("command", command))
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

// decodeRequest accepts an empty or null payload as the zero request.
func decodeRequest(data json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
