package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReplayFrame is one recorded step: the action that was applied (empty for
// the opening frame) and the state it produced.
type ReplayFrame struct {
	PlayerID int
	Action   string // wire form of the action
	State    GameState
	Checksum string
}

// Replay is a recorded game as a sequence of post-action snapshots.
type Replay struct {
	SessionID    string
	Frames       []ReplayFrame
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(sessionID string) *Replay {
	return &Replay{
		SessionID: sessionID,
		Frames:    make([]ReplayFrame, 0),
	}
}

// Record appends a snapshot. The state is copied.
func (r *Replay) Record(playerID int, action PlayerAction, state *GameState) {
	frame := ReplayFrame{
		PlayerID: playerID,
		State:    state.Clone(),
		Checksum: state.Checksum().Hash,
	}
	if action != nil {
		if data, err := EncodeAction(action); err == nil {
			frame.Action = string(data)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, frame)
}

// Start rewinds to the first frame.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the frame at the cursor and moves forward, or nil at the end.
func (r *Replay) Next() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Frames) {
		frame := &r.Frames[r.CurrentIndex]
		r.CurrentIndex++
		return frame
	}
	return nil
}

// Previous moves back one frame and returns it, or nil at the start.
func (r *Replay) Previous() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return &r.Frames[r.CurrentIndex]
	}
	return nil
}

// Skip moves the cursor by count frames, clamped to the recording.
func (r *Replay) Skip(count int) *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Frames) == 0 {
		return nil
	}
	idx := r.CurrentIndex + count
	if idx >= len(r.Frames) {
		idx = len(r.Frames) - 1
	}
	if idx < 0 {
		idx = 0
	}
	r.CurrentIndex = idx
	return &r.Frames[idx]
}

// Position returns the cursor index.
func (r *Replay) Position() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.CurrentIndex
}

// Size returns the number of recorded frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Frames)
}

// FrameAt returns the frame at index, or nil.
func (r *Replay) FrameAt(index int) *ReplayFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.Frames) {
		return &r.Frames[index]
	}
	return nil
}

// Verify recomputes every frame's checksum.
func (r *Replay) Verify() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.Frames {
		if got := r.Frames[i].State.Checksum().Hash; got != r.Frames[i].Checksum {
			return fmt.Errorf("frame %d: checksum mismatch", i)
		}
	}
	return nil
}

type replayMetadata struct {
	SessionID  string
	Timestamp  time.Time
	Version    int
	FrameCount int
}

const replayVersion = 1

func replayPath(directory, sessionID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", sessionID))
}

// SaveToFile writes the replay as gzipped gob to <directory>/<session>.replay.
func (r *Replay) SaveToFile(directory string) (err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(replayPath(directory, r.SessionID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)

	metadata := replayMetadata{
		SessionID:  r.SessionID,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		FrameCount: len(r.Frames),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range r.Frames {
		if err := encoder.Encode(&r.Frames[i]); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, sessionID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.SessionID)
	for i := 0; i < metadata.FrameCount; i++ {
		var frame ReplayFrame
		if err := decoder.Decode(&frame); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		replay.Frames = append(replay.Frames, frame)
	}
	return replay, nil
}

// ReplayRecorder keeps in-memory replays per session and writes them to disk.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a recorder that saves into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins a fresh replay for a session, replacing any previous one.
func (rr *ReplayRecorder) StartRecording(sessionID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[sessionID] = NewReplay(sessionID)
	rr.logger.Info("started replay recording", zap.String("session_id", sessionID))
}

// Record appends a frame to a session's replay if it is being recorded.
func (rr *ReplayRecorder) Record(sessionID string, playerID int, action PlayerAction, state *GameState) {
	rr.mu.RLock()
	replay := rr.replays[sessionID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	replay.Record(playerID, action, state)
	rr.logger.Debug("recorded replay frame",
		zap.String("session_id", sessionID),
		zap.Int("frame_count", replay.Size()),
	)
}

// IsRecording reports whether a session has an in-memory replay.
func (rr *ReplayRecorder) IsRecording(sessionID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	_, ok := rr.replays[sessionID]
	return ok
}

// SaveReplay writes a session's replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(sessionID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[sessionID]
	if !ok {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for session %s", sessionID)
	}
	delete(rr.replays, sessionID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	rr.logger.Info("saved replay to disk",
		zap.String("session_id", sessionID),
		zap.Int("frame_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// LoadReplay reads a saved replay from the recorder's directory.
func (rr *ReplayRecorder) LoadReplay(sessionID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, sessionID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk",
		zap.String("session_id", sessionID),
		zap.Int("frame_count", replay.Size()),
	)
	return replay, nil
}
