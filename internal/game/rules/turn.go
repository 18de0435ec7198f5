package rules

import (
	"fmt"
)

// Phase represents one of the four stages of a Feign turn.
type Phase int

const (
	PhaseDraw Phase = iota
	PhasePlacement
	PhaseAttack
	PhaseEndTurn
)

var phaseNames = map[Phase]string{
	PhaseDraw:      "Draw",
	PhasePlacement: "Placement",
	PhaseAttack:    "Attack",
	PhaseEndTurn:   "EndTurn",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Valid reports whether p is one of the enumerated phases.
func (p Phase) Valid() bool {
	_, ok := phaseNames[p]
	return ok
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase returns the phase with the given name.
func ParsePhase(name string) (Phase, error) {
	for phase, n := range phaseNames {
		if n == name {
			return phase, nil
		}
	}
	return PhaseDraw, fmt.Errorf("unknown phase %q", name)
}

// turnSequence is the fixed phase order within a turn.
var turnSequence = []Phase{
	PhaseDraw,
	PhasePlacement,
	PhaseAttack,
	PhaseEndTurn,
}

// Transition describes a single phase advance.
type Transition struct {
	From    Phase
	To      Phase
	NewTurn bool // true when the advance wrapped into the next player's turn
}

// TurnState tracks the active player, turn number and phase.
// It is embedded in the game state so that it serializes alongside it.
type TurnState struct {
	CurrentPlayer int   `json:"current_player"`
	TurnNumber    int   `json:"turn_number"`
	Phase         Phase `json:"phase"`
}

// NewTurnState returns the state at the start of a game: turn 1, Draw phase.
func NewTurnState(firstPlayer int) TurnState {
	return TurnState{
		CurrentPlayer: firstPlayer,
		TurnNumber:    1,
		Phase:         PhaseDraw,
	}
}

// Advance moves to the next phase. Leaving EndTurn swaps the current player
// between 1 and 2 and increments the turn number.
func (ts *TurnState) Advance() Transition {
	from := ts.Phase
	idx := 0
	for i, phase := range turnSequence {
		if phase == from {
			idx = i
			break
		}
	}

	idx++
	tr := Transition{From: from}
	if idx >= len(turnSequence) {
		idx = 0
		ts.TurnNumber++
		ts.CurrentPlayer = Opponent(ts.CurrentPlayer)
		tr.NewTurn = true
	}
	ts.Phase = turnSequence[idx]
	tr.To = ts.Phase
	return tr
}

// Opponent returns the other seat of a two-player game.
func Opponent(playerID int) int {
	if playerID == 1 {
		return 2
	}
	return 1
}

// Sequence returns the phase order for inspection.
func Sequence() []Phase {
	out := make([]Phase, len(turnSequence))
	copy(out, turnSequence)
	return out
}
