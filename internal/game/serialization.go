package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// StateChecksum is a deterministic digest of a game state.
type StateChecksum struct {
	Hash    string // SHA-256 of the canonical rendering
	Version int    // rendering version
}

const checksumVersion = 2

// Checksum computes a digest of the state that depends only on game content.
// Nil and empty sequences hash the same, so a state survives encode/decode
// round trips with an unchanged checksum.
func (s *GameState) Checksum() StateChecksum {
	sum := sha256.Sum256([]byte(s.canonical()))
	return StateChecksum{Hash: hex.EncodeToString(sum[:]), Version: checksumVersion}
}

// VerifyChecksum reports whether the state still matches expected.
func (s *GameState) VerifyChecksum(expected StateChecksum) bool {
	if expected.Version != checksumVersion {
		return false
	}
	return s.Checksum().Hash == expected.Hash
}

// canonical renders the state as text. Sequence order is part of the game
// (deck draw order, board columns) so nothing is sorted. Free text is quoted
// so separators inside names or log lines cannot shift field boundaries.
func (s *GameState) canonical() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "GAME:%d|%d|%s\n", s.CurrentPlayer, s.TurnNumber, s.Phase)
	for _, p := range []*Player{&s.Player1, &s.Player2} {
		fmt.Fprintf(&buf, "PLAYER:%d|%q|%d|%d\n", p.ID, p.Name, p.Life, p.Mana)
		buf.WriteString("  HAND:" + cardIDs(p.Hand) + "\n")
		buf.WriteString("  DECK:" + cardIDs(p.Deck) + "\n")
		for i, c := range p.Board.Creatures {
			fmt.Fprintf(&buf, "  CREATURE:%d|%s|%d|%d|%t\n", i, canonicalCard(c.Card), c.CurrentAttack, c.CurrentDefense, c.IsTapped)
		}
		for i, f := range p.Board.Feigns {
			fmt.Fprintf(&buf, "  FEIGN:%d|%s|%t\n", i, canonicalCard(f.Card), f.IsRevealed)
		}
	}
	if s.GlobalEffect != nil {
		fmt.Fprintf(&buf, "EFFECT:%s|%d\n", canonicalCard(s.GlobalEffect.Card), s.GlobalEffect.RemainingDuration)
	}
	for i, line := range s.GameLog {
		fmt.Fprintf(&buf, "LOG:%d|%q\n", i, line)
	}
	return buf.String()
}

func canonicalCard(c Card) string {
	return fmt.Sprintf("%d/%q/%s/%s/%d/%s/%s/%s/%q",
		c.ID, c.Name, c.CardType, c.Color, c.ManaCost,
		optInt(c.Attack), optInt(c.Defense), optInt(c.Duration), c.Effect)
}

func cardIDs(cards []Card) string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = strconv.Itoa(c.ID)
	}
	return strings.Join(ids, ",")
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

// EncodeState serializes a state with gob, the format used for replay files.
func EncodeState(s *GameState) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeState deserializes a state produced by EncodeState.
func DecodeState(data []byte) (*GameState, error) {
	var s GameState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &s, nil
}

// ValidateRoundtrip checks that a state survives gob encoding unchanged.
func ValidateRoundtrip(s *GameState) error {
	original := s.Checksum()

	data, err := EncodeState(s)
	if err != nil {
		return err
	}
	decoded, err := DecodeState(data)
	if err != nil {
		return err
	}

	if got := decoded.Checksum(); got.Hash != original.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, decoded=%s", original.Hash, got.Hash)
	}
	return nil
}
