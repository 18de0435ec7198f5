package game

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pickledire/feign-server-go/internal/game/rules"
)

// PlayerAction is one of PlayCreature, PlayFeign, PlayEffect, Attack,
// RevealFeign or EndPhase. The set is closed.
type PlayerAction interface {
	Kind() rules.ActionKind
	isPlayerAction()
}

// PlayCreature plays a creature card from hand onto the board.
type PlayCreature struct {
	CardID int `json:"card_id"`
}

// PlayFeign plays a feign card face down.
type PlayFeign struct {
	CardID int `json:"card_id"`
}

// PlayEffect plays an effect card as the global effect.
type PlayEffect struct {
	CardID int `json:"card_id"`
}

// Attack attacks with the creature in the given column.
type Attack struct {
	CreatureIndex int `json:"creature_index"`
}

// RevealFeign turns the feign in the given column face up.
type RevealFeign struct {
	FeignIndex int `json:"feign_index"`
}

// EndPhase advances the turn to the next phase.
type EndPhase struct{}

func (PlayCreature) Kind() rules.ActionKind { return rules.ActionPlayCreature }
func (PlayFeign) Kind() rules.ActionKind    { return rules.ActionPlayFeign }
func (PlayEffect) Kind() rules.ActionKind   { return rules.ActionPlayEffect }
func (Attack) Kind() rules.ActionKind       { return rules.ActionAttack }
func (RevealFeign) Kind() rules.ActionKind  { return rules.ActionRevealFeign }
func (EndPhase) Kind() rules.ActionKind     { return rules.ActionEndPhase }

func (PlayCreature) isPlayerAction() {}
func (PlayFeign) isPlayerAction()    {}
func (PlayEffect) isPlayerAction()   {}
func (Attack) isPlayerAction()       {}
func (RevealFeign) isPlayerAction()  {}
func (EndPhase) isPlayerAction()     {}

// EncodeAction renders an action in its externally tagged wire form:
// {"PlayCreature":{"card_id":3}} or "EndPhase".
func EncodeAction(action PlayerAction) ([]byte, error) {
	if action == nil {
		return nil, fmt.Errorf("nil action")
	}
	if _, ok := action.(EndPhase); ok {
		return json.Marshal(action.Kind().String())
	}
	return json.Marshal(map[string]PlayerAction{action.Kind().String(): action})
}

// DecodeAction parses the externally tagged wire form produced by EncodeAction.
// A bare tag object such as {"EndPhase":null} is accepted as well.
func DecodeAction(data []byte) (PlayerAction, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("empty action")
	}

	if data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return nil, fmt.Errorf("decode action tag: %w", err)
		}
		if tag != rules.ActionEndPhase.String() {
			return nil, fmt.Errorf("action %q requires a payload", tag)
		}
		return EndPhase{}, nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("action must have exactly one tag, got %d", len(tagged))
	}

	for tag, payload := range tagged {
		switch tag {
		case "PlayCreature":
			return decodeTagged[PlayCreature](tag, payload)
		case "PlayFeign":
			return decodeTagged[PlayFeign](tag, payload)
		case "PlayEffect":
			return decodeTagged[PlayEffect](tag, payload)
		case "Attack":
			return decodeTagged[Attack](tag, payload)
		case "RevealFeign":
			return decodeTagged[RevealFeign](tag, payload)
		case "EndPhase":
			return EndPhase{}, nil
		default:
			return nil, fmt.Errorf("unknown action %q", tag)
		}
	}
	return nil, fmt.Errorf("unreachable")
}

func decodeTagged[A PlayerAction](tag string, payload json.RawMessage) (PlayerAction, error) {
	var a A
	if err := decodePayload(tag, payload, &a); err != nil {
		return nil, err
	}
	return a, nil
}

func decodePayload(tag string, payload json.RawMessage, out any) error {
	if len(payload) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return fmt.Errorf("action %q requires a payload", tag)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s payload: %w", tag, err)
	}
	return nil
}
