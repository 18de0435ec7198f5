package game

import (
	"encoding/json"
	"testing"

	"github.com/pickledire/feign-server-go/internal/game/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// testHarness wraps an engine dealt from fixed, unshuffled decks so tests
// can arrange boards directly.
type testHarness struct {
	t      *testing.T
	engine *Engine
	bus    *rules.EventBus
	events []rules.Event
}

func newTestHarness(t *testing.T, deck1, deck2 []Card) *testHarness {
	t.Helper()
	h := &testHarness{t: t, bus: rules.NewEventBus()}
	h.bus.Subscribe(func(ev rules.Event) { h.events = append(h.events, ev) })

	engine, err := NewEngine(EngineConfig{
		Player1Name: "Alice",
		Player2Name: "Bob",
		Deck1:       deck1,
		Deck2:       deck2,
		Rules:       DefaultConfig(),
		Logger:      zaptest.NewLogger(t),
		Events:      h.bus,
	})
	require.NoError(t, err)
	h.engine = engine
	return h
}

// newEmptyHarness starts a game with empty decks and clears the log.
func newEmptyHarness(t *testing.T) *testHarness {
	h := newTestHarness(t, nil, nil)
	h.engine.state.GameLog = []string{"Game started!"}
	h.events = nil
	return h
}

func (h *testHarness) state() *GameState {
	return &h.engine.state
}

func (h *testHarness) player(id int) *Player {
	return h.engine.state.PlayerByID(id)
}

func (h *testHarness) setPhase(phase rules.Phase) {
	h.engine.state.Phase = phase
}

func (h *testHarness) setHand(playerID int, cards ...Card) {
	h.player(playerID).Hand = cards
}

func (h *testHarness) addCreature(playerID int, card Card) {
	p := h.player(playerID)
	p.Board.Creatures = append(p.Board.Creatures, NewCreature(card))
}

func (h *testHarness) addFeign(playerID int, card Card) {
	p := h.player(playerID)
	p.Board.Feigns = append(p.Board.Feigns, FeignCard{Card: card})
}

func (h *testHarness) do(playerID int, action PlayerAction) ActionResult {
	h.t.Helper()
	return h.engine.ProcessAction(playerID, action)
}

func (h *testHarness) mustDo(playerID int, action PlayerAction) ActionResult {
	h.t.Helper()
	res := h.engine.ProcessAction(playerID, action)
	require.Truef(h.t, res.Success, "action %s failed: %s", action.Kind(), res.Message)
	require.NotNil(h.t, res.NewState)
	return res
}

func (h *testHarness) eventsOf(eventType rules.EventType) []rules.Event {
	var out []rules.Event
	for _, ev := range h.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (h *testHarness) stateJSON() string {
	h.t.Helper()
	data, err := json.Marshal(h.engine.state)
	require.NoError(h.t, err)
	return string(data)
}

func creatureCard(id int, name string, cost, attack, defense int) Card {
	return Card{
		ID:       id,
		Name:     name,
		CardType: CardTypeCreature,
		Color:    ColorCinder,
		ManaCost: cost,
		Attack:   IntPtr(attack),
		Defense:  IntPtr(defense),
	}
}

func feignCard(id int, name string, effect EffectID, cost int) Card {
	return Card{
		ID:       id,
		Name:     name,
		CardType: CardTypeFeign,
		Color:    ColorIvory,
		ManaCost: cost,
		Effect:   effect,
	}
}

func effectCard(id int, name string, cost, duration int) Card {
	return Card{
		ID:       id,
		Name:     name,
		CardType: CardTypeEffect,
		Color:    ColorAzure,
		ManaCost: cost,
		Duration: IntPtr(duration),
	}
}

func numberedCreatures(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = creatureCard(i+1, "Token", 1, 1, 1)
	}
	return cards
}
