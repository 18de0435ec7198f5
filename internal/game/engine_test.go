package game

import (
	"testing"

	"github.com/pickledire/feign-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineDealsOpeningHands(t *testing.T) {
	h := newTestHarness(t, numberedCreatures(8), numberedCreatures(8))
	s := h.state()

	assert.Equal(t, 1, s.CurrentPlayer)
	assert.Equal(t, 1, s.TurnNumber)
	assert.Equal(t, rules.PhaseDraw, s.Phase)
	assert.Nil(t, s.GlobalEffect)

	for _, p := range []*Player{&s.Player1, &s.Player2} {
		assert.Equal(t, 20, p.Life)
		assert.Equal(t, 5, p.Mana)
		assert.Len(t, p.Hand, 5)
		assert.Len(t, p.Deck, 3)
		assert.Empty(t, p.Board.Creatures)
		assert.Empty(t, p.Board.Feigns)
	}

	// Cards come off the end of the deck.
	ids := make([]int, 0, 5)
	for _, c := range s.Player1.Hand {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{8, 7, 6, 5, 4}, ids)

	require.Len(t, s.GameLog, 11)
	assert.Equal(t, "Game started!", s.GameLog[0])
	assert.Equal(t, "Alice draws a card", s.GameLog[1])
	assert.Equal(t, "Bob draws a card", s.GameLog[2])

	started := h.eventsOf(rules.EventGameStarted)
	require.Len(t, started, 1)
	assert.Equal(t, "Alice vs Bob", started[0].Description)
	assert.Len(t, h.eventsOf(rules.EventCardDrawn), 10)
}

func TestNewEngineShufflesWithSeed(t *testing.T) {
	deal := func(seed uint64) []Card {
		e, err := NewEngine(EngineConfig{
			Player1Name: "Alice",
			Player2Name: "Bob",
			Deck1:       numberedCreatures(20),
			Deck2:       numberedCreatures(20),
			Shuffler:    NewSeededRand(seed),
			Rules:       DefaultConfig(),
		})
		require.NoError(t, err)
		return e.State().Player1.Hand
	}

	assert.Equal(t, deal(42), deal(42))
	assert.NotEqual(t, deal(42), deal(7))
}

func TestNewEngineRejectsInvalidRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartingLife = 0
	_, err := NewEngine(EngineConfig{Player1Name: "A", Player2Name: "B", Rules: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting life")
}

func TestNewEngineEmptyDeckLogsFailedDraws(t *testing.T) {
	h := newTestHarness(t, nil, numberedCreatures(2))
	s := h.state()

	assert.Empty(t, s.Player1.Hand)
	assert.Len(t, s.Player2.Hand, 2)
	assert.Contains(t, s.GameLog, "Alice cannot draw - deck is empty!")
	assert.Contains(t, s.GameLog, "Bob cannot draw - deck is empty!")
	assert.Len(t, h.eventsOf(rules.EventDeckEmpty), 8)
}

func TestNotYourTurnLeavesStateUntouched(t *testing.T) {
	h := newTestHarness(t, numberedCreatures(8), numberedCreatures(8))
	before := h.stateJSON()
	checksum := h.state().Checksum()

	actions := []PlayerAction{
		EndPhase{},
		PlayCreature{CardID: 8},
		Attack{CreatureIndex: 0},
		RevealFeign{FeignIndex: 0},
	}
	for _, action := range actions {
		res := h.do(2, action)
		assert.False(t, res.Success)
		assert.Equal(t, "It's not your turn!", res.Message)
		assert.Equal(t, ErrKindNotYourTurn, res.Error)
		assert.Nil(t, res.NewState)
	}

	// Unknown seats never own the turn either.
	for _, playerID := range []int{0, 3, -1} {
		res := h.do(playerID, EndPhase{})
		assert.False(t, res.Success)
		assert.Equal(t, ErrKindNotYourTurn, res.Error, "player %d", playerID)
	}

	assert.Equal(t, before, h.stateJSON())
	assert.True(t, h.state().VerifyChecksum(checksum))
	assert.Len(t, h.eventsOf(rules.EventActionRejected), len(actions)+3)
	assert.Equal(t, rules.PhaseDraw, h.state().Phase)
}

func TestNotYourTurnAfterGameOver(t *testing.T) {
	h := newTestHarness(t, numberedCreatures(8), numberedCreatures(8))
	h.player(2).Life = 0
	require.True(t, h.engine.IsGameOver().Over)
	before := h.stateJSON()

	res := h.do(2, EndPhase{})
	assert.Equal(t, ErrKindNotYourTurn, res.Error)
	res = h.do(3, EndPhase{})
	assert.Equal(t, ErrKindNotYourTurn, res.Error)

	res = h.do(1, EndPhase{})
	assert.Equal(t, ErrKindGameOver, res.Error)
	assert.Equal(t, before, h.stateJSON())
}

func TestNilActionRejected(t *testing.T) {
	h := newEmptyHarness(t)

	res := h.do(1, nil)
	assert.False(t, res.Success)
	assert.Equal(t, ErrKindUnsupportedAction, res.Error)
}

func TestPhaseGating(t *testing.T) {
	tests := []struct {
		name    string
		phase   rules.Phase
		action  PlayerAction
		message string
	}{
		{"creature in draw", rules.PhaseDraw, PlayCreature{CardID: 1}, "Can only play creatures during placement phase"},
		{"feign in attack", rules.PhaseAttack, PlayFeign{CardID: 2}, "Can only play feigns during placement phase"},
		{"effect in end turn", rules.PhaseEndTurn, PlayEffect{CardID: 3}, "Can only play effects during placement phase"},
		{"attack in placement", rules.PhasePlacement, Attack{CreatureIndex: 0}, "Can only attack during attack phase"},
		{"reveal in placement", rules.PhasePlacement, RevealFeign{FeignIndex: 0}, "Can only reveal feigns during attack phase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newEmptyHarness(t)
			h.setPhase(tt.phase)
			h.setHand(1, creatureCard(1, "Wolf", 1, 1, 1), feignCard(2, "Trap", EffectShieldTrap, 1), effectCard(3, "Storm", 1, 2))
			h.addCreature(1, creatureCard(4, "Imp", 1, 2, 1))
			h.addFeign(1, feignCard(5, "Hidden", EffectIllusion, 1))
			before := h.stateJSON()

			res := h.do(1, tt.action)
			assert.False(t, res.Success)
			assert.Equal(t, ErrKindWrongPhase, res.Error)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, before, h.stateJSON())
		})
	}
}

func TestPlayCreature(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhasePlacement)
	wolf := creatureCard(10, "Forest Wolf", 2, 3, 2)
	h.setHand(1, creatureCard(11, "Imp", 1, 2, 1), wolf)

	res := h.mustDo(1, PlayCreature{CardID: 10})
	assert.Equal(t, "Creature played successfully", res.Message)
	assert.Empty(t, res.Error)

	p := res.NewState.Player1
	assert.Equal(t, 3, p.Mana)
	require.Len(t, p.Hand, 1)
	assert.Equal(t, 11, p.Hand[0].ID)
	require.Len(t, p.Board.Creatures, 1)
	c := p.Board.Creatures[0]
	assert.Equal(t, 3, c.CurrentAttack)
	assert.Equal(t, 2, c.CurrentDefense)
	assert.False(t, c.IsTapped)

	assert.Equal(t, []string{"Game started!", "Alice plays Forest Wolf"}, res.NewState.GameLog)
	require.Len(t, h.eventsOf(rules.EventCardPlayed), 1)
	assert.Equal(t, 2, h.eventsOf(rules.EventManaPaid)[0].Amount)
}

func TestPlayCardFailuresPreserveHandOrder(t *testing.T) {
	hand := []Card{
		creatureCard(1, "Wolf", 2, 3, 2),
		feignCard(2, "Trap", EffectShieldTrap, 1),
		creatureCard(3, "Dragon", 6, 7, 5),
		effectCard(4, "Inferno", 4, 2),
	}

	tests := []struct {
		name    string
		action  PlayerAction
		kind    ErrorKind
		message string
	}{
		{"missing card", PlayCreature{CardID: 99}, ErrKindCardNotFound, "Card not found in hand"},
		{"feign as creature", PlayCreature{CardID: 2}, ErrKindWrongCardType, "Card is not a creature"},
		{"creature as feign", PlayFeign{CardID: 1}, ErrKindWrongCardType, "Card is not a feign"},
		{"creature as effect", PlayEffect{CardID: 1}, ErrKindWrongCardType, "Card is not an effect"},
		{"too expensive", PlayCreature{CardID: 3}, ErrKindInsufficientMana, "Not enough mana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newEmptyHarness(t)
			h.setPhase(rules.PhasePlacement)
			h.setHand(1, cloneCards(hand)...)
			before := h.stateJSON()

			res := h.do(1, tt.action)
			assert.False(t, res.Success)
			assert.Equal(t, tt.kind, res.Error)
			assert.Equal(t, tt.message, res.Message)
			assert.Nil(t, res.NewState)
			assert.Equal(t, before, h.stateJSON())
			assert.Empty(t, h.eventsOf(rules.EventCardPlayed))
		})
	}
}

func TestPlayFeign(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhasePlacement)
	h.setHand(1, feignCard(20, "Shield Trap", EffectShieldTrap, 1))

	res := h.mustDo(1, PlayFeign{CardID: 20})
	assert.Equal(t, "Feign played successfully", res.Message)

	p := res.NewState.Player1
	assert.Equal(t, 4, p.Mana)
	assert.Empty(t, p.Hand)
	require.Len(t, p.Board.Feigns, 1)
	assert.False(t, p.Board.Feigns[0].IsRevealed)
	assert.Equal(t, "Alice plays a feign card", res.NewState.GameLog[len(res.NewState.GameLog)-1])
}

func TestPlayEffectReplacesPrevious(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhasePlacement)
	h.player(1).Mana = 10
	h.setHand(1, effectCard(30, "Inferno", 4, 2), effectCard(31, "Frozen Time", 5, 4))

	res := h.mustDo(1, PlayEffect{CardID: 30})
	assert.Equal(t, "Effect played successfully", res.Message)
	require.NotNil(t, res.NewState.GlobalEffect)
	assert.Equal(t, 2, res.NewState.GlobalEffect.RemainingDuration)

	logLen := len(h.state().GameLog)
	res = h.mustDo(1, PlayEffect{CardID: 31})
	require.NotNil(t, res.NewState.GlobalEffect)
	assert.Equal(t, "Frozen Time", res.NewState.GlobalEffect.Card.Name)
	assert.Equal(t, 4, res.NewState.GlobalEffect.RemainingDuration)
	assert.Equal(t, 1, res.NewState.Player1.Mana)
	assert.Len(t, h.state().GameLog, logLen+1)
	assert.Equal(t, "Alice plays global effect: Frozen Time", h.state().GameLog[logLen])

	replaced := h.eventsOf(rules.EventEffectReplaced)
	require.Len(t, replaced, 1)
	assert.Equal(t, "Inferno", replaced[0].Data)
}

func TestPlayEffectDefaultDuration(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhasePlacement)
	card := effectCard(30, "Odd", 1, 1)
	card.Duration = nil
	h.setHand(1, card)

	res := h.mustDo(1, PlayEffect{CardID: 30})
	require.NotNil(t, res.NewState.GlobalEffect)
	assert.Equal(t, 3, res.NewState.GlobalEffect.RemainingDuration)
}

func TestAttackDirectDamageClampsAtZero(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhaseAttack)
	h.addCreature(1, creatureCard(1, "Ember Warrior", 3, 4, 2))
	h.player(2).Life = 3

	res := h.mustDo(1, Attack{CreatureIndex: 0})
	assert.Equal(t, "Direct attack for 4 damage", res.Message)
	assert.Equal(t, 0, res.NewState.Player2.Life)
	assert.True(t, res.NewState.Player1.Board.Creatures[0].IsTapped)
	assert.Contains(t, res.NewState.GameLog, "Ember Warrior deals 4 damage directly to Bob (Life: 0)")

	damaged := h.eventsOf(rules.EventPlayerDamaged)
	require.Len(t, damaged, 1)
	assert.Equal(t, 3, damaged[0].Amount)
	assert.Equal(t, 2, damaged[0].PlayerID)

	assert.Equal(t, Outcome{Over: true, Winner: 1}, h.engine.IsGameOver())
	require.Len(t, h.eventsOf(rules.EventGameOver), 1)

	after := h.do(1, EndPhase{})
	assert.False(t, after.Success)
	assert.Equal(t, ErrKindGameOver, after.Error)
	after = h.do(2, EndPhase{})
	assert.Equal(t, ErrKindNotYourTurn, after.Error)
}

func TestAttackRejections(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhaseAttack)
	h.addCreature(1, creatureCard(1, "Wolf", 2, 3, 2))

	res := h.do(1, Attack{CreatureIndex: 1})
	assert.Equal(t, ErrKindInvalidIndex, res.Error)
	assert.Equal(t, "No creature at that index to attack with", res.Message)

	res = h.do(1, Attack{CreatureIndex: -1})
	assert.Equal(t, ErrKindInvalidIndex, res.Error)

	h.mustDo(1, Attack{CreatureIndex: 0})
	lifeAfterFirst := h.player(2).Life

	res = h.do(1, Attack{CreatureIndex: 0})
	assert.False(t, res.Success)
	assert.Equal(t, ErrKindCreatureTapped, res.Error)
	assert.Equal(t, lifeAfterFirst, h.player(2).Life)
}

func TestAttackTriggersDefendingFeign(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhaseAttack)
	h.addCreature(1, creatureCard(1, "Wolf", 2, 3, 2))
	h.addFeign(2, feignCard(2, "Shield Trap", EffectShieldTrap, 1))

	res := h.mustDo(1, Attack{CreatureIndex: 0})
	assert.True(t, res.NewState.Player2.Board.Feigns[0].IsRevealed)
	assert.Equal(t, 17, res.NewState.Player2.Life)

	log := res.NewState.GameLog
	assert.Equal(t, []string{
		"Game started!",
		"Feign Shield Trap is revealed!",
		"Shield Trap activates - damage reduced!",
		"Alice attacks with Wolf (ATK: 3)",
		"Wolf deals 3 damage directly to Bob (Life: 17)",
	}, log)
	assert.Len(t, h.eventsOf(rules.EventFeignRevealed), 1)
}

func TestAttackIntoBlocker(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhaseAttack)
	h.addCreature(1, creatureCard(1, "Striker", 1, 5, 3))
	h.addCreature(2, creatureCard(2, "Wall", 1, 2, 4))

	res := h.mustDo(1, Attack{CreatureIndex: 0})
	assert.Equal(t, "Combat resolved", res.Message)
	assert.Empty(t, res.NewState.Player2.Board.Creatures)
	assert.Equal(t, 19, res.NewState.Player2.Life)
	require.Len(t, res.NewState.Player1.Board.Creatures, 1)
	assert.Equal(t, 1, res.NewState.Player1.Board.Creatures[0].CurrentDefense)
	assert.True(t, res.NewState.Player1.Board.Creatures[0].IsTapped)

	assert.Len(t, h.eventsOf(rules.EventCreatureDestroyed), 1)
	assert.Len(t, h.eventsOf(rules.EventCreatureDamaged), 2)
}

func TestRevealFeign(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhaseAttack)
	h.addFeign(1, feignCard(1, "Counter Strike", EffectCounterStrike, 2))
	h.addFeign(1, feignCard(2, "Mystery", EffectID("unknown"), 1))

	res := h.mustDo(1, RevealFeign{FeignIndex: 0})
	assert.Equal(t, "Revealed: Counter Strike", res.Message)
	assert.True(t, res.NewState.Player1.Board.Feigns[0].IsRevealed)
	assert.Equal(t, []string{
		"Game started!",
		"Alice reveals feign: Counter Strike",
		"Counter Strike activates - attacker takes damage!",
	}, res.NewState.GameLog)

	res = h.do(1, RevealFeign{FeignIndex: 0})
	assert.Equal(t, ErrKindAlreadyRevealed, res.Error)
	assert.Equal(t, "Feign already revealed", res.Message)

	res = h.do(1, RevealFeign{FeignIndex: 5})
	assert.Equal(t, ErrKindInvalidIndex, res.Error)
	assert.Equal(t, "No feign at that index", res.Message)

	res = h.mustDo(1, RevealFeign{FeignIndex: 1})
	assert.Equal(t, "Mystery effect activates", res.NewState.GameLog[len(res.NewState.GameLog)-1])
}

func TestEndPhaseDrawGrantsManaAndUntaps(t *testing.T) {
	h := newTestHarness(t, numberedCreatures(8), numberedCreatures(8))
	h.addCreature(1, creatureCard(50, "Tired", 1, 1, 1))
	h.player(1).Board.Creatures[0].IsTapped = true

	res := h.mustDo(1, EndPhase{})
	assert.Equal(t, "Phase advanced to Placement", res.Message)

	p := res.NewState.Player1
	assert.Len(t, p.Hand, 6)
	assert.Len(t, p.Deck, 2)
	assert.Equal(t, 7, p.Mana)
	assert.False(t, p.Board.Creatures[0].IsTapped)
	assert.Equal(t, 5, res.NewState.Player2.Mana)

	log := res.NewState.GameLog
	assert.Equal(t, []string{"Alice draws a card", "Entering placement phase"}, log[len(log)-2:])
	assert.Len(t, h.eventsOf(rules.EventCreaturesUntapped), 1)
	require.Len(t, h.eventsOf(rules.EventManaGained), 1)
}

func TestEndPhaseDrawWithEmptyDeck(t *testing.T) {
	h := newEmptyHarness(t)

	res := h.mustDo(1, EndPhase{})
	assert.Empty(t, res.NewState.Player1.Hand)
	assert.Equal(t, 7, res.NewState.Player1.Mana)
	assert.Equal(t, []string{
		"Game started!",
		"Alice cannot draw - deck is empty!",
		"Entering placement phase",
	}, res.NewState.GameLog)
}

func TestFourEndPhasesCycleTurn(t *testing.T) {
	h := newTestHarness(t, numberedCreatures(8), numberedCreatures(8))

	want := []rules.Phase{rules.PhasePlacement, rules.PhaseAttack, rules.PhaseEndTurn, rules.PhaseDraw}
	for _, phase := range want {
		res := h.mustDo(1, EndPhase{})
		assert.Equal(t, phase, res.NewState.Phase)
	}

	s := h.state()
	assert.Equal(t, rules.PhaseDraw, s.Phase)
	assert.Equal(t, 2, s.TurnNumber)
	assert.Equal(t, 2, s.CurrentPlayer)
	assert.Equal(t, "Turn 2: Bob's turn begins", s.GameLog[len(s.GameLog)-1])
	assert.Len(t, h.eventsOf(rules.EventPhaseChanged), 4)
	assert.Len(t, h.eventsOf(rules.EventTurnStarted), 1)

	res := h.do(1, EndPhase{})
	assert.Equal(t, ErrKindNotYourTurn, res.Error)
}

func TestGlobalEffectExpiresAfterTwoTurns(t *testing.T) {
	h := newEmptyHarness(t)
	h.setPhase(rules.PhasePlacement)
	h.setHand(1, effectCard(30, "Curse of Weakness", 2, 2))
	h.mustDo(1, PlayEffect{CardID: 30})

	// Placement -> Attack -> EndTurn -> Draw (player 2).
	for i := 0; i < 3; i++ {
		h.mustDo(1, EndPhase{})
	}
	require.NotNil(t, h.state().GlobalEffect)
	assert.Equal(t, 1, h.state().GlobalEffect.RemainingDuration)
	assert.NotContains(t, h.state().GameLog, "Global effect Curse of Weakness expires")

	// Draw -> Placement -> Attack -> EndTurn for player 2.
	for i := 0; i < 3; i++ {
		h.mustDo(2, EndPhase{})
	}
	require.NotNil(t, h.state().GlobalEffect)

	res := h.mustDo(2, EndPhase{})
	assert.Nil(t, res.NewState.GlobalEffect)
	log := res.NewState.GameLog
	assert.Equal(t, []string{
		"Global effect Curse of Weakness expires",
		"Turn 3: Alice's turn begins",
	}, log[len(log)-2:])
	assert.Len(t, h.eventsOf(rules.EventEffectExpired), 1)
}

func TestIsGameOver(t *testing.T) {
	tests := []struct {
		name   string
		life1  int
		life2  int
		expect Outcome
	}{
		{"both alive", 20, 1, Outcome{}},
		{"player one dead", 0, 5, Outcome{Over: true, Winner: 2}},
		{"player two dead", 5, 0, Outcome{Over: true, Winner: 1}},
		{"both dead", 0, 0, Outcome{Over: true, Winner: NoWinner}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newEmptyHarness(t)
			h.player(1).Life = tt.life1
			h.player(2).Life = tt.life2
			assert.Equal(t, tt.expect, h.engine.IsGameOver())
		})
	}
}

func TestStateReturnsIndependentCopy(t *testing.T) {
	h := newTestHarness(t, numberedCreatures(8), numberedCreatures(8))

	snapshot := h.engine.State()
	snapshot.Player1.Life = 1
	snapshot.Player1.Hand[0].Name = "Changed"
	*snapshot.Player1.Hand[0].Attack = 99
	snapshot.GameLog[0] = "rewritten"

	s := h.state()
	assert.Equal(t, 20, s.Player1.Life)
	assert.Equal(t, "Token", s.Player1.Hand[0].Name)
	assert.Equal(t, 1, *s.Player1.Hand[0].Attack)
	assert.Equal(t, "Game started!", h.engine.Log()[0])
}

// TestScriptedGameInvariants plays a long seeded game of arbitrary actions and
// checks life, mana and card conservation after every step.
func TestScriptedGameInvariants(t *testing.T) {
	deck := []Card{
		creatureCard(1, "Imp", 1, 2, 1),
		creatureCard(2, "Wolf", 2, 3, 2),
		creatureCard(3, "Golem", 4, 4, 4),
		creatureCard(4, "Dragon", 6, 7, 5),
		feignCard(5, "Shield Trap", EffectShieldTrap, 1),
		feignCard(6, "Counter Strike", EffectCounterStrike, 2),
		effectCard(7, "Inferno", 4, 2),
		effectCard(8, "Blessing", 3, 3),
	}
	var deck1, deck2 []Card
	for i := 0; i < 3; i++ {
		deck1 = append(deck1, deck...)
		deck2 = append(deck2, deck...)
	}

	h := newTestHarness(t, deck1, deck2)
	rng := NewSeededRand(2024)

	cardsOwned := func(p *Player) int {
		n := len(p.Hand) + len(p.Deck) + len(p.Board.Creatures) + len(p.Board.Feigns)
		return n
	}

	for step := 0; step < 400 && !h.engine.IsGameOver().Over; step++ {
		s := h.state()
		actor := s.Current()
		before := cardsOwned(actor)
		effectBefore := s.GlobalEffect != nil

		var action PlayerAction
		switch rng.IntN(6) {
		case 0:
			action = EndPhase{}
		case 1:
			if len(actor.Hand) > 0 {
				action = PlayCreature{CardID: actor.Hand[rng.IntN(len(actor.Hand))].ID}
			}
		case 2:
			if len(actor.Hand) > 0 {
				action = PlayFeign{CardID: actor.Hand[rng.IntN(len(actor.Hand))].ID}
			}
		case 3:
			if len(actor.Hand) > 0 {
				action = PlayEffect{CardID: actor.Hand[rng.IntN(len(actor.Hand))].ID}
			}
		case 4:
			action = Attack{CreatureIndex: rng.IntN(3)}
		case 5:
			action = RevealFeign{FeignIndex: rng.IntN(3)}
		}
		if action == nil {
			action = EndPhase{}
		}

		manaBefore := actor.Mana
		res := h.do(actor.ID, action)

		for _, p := range []*Player{&s.Player1, &s.Player2} {
			require.GreaterOrEqual(t, p.Life, 0)
			require.GreaterOrEqual(t, p.Mana, 0)
		}
		if ge := s.GlobalEffect; ge != nil {
			require.GreaterOrEqual(t, ge.RemainingDuration, 1)
		}

		if !res.Success {
			require.Equal(t, manaBefore, actor.Mana)
			require.Nil(t, res.NewState)
			continue
		}
		switch action.(type) {
		case PlayCreature, PlayFeign:
			require.Equal(t, before, cardsOwned(actor))
			require.Less(t, actor.Mana, manaBefore+1)
		case PlayEffect:
			require.Equal(t, before-1, cardsOwned(actor))
			require.True(t, s.GlobalEffect != nil || effectBefore)
		}
	}
}
