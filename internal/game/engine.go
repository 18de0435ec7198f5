package game

import (
	"fmt"

	"github.com/pickledire/feign-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// NoWinner is the winner reported when both players reach zero life together.
const NoWinner = 0

// Config holds the tunable rules of a game.
type Config struct {
	StartingLife          int `mapstructure:"starting_life"`
	StartingMana          int `mapstructure:"starting_mana"`
	InitialHandSize       int `mapstructure:"initial_hand_size"`
	ManaPerTurn           int `mapstructure:"mana_per_turn"`
	DefaultEffectDuration int `mapstructure:"default_effect_duration"`
}

// DefaultConfig returns the standard rules: 20 life, 5 mana, five-card hands,
// +2 mana per turn and three-turn effects when a card omits its duration.
func DefaultConfig() Config {
	return Config{
		StartingLife:          20,
		StartingMana:          5,
		InitialHandSize:       5,
		ManaPerTurn:           2,
		DefaultEffectDuration: 3,
	}
}

// Validate rejects rule values no game can start with.
func (c Config) Validate() error {
	if c.StartingLife < 1 {
		return fmt.Errorf("starting life must be positive, got %d", c.StartingLife)
	}
	if c.StartingMana < 0 {
		return fmt.Errorf("starting mana must not be negative, got %d", c.StartingMana)
	}
	if c.InitialHandSize < 0 {
		return fmt.Errorf("initial hand size must not be negative, got %d", c.InitialHandSize)
	}
	if c.ManaPerTurn < 0 {
		return fmt.Errorf("mana per turn must not be negative, got %d", c.ManaPerTurn)
	}
	if c.DefaultEffectDuration < 1 {
		return fmt.Errorf("default effect duration must be at least 1, got %d", c.DefaultEffectDuration)
	}
	return nil
}

// ActionResult is the outcome of one submitted action. NewState is set
// exactly when Success is true; Error is set exactly when it is false.
type ActionResult struct {
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	Error    ErrorKind  `json:"error,omitempty"`
	NewState *GameState `json:"new_state,omitempty"`
}

// Outcome reports whether the game has ended and who won.
type Outcome struct {
	Over   bool `json:"over"`
	Winner int  `json:"winner"`
}

// EngineConfig carries everything needed to start a game.
type EngineConfig struct {
	Player1Name string
	Player2Name string
	Deck1       []Card // shuffled by Shuffler before drawing
	Deck2       []Card
	Shuffler    Shuffler
	Rules       Config
	Logger      *zap.Logger
	Events      *rules.EventBus
}

// Engine owns one game's authoritative state. It is not safe for concurrent
// use; callers serialize access.
type Engine struct {
	state  GameState
	cfg    Config
	logger *zap.Logger
	events *rules.EventBus
	over   bool
}

// NewEngine deals a new game: both players start with the configured life
// and mana, a shuffled deck and an opening hand, with player 1 in the Draw
// phase of turn 1.
func NewEngine(ec EngineConfig) (*Engine, error) {
	if err := ec.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	logger := ec.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		cfg:    ec.Rules,
		logger: logger,
		events: ec.Events,
		state: GameState{
			Player1:   newPlayer(1, ec.Player1Name, ShuffleDeck(ec.Deck1, ec.Shuffler), ec.Rules),
			Player2:   newPlayer(2, ec.Player2Name, ShuffleDeck(ec.Deck2, ec.Shuffler), ec.Rules),
			TurnState: rules.NewTurnState(1),
			GameLog:   []string{"Game started!"},
		},
	}
	e.publish(rules.EventGameStarted, 0, func(ev *rules.Event) {
		ev.Description = fmt.Sprintf("%s vs %s", e.state.Player1.Name, e.state.Player2.Name)
	})

	for i := 0; i < ec.Rules.InitialHandSize; i++ {
		e.draw(&e.state.Player1)
		e.draw(&e.state.Player2)
	}

	e.logger.Info("game started",
		zap.String("player1", e.state.Player1.Name),
		zap.String("player2", e.state.Player2.Name),
		zap.Int("deck1_size", len(e.state.Player1.Deck)),
		zap.Int("deck2_size", len(e.state.Player2.Deck)),
	)
	return e, nil
}

func newPlayer(id int, name string, deck []Card, cfg Config) Player {
	return Player{
		ID:    id,
		Name:  name,
		Life:  cfg.StartingLife,
		Mana:  cfg.StartingMana,
		Hand:  []Card{},
		Deck:  deck,
		Board: PlayerBoard{Creatures: []Creature{}, Feigns: []FeignCard{}},
	}
}

// State returns a deep copy of the current game state.
func (e *Engine) State() GameState {
	return e.state.Clone()
}

// Log returns a copy of the game log.
func (e *Engine) Log() []string {
	return append([]string(nil), e.state.GameLog...)
}

// Rules returns the rules the game was started with.
func (e *Engine) Rules() Config {
	return e.cfg
}

// IsGameOver reports whether either player has reached zero life. The winner
// is the other player, or NoWinner when both are at zero.
func (e *Engine) IsGameOver() Outcome {
	p1Dead := e.state.Player1.Life == 0
	p2Dead := e.state.Player2.Life == 0
	switch {
	case p1Dead && p2Dead:
		return Outcome{Over: true, Winner: NoWinner}
	case p1Dead:
		return Outcome{Over: true, Winner: 2}
	case p2Dead:
		return Outcome{Over: true, Winner: 1}
	default:
		return Outcome{}
	}
}

// ProcessAction validates and applies an action submitted by playerID.
// Rejected actions leave the state untouched.
func (e *Engine) ProcessAction(playerID int, action PlayerAction) ActionResult {
	message, err := e.apply(playerID, action)
	if err != nil {
		kind := KindOf(err)
		e.logger.Debug("action rejected",
			zap.Int("player_id", playerID),
			zap.String("action", actionName(action)),
			zap.String("error_kind", string(kind)),
			zap.String("reason", err.Error()),
		)
		e.publish(rules.EventActionRejected, playerID, func(ev *rules.Event) {
			ev.Data = string(kind)
			ev.Description = err.Error()
		})
		return ActionResult{Success: false, Message: err.Error(), Error: kind}
	}

	e.logger.Debug("action applied",
		zap.Int("player_id", playerID),
		zap.String("action", actionName(action)),
		zap.Int("turn", e.state.TurnNumber),
		zap.String("phase", e.state.Phase.String()),
	)
	e.checkGameOver()

	snapshot := e.state.Clone()
	return ActionResult{Success: true, Message: message, NewState: &snapshot}
}

// apply checks turn ownership before anything else, so a seat other than the
// current one (including an unknown id) always gets NotYourTurn.
func (e *Engine) apply(playerID int, action PlayerAction) (string, error) {
	if playerID != e.state.CurrentPlayer {
		return "", ErrNotYourTurn
	}
	if e.IsGameOver().Over {
		return "", ErrGameOver
	}
	if action == nil {
		return "", ErrUnsupportedAction
	}
	player := e.state.PlayerByID(playerID)
	if player == nil {
		return "", newActionError(ErrKindInvalidPlayer, fmt.Sprintf("Unknown player %d", playerID))
	}
	if !rules.Allowed(e.state.Phase, action.Kind()) {
		return "", wrongPhase(action.Kind())
	}

	switch a := action.(type) {
	case PlayCreature:
		return e.playCreature(player, a.CardID)
	case PlayFeign:
		return e.playFeign(player, a.CardID)
	case PlayEffect:
		return e.playEffect(player, a.CardID)
	case Attack:
		return e.attack(player, a.CreatureIndex)
	case RevealFeign:
		return e.revealFeign(player, a.FeignIndex)
	case EndPhase:
		return e.endPhase(), nil
	default:
		return "", ErrUnsupportedAction
	}
}

func wrongPhase(kind rules.ActionKind) *ActionError {
	var msg string
	switch kind {
	case rules.ActionPlayCreature:
		msg = "Can only play creatures during placement phase"
	case rules.ActionPlayFeign:
		msg = "Can only play feigns during placement phase"
	case rules.ActionPlayEffect:
		msg = "Can only play effects during placement phase"
	case rules.ActionAttack:
		msg = "Can only attack during attack phase"
	case rules.ActionRevealFeign:
		msg = "Can only reveal feigns during attack phase"
	default:
		msg = ErrWrongPhase.Message
	}
	return newActionError(ErrKindWrongPhase, msg)
}

// takeFromHand checks that the card is in hand, has the wanted type and is
// affordable, and only then removes it and pays for it.
func (e *Engine) takeFromHand(player *Player, cardID int, want CardType) (Card, error) {
	idx := player.handIndex(cardID)
	if idx < 0 {
		return Card{}, ErrCardNotFound
	}
	card := player.Hand[idx]
	if card.CardType != want {
		return Card{}, newActionError(ErrKindWrongCardType, wrongTypeMessage(want))
	}
	if card.ManaCost > player.Mana {
		return Card{}, ErrInsufficientMana
	}

	player.removeFromHand(idx)
	player.Mana -= card.ManaCost
	e.publish(rules.EventManaPaid, player.ID, func(ev *rules.Event) {
		ev.SourceID = card.ID
		ev.Amount = card.ManaCost
		ev.Data = card.Name
	})
	e.publish(rules.EventCardPlayed, player.ID, func(ev *rules.Event) {
		ev.SourceID = card.ID
		ev.Amount = card.ManaCost
		ev.Data = card.Name
		ev.Description = card.CardType.String()
	})
	return card, nil
}

func wrongTypeMessage(want CardType) string {
	switch want {
	case CardTypeCreature:
		return "Card is not a creature"
	case CardTypeFeign:
		return "Card is not a feign"
	default:
		return "Card is not an effect"
	}
}

func (e *Engine) playCreature(player *Player, cardID int) (string, error) {
	card, err := e.takeFromHand(player, cardID, CardTypeCreature)
	if err != nil {
		return "", err
	}
	player.Board.Creatures = append(player.Board.Creatures, NewCreature(card))
	e.state.addLog(fmt.Sprintf("%s plays %s", player.Name, card.Name))
	return "Creature played successfully", nil
}

func (e *Engine) playFeign(player *Player, cardID int) (string, error) {
	card, err := e.takeFromHand(player, cardID, CardTypeFeign)
	if err != nil {
		return "", err
	}
	player.Board.Feigns = append(player.Board.Feigns, FeignCard{Card: card})
	e.state.addLog(fmt.Sprintf("%s plays a feign card", player.Name))
	return "Feign played successfully", nil
}

func (e *Engine) playEffect(player *Player, cardID int) (string, error) {
	card, err := e.takeFromHand(player, cardID, CardTypeEffect)
	if err != nil {
		return "", err
	}
	if prev := e.state.GlobalEffect; prev != nil {
		e.publish(rules.EventEffectReplaced, player.ID, func(ev *rules.Event) {
			ev.SourceID = prev.Card.ID
			ev.Amount = prev.RemainingDuration
			ev.Data = prev.Card.Name
		})
	}
	e.state.GlobalEffect = &GlobalEffect{
		Card:              card,
		RemainingDuration: valueOr(card.Duration, e.cfg.DefaultEffectDuration),
	}
	e.state.addLog(fmt.Sprintf("%s plays global effect: %s", player.Name, card.Name))
	return "Effect played successfully", nil
}

func (e *Engine) attack(player *Player, creatureIndex int) (string, error) {
	if creatureIndex < 0 || creatureIndex >= len(player.Board.Creatures) {
		return "", newActionError(ErrKindInvalidIndex, "No creature at that index to attack with")
	}
	creature := &player.Board.Creatures[creatureIndex]
	if creature.IsTapped {
		return "", newActionError(ErrKindCreatureTapped, fmt.Sprintf("%s is tapped and cannot attack", creature.Card.Name))
	}
	creature.IsTapped = true
	e.publish(rules.EventAttackDeclared, player.ID, func(ev *rules.Event) {
		ev.SourceID = creature.Card.ID
		ev.Amount = creature.CurrentAttack
		ev.Data = creature.Card.Name
	})

	defenderID := rules.Opponent(player.ID)
	defender := e.state.PlayerByID(defenderID)
	if creatureIndex < len(defender.Board.Feigns) && !defender.Board.Feigns[creatureIndex].IsRevealed {
		feign := defender.Board.Feigns[creatureIndex].Card
		for _, line := range ApplyFeignEffects(&e.state, defenderID, creatureIndex) {
			e.state.addLog(line)
		}
		e.publishFeignRevealed(defenderID, feign)
	}

	attackerCard := player.Board.Creatures[creatureIndex].Card
	lifeBefore := defender.Life
	result := ResolveCombat(&e.state, player.ID, creatureIndex)
	for _, line := range result.LogEntries {
		e.state.addLog(line)
	}
	e.publishCombat(player.ID, defenderID, attackerCard, result.Outcome)

	e.logger.Debug("combat resolved",
		zap.Int("player_id", player.ID),
		zap.Int("column", creatureIndex),
		zap.String("attacker", attackerCard.Name),
		zap.Bool("blocked", result.Outcome.Blocked),
		zap.Int("defender_life_before", lifeBefore),
		zap.Int("defender_life", defender.Life),
	)
	return result.Summary, nil
}

func (e *Engine) publishCombat(attackerID, defenderID int, attackerCard Card, out CombatOutcome) {
	if out.Blocked && out.DamageToDefender > 0 {
		e.publish(rules.EventCreatureDamaged, defenderID, func(ev *rules.Event) {
			ev.SourceID = out.DefenderCardID
			ev.Amount = out.DamageToDefender
		})
	}
	if out.Blocked && out.DamageToAttacker > 0 {
		e.publish(rules.EventCreatureDamaged, attackerID, func(ev *rules.Event) {
			ev.SourceID = out.AttackerCardID
			ev.Amount = out.DamageToAttacker
			ev.Data = attackerCard.Name
		})
	}
	if out.DefenderDestroyed {
		e.publish(rules.EventCreatureDestroyed, defenderID, func(ev *rules.Event) {
			ev.SourceID = out.DefenderCardID
		})
	}
	if out.AttackerDestroyed {
		e.publish(rules.EventCreatureDestroyed, attackerID, func(ev *rules.Event) {
			ev.SourceID = out.AttackerCardID
			ev.Data = attackerCard.Name
		})
	}
	if out.DamageToPlayer > 0 {
		e.publish(rules.EventPlayerDamaged, defenderID, func(ev *rules.Event) {
			ev.SourceID = out.AttackerCardID
			ev.Amount = out.DamageToPlayer
			ev.Data = attackerCard.Name
		})
	}
}

func (e *Engine) revealFeign(player *Player, feignIndex int) (string, error) {
	if feignIndex < 0 || feignIndex >= len(player.Board.Feigns) {
		return "", newActionError(ErrKindInvalidIndex, "No feign at that index")
	}
	feign := &player.Board.Feigns[feignIndex]
	if feign.IsRevealed {
		return "", ErrAlreadyRevealed
	}
	feign.IsRevealed = true

	e.state.addLog(fmt.Sprintf("%s reveals feign: %s", player.Name, feign.Card.Name))
	for _, line := range FeignEffectLines(feign.Card) {
		e.state.addLog(line)
	}
	e.publishFeignRevealed(player.ID, feign.Card)
	return fmt.Sprintf("Revealed: %s", feign.Card.Name), nil
}

func (e *Engine) publishFeignRevealed(playerID int, card Card) {
	e.publish(rules.EventFeignRevealed, playerID, func(ev *rules.Event) {
		ev.SourceID = card.ID
		ev.Data = string(card.Effect)
		ev.Description = card.Name
	})
}

// endPhase resolves the current phase and advances to the next one.
// Resolving Draw draws a card, untaps the current player's creatures and
// grants mana. Resolving EndTurn ticks the global effect and hands the turn
// to the opponent.
func (e *Engine) endPhase() string {
	current := e.state.Current()

	switch e.state.Phase {
	case rules.PhaseDraw:
		e.draw(current)
		e.untap(current)
		current.Mana += e.cfg.ManaPerTurn
		e.publish(rules.EventManaGained, current.ID, func(ev *rules.Event) {
			ev.Amount = e.cfg.ManaPerTurn
		})
		e.advance()
		e.state.addLog("Entering placement phase")
	case rules.PhasePlacement:
		e.advance()
		e.state.addLog("Entering attack phase")
	case rules.PhaseAttack:
		e.advance()
		e.state.addLog("Entering end turn phase")
	case rules.PhaseEndTurn:
		e.tickGlobalEffect()
		e.advance()
		next := e.state.Current()
		e.state.addLog(fmt.Sprintf("Turn %d: %s's turn begins", e.state.TurnNumber, next.Name))
		e.publish(rules.EventTurnStarted, next.ID, nil)
		e.logger.Debug("turn started",
			zap.Int("turn", e.state.TurnNumber),
			zap.Int("player_id", next.ID),
		)
	}

	return fmt.Sprintf("Phase advanced to %s", e.state.Phase)
}

func (e *Engine) advance() {
	tr := e.state.TurnState.Advance()
	e.publish(rules.EventPhaseChanged, e.state.CurrentPlayer, func(ev *rules.Event) {
		ev.Data = tr.From.String()
		ev.Description = fmt.Sprintf("%s -> %s", tr.From, tr.To)
	})
}

func (e *Engine) draw(player *Player) {
	card, ok := player.drawCard()
	if !ok {
		e.state.addLog(fmt.Sprintf("%s cannot draw - deck is empty!", player.Name))
		e.publish(rules.EventDeckEmpty, player.ID, nil)
		return
	}
	e.state.addLog(fmt.Sprintf("%s draws a card", player.Name))
	e.publish(rules.EventCardDrawn, player.ID, func(ev *rules.Event) {
		ev.SourceID = card.ID
		ev.Amount = len(player.Deck)
	})
}

func (e *Engine) untap(player *Player) {
	untapped := 0
	for i := range player.Board.Creatures {
		if player.Board.Creatures[i].IsTapped {
			player.Board.Creatures[i].IsTapped = false
			untapped++
		}
	}
	if untapped > 0 {
		e.publish(rules.EventCreaturesUntapped, player.ID, func(ev *rules.Event) {
			ev.Amount = untapped
		})
	}
}

func (e *Engine) tickGlobalEffect() {
	effect := e.state.GlobalEffect
	if effect == nil {
		return
	}
	effect.RemainingDuration--
	if effect.RemainingDuration > 0 {
		return
	}
	e.state.GlobalEffect = nil
	e.state.addLog(fmt.Sprintf("Global effect %s expires", effect.Card.Name))
	e.publish(rules.EventEffectExpired, e.state.CurrentPlayer, func(ev *rules.Event) {
		ev.SourceID = effect.Card.ID
		ev.Data = effect.Card.Name
	})
}

func (e *Engine) checkGameOver() {
	if e.over {
		return
	}
	outcome := e.IsGameOver()
	if !outcome.Over {
		return
	}
	e.over = true
	e.publish(rules.EventGameOver, outcome.Winner, func(ev *rules.Event) {
		ev.Amount = e.state.TurnNumber
	})
	e.logger.Info("game over",
		zap.Int("winner", outcome.Winner),
		zap.Int("turn", e.state.TurnNumber),
		zap.Int("player1_life", e.state.Player1.Life),
		zap.Int("player2_life", e.state.Player2.Life),
	)
}

func (e *Engine) publish(eventType rules.EventType, playerID int, fill func(*rules.Event)) {
	if e.events == nil {
		return
	}
	ev := rules.NewEvent(eventType, playerID, e.state.TurnState)
	if fill != nil {
		fill(&ev)
	}
	e.events.Publish(ev)
}

func actionName(action PlayerAction) string {
	if action == nil {
		return "<nil>"
	}
	return action.Kind().String()
}
