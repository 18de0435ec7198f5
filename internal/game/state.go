package game

import (
	"github.com/pickledire/feign-server-go/internal/game/rules"
)

// Creature is a creature card in play on a board.
type Creature struct {
	Card           Card `json:"card"`
	CurrentAttack  int  `json:"current_attack"`
	CurrentDefense int  `json:"current_defense"`
	IsTapped       bool `json:"is_tapped"`
}

// NewCreature puts a creature card into play with its base stats.
func NewCreature(card Card) Creature {
	return Creature{
		Card:           card,
		CurrentAttack:  valueOr(card.Attack, 0),
		CurrentDefense: valueOr(card.Defense, 0),
	}
}

// FeignCard is a face-down trap on a board. Once revealed it stays revealed.
type FeignCard struct {
	Card       Card `json:"card"`
	IsRevealed bool `json:"is_revealed"`
}

// GlobalEffect is the single active effect card and its remaining turns.
type GlobalEffect struct {
	Card              Card `json:"card"`
	RemainingDuration int  `json:"remaining_duration"`
}

// PlayerBoard holds a player's creatures and feigns. The two sequences are
// indexed independently; combat pairs them by column index.
type PlayerBoard struct {
	Creatures []Creature  `json:"creatures"`
	Feigns    []FeignCard `json:"feigns"`
}

// Player is one of the two seats.
type Player struct {
	ID    int         `json:"id"`
	Name  string      `json:"name"`
	Life  int         `json:"life"`
	Mana  int         `json:"mana"`
	Hand  []Card      `json:"hand"`
	Deck  []Card      `json:"deck"`
	Board PlayerBoard `json:"board"`
}

// TakeDamage lowers life by amount, never below zero, and returns the life lost.
func (p *Player) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > p.Life {
		amount = p.Life
	}
	p.Life -= amount
	return amount
}

// handIndex returns the position of the card with id in the hand, or -1.
func (p *Player) handIndex(cardID int) int {
	for i, card := range p.Hand {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

// removeFromHand removes and returns the card at idx, keeping the order of the rest.
func (p *Player) removeFromHand(idx int) Card {
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return card
}

// drawCard moves the top (last) card of the deck into the hand.
func (p *Player) drawCard() (Card, bool) {
	if len(p.Deck) == 0 {
		return Card{}, false
	}
	top := len(p.Deck) - 1
	card := p.Deck[top]
	p.Deck = p.Deck[:top]
	p.Hand = append(p.Hand, card)
	return card, true
}

func (p Player) clone() Player {
	out := p
	out.Hand = cloneCards(p.Hand)
	out.Deck = cloneCards(p.Deck)
	out.Board.Creatures = make([]Creature, len(p.Board.Creatures))
	for i, c := range p.Board.Creatures {
		c.Card = c.Card.Clone()
		out.Board.Creatures[i] = c
	}
	out.Board.Feigns = make([]FeignCard, len(p.Board.Feigns))
	for i, f := range p.Board.Feigns {
		f.Card = f.Card.Clone()
		out.Board.Feigns[i] = f
	}
	return out
}

func cloneCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = c.Clone()
	}
	return out
}

// GameState is the authoritative state of one game.
type GameState struct {
	Player1 Player `json:"player1"`
	Player2 Player `json:"player2"`
	rules.TurnState
	GlobalEffect *GlobalEffect `json:"global_effect,omitempty"`
	GameLog      []string      `json:"game_log"`
}

// PlayerByID returns the player in seat id (1 or 2), or nil.
func (s *GameState) PlayerByID(id int) *Player {
	switch id {
	case 1:
		return &s.Player1
	case 2:
		return &s.Player2
	default:
		return nil
	}
}

// Current returns the player whose turn it is.
func (s *GameState) Current() *Player {
	return s.PlayerByID(s.CurrentPlayer)
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() GameState {
	out := GameState{
		Player1:   s.Player1.clone(),
		Player2:   s.Player2.clone(),
		TurnState: s.TurnState,
		GameLog:   append([]string(nil), s.GameLog...),
	}
	if out.GameLog == nil {
		out.GameLog = []string{}
	}
	if s.GlobalEffect != nil {
		effect := *s.GlobalEffect
		effect.Card = effect.Card.Clone()
		out.GlobalEffect = &effect
	}
	return out
}

func (s *GameState) addLog(message string) {
	s.GameLog = append(s.GameLog, message)
}
