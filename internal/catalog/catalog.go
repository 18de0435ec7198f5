// Package catalog holds the fixed pool of starter cards.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/pickledire/feign-server-go/internal/game"
	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var defaultCards []byte

// CardFile is the top-level YAML structure.
type CardFile struct {
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry is one card as written in YAML.
type CardEntry struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Color       string `yaml:"color"`
	Cost        int    `yaml:"cost"`
	Attack      *int   `yaml:"attack"`
	Defense     *int   `yaml:"defense"`
	Duration    *int   `yaml:"duration"`
	Effect      string `yaml:"effect"`
	Description string `yaml:"description"`
}

// Catalog is a validated, ordered set of card definitions.
type Catalog struct {
	cards []game.Card
	byID  map[int]int
}

// Parse decodes and validates a YAML card list.
func Parse(data []byte) (*Catalog, error) {
	var cf CardFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse card file: %w", err)
	}
	if len(cf.Cards) == 0 {
		return nil, fmt.Errorf("card file has no cards")
	}

	c := &Catalog{
		cards: make([]game.Card, 0, len(cf.Cards)),
		byID:  make(map[int]int, len(cf.Cards)),
	}
	for i, entry := range cf.Cards {
		card, err := entry.toCard()
		if err != nil {
			return nil, fmt.Errorf("card #%d: %w", i+1, err)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", card.ID)
		}
		c.byID[card.ID] = len(c.cards)
		c.cards = append(c.cards, card)
	}
	return c, nil
}

func (e CardEntry) toCard() (game.Card, error) {
	cardType, err := game.ParseCardType(e.Type)
	if err != nil {
		return game.Card{}, err
	}
	color, err := game.ParseColor(e.Color)
	if err != nil {
		return game.Card{}, err
	}

	card := game.Card{
		ID:          e.ID,
		Name:        e.Name,
		CardType:    cardType,
		Color:       color,
		ManaCost:    e.Cost,
		Description: e.Description,
		Attack:      e.Attack,
		Defense:     e.Defense,
		Duration:    e.Duration,
		Effect:      game.EffectID(e.Effect),
	}
	if card.Effect != "" && !game.KnownEffect(card.Effect) {
		return game.Card{}, fmt.Errorf("card %d (%s): unknown effect %q", card.ID, card.Name, card.Effect)
	}
	if err := card.Validate(); err != nil {
		return game.Card{}, err
	}
	return card, nil
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card file: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded starter catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultCards)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot proceed without cards.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded card catalog is invalid: %v", err))
	}
	return c
}

// Cards returns a copy of every card in catalog order.
func (c *Catalog) Cards() []game.Card {
	out := make([]game.Card, len(c.cards))
	for i, card := range c.cards {
		out[i] = card.Clone()
	}
	return out
}

// Deck returns a fresh, unshuffled deck holding one copy of every card.
func (c *Catalog) Deck() []game.Card {
	return c.Cards()
}

// Get looks up a card by id.
func (c *Catalog) Get(id int) (game.Card, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return game.Card{}, false
	}
	return c.cards[idx].Clone(), true
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// ByType returns the cards of one type in catalog order.
func (c *Catalog) ByType(cardType game.CardType) []game.Card {
	var out []game.Card
	for _, card := range c.cards {
		if card.CardType == cardType {
			out = append(out, card.Clone())
		}
	}
	return out
}
