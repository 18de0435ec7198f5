package game

import (
	"fmt"
)

// Color is one of the six color identities. It only tags cards.
type Color int

const (
	ColorVerdant Color = iota // nature, growth, beasts
	ColorCinder               // aggression, damage
	ColorAzure                // control, illusions
	ColorIvory                // protection, healing
	ColorUmbral               // sacrifice, decay
	ColorViolet               // interaction with effect cards
)

var colorNames = map[Color]string{
	ColorVerdant: "Verdant",
	ColorCinder:  "Cinder",
	ColorAzure:   "Azure",
	ColorIvory:   "Ivory",
	ColorUmbral:  "Umbral",
	ColorViolet:  "Violet",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("COLOR_%d", int(c))
}

// ParseColor returns the color with the given name.
func ParseColor(name string) (Color, error) {
	for c, n := range colorNames {
		if n == name {
			return c, nil
		}
	}
	return ColorVerdant, fmt.Errorf("unknown color %q", name)
}

func (c Color) MarshalText() ([]byte, error) {
	if _, ok := colorNames[c]; !ok {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CardType distinguishes creatures, face-down feigns and global effects.
type CardType int

const (
	CardTypeCreature CardType = iota
	CardTypeFeign
	CardTypeEffect
)

var cardTypeNames = map[CardType]string{
	CardTypeCreature: "Creature",
	CardTypeFeign:    "Feign",
	CardTypeEffect:   "Effect",
}

func (ct CardType) String() string {
	if name, ok := cardTypeNames[ct]; ok {
		return name
	}
	return fmt.Sprintf("CARD_TYPE_%d", int(ct))
}

// ParseCardType returns the card type with the given name.
func ParseCardType(name string) (CardType, error) {
	for ct, n := range cardTypeNames {
		if n == name {
			return ct, nil
		}
	}
	return CardTypeCreature, fmt.Errorf("unknown card type %q", name)
}

func (ct CardType) MarshalText() ([]byte, error) {
	if _, ok := cardTypeNames[ct]; !ok {
		return nil, fmt.Errorf("invalid card type %d", int(ct))
	}
	return []byte(ct.String()), nil
}

func (ct *CardType) UnmarshalText(text []byte) error {
	parsed, err := ParseCardType(string(text))
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

// EffectID is the stable identifier a feign card's effect is dispatched on.
// It never changes when a card is renamed.
type EffectID string

const (
	EffectShieldTrap      EffectID = "shield_trap"
	EffectCounterStrike   EffectID = "counter_strike"
	EffectManaBoost       EffectID = "mana_boost"
	EffectIllusion        EffectID = "illusion"
	EffectSoulDrain       EffectID = "soul_drain"
	EffectArcaneResonance EffectID = "arcane_resonance"
)

// Card is an immutable card definition.
// Attack and Defense are set only for creatures, Duration only for effects.
type Card struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	CardType    CardType `json:"card_type"`
	Color       Color    `json:"color"`
	ManaCost    int      `json:"mana_cost"`
	Description string   `json:"description"`
	Attack      *int     `json:"attack,omitempty"`
	Defense     *int     `json:"defense,omitempty"`
	Duration    *int     `json:"duration,omitempty"`
	Effect      EffectID `json:"effect,omitempty"`
}

// Validate checks that the optional fields agree with the card type.
func (c Card) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("card %d: name is required", c.ID)
	}
	if c.ManaCost < 0 {
		return fmt.Errorf("card %d (%s): negative mana cost %d", c.ID, c.Name, c.ManaCost)
	}

	isCreature := c.CardType == CardTypeCreature
	if (c.Attack != nil) != isCreature || (c.Defense != nil) != isCreature {
		return fmt.Errorf("card %d (%s): attack/defense must be set iff the card is a creature", c.ID, c.Name)
	}
	if isCreature && (*c.Attack < 0 || *c.Defense < 0) {
		return fmt.Errorf("card %d (%s): negative creature stats", c.ID, c.Name)
	}

	isEffect := c.CardType == CardTypeEffect
	if (c.Duration != nil) != isEffect {
		return fmt.Errorf("card %d (%s): duration must be set iff the card is an effect", c.ID, c.Name)
	}
	if isEffect && *c.Duration < 1 {
		return fmt.Errorf("card %d (%s): effect duration must be at least 1", c.ID, c.Name)
	}

	if c.Effect != "" && c.CardType != CardTypeFeign {
		return fmt.Errorf("card %d (%s): only feign cards carry an effect id", c.ID, c.Name)
	}
	if _, ok := cardTypeNames[c.CardType]; !ok {
		return fmt.Errorf("card %d (%s): invalid card type", c.ID, c.Name)
	}
	if _, ok := colorNames[c.Color]; !ok {
		return fmt.Errorf("card %d (%s): invalid color", c.ID, c.Name)
	}
	return nil
}

// Clone returns a copy that shares no pointers with c.
func (c Card) Clone() Card {
	c.Attack = cloneInt(c.Attack)
	c.Defense = cloneInt(c.Defense)
	c.Duration = cloneInt(c.Duration)
	return c
}

// IntPtr returns a pointer to v, for building optional card fields.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func valueOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
