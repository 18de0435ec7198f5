package game

import (
	"fmt"
)

// feignEffect returns the log lines produced when a feign triggers.
// Effects are descriptive only; nothing on the board changes.
type feignEffect func(card Card) []string

var feignEffects = map[EffectID]feignEffect{
	EffectShieldTrap: func(Card) []string {
		return []string{"Shield Trap activates - damage reduced!"}
	},
	EffectCounterStrike: func(Card) []string {
		return []string{"Counter Strike activates - attacker takes damage!"}
	},
	EffectManaBoost: func(Card) []string {
		return []string{"Mana Boost activates - extra mana surges!"}
	},
	EffectIllusion: func(Card) []string {
		return []string{"Illusion activates - a phantom creature appears!"}
	},
	EffectSoulDrain: func(Card) []string {
		return []string{"Soul Drain activates - enemy creatures weaken!"}
	},
	EffectArcaneResonance: func(Card) []string {
		return []string{"Arcane Resonance activates - power flows from the global effect!"}
	},
}

// FeignEffectLines returns the effect description for a triggered feign.
// Unknown effect ids fall back to a generic line naming the card.
func FeignEffectLines(card Card) []string {
	if effect, ok := feignEffects[card.Effect]; ok {
		return effect(card)
	}
	return []string{fmt.Sprintf("%s effect activates", card.Name)}
}

// KnownEffect reports whether id has a registered effect.
func KnownEffect(id EffectID) bool {
	_, ok := feignEffects[id]
	return ok
}
