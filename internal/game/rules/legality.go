package rules

import (
	"fmt"
)

// ActionKind identifies a player action for phase legality checks.
type ActionKind int

const (
	ActionPlayCreature ActionKind = iota
	ActionPlayFeign
	ActionPlayEffect
	ActionAttack
	ActionRevealFeign
	ActionEndPhase
)

var actionNames = map[ActionKind]string{
	ActionPlayCreature: "PlayCreature",
	ActionPlayFeign:    "PlayFeign",
	ActionPlayEffect:   "PlayEffect",
	ActionAttack:       "Attack",
	ActionRevealFeign:  "RevealFeign",
	ActionEndPhase:     "EndPhase",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(k))
}

// legalPhases lists, per action, the phases in which it may be taken.
// Actions missing from the table are legal in every phase.
var legalPhases = map[ActionKind][]Phase{
	ActionPlayCreature: {PhasePlacement},
	ActionPlayFeign:    {PhasePlacement},
	ActionPlayEffect:   {PhasePlacement},
	ActionAttack:       {PhaseAttack},
	ActionRevealFeign:  {PhaseAttack},
}

// LegalityResult represents the result of a phase legality check.
type LegalityResult struct {
	Legal  bool
	Reason string
}

// Allowed reports whether an action of the given kind may be taken in phase.
func Allowed(phase Phase, kind ActionKind) bool {
	return Check(phase, kind).Legal
}

// Check validates an action kind against the current phase.
func Check(phase Phase, kind ActionKind) LegalityResult {
	phases, restricted := legalPhases[kind]
	if !restricted {
		return LegalityResult{Legal: true}
	}
	for _, p := range phases {
		if p == phase {
			return LegalityResult{Legal: true}
		}
	}
	return LegalityResult{
		Legal:  false,
		Reason: fmt.Sprintf("%s is only legal during %s phase, not %s", kind, phases[0], phase),
	}
}
