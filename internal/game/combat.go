package game

import (
	"fmt"

	"github.com/pickledire/feign-server-go/internal/game/rules"
)

// CombatOutcome records what a single combat did to the board.
type CombatOutcome struct {
	Resolved          bool // false when there was no attacker in the column
	Blocked           bool // a defending creature occupied the column
	AttackerCardID    int
	DefenderCardID    int
	DamageToDefender  int // damage dealt to the defending creature
	DamageToAttacker  int // damage dealt back to the attacking creature
	DamageToPlayer    int // life actually lost by the defending player
	AttackerDestroyed bool
	DefenderDestroyed bool
}

// CombatResult is the summary and log lines of one combat.
type CombatResult struct {
	Summary    string
	LogEntries []string
	Outcome    CombatOutcome
}

// ResolveCombat resolves an attack by the creature in column of
// attackingPlayer's board against the same column of the opponent's board.
//
// Damage is simultaneous and computed from pre-combat values. A creature
// whose incoming damage reaches its current defense is removed from its
// board, shifting later columns left. Destroying the defender with damage to
// spare carries the excess to the defending player. An empty defending column
// sends the full attack to the defending player. Life never drops below zero.
func ResolveCombat(state *GameState, attackingPlayer, column int) CombatResult {
	attacker := state.PlayerByID(attackingPlayer)
	defender := state.PlayerByID(rules.Opponent(attackingPlayer))
	if attacker == nil || column < 0 || column >= len(attacker.Board.Creatures) {
		return CombatResult{
			Summary:    "No creature to attack with",
			LogEntries: []string{"No creature found in attacking column"},
		}
	}

	atk := attacker.Board.Creatures[column]
	result := CombatResult{
		Outcome: CombatOutcome{Resolved: true, AttackerCardID: atk.Card.ID},
	}
	result.log("%s attacks with %s (ATK: %d)", attacker.Name, atk.Card.Name, atk.CurrentAttack)

	if column >= len(defender.Board.Creatures) {
		lost := defender.TakeDamage(atk.CurrentAttack)
		result.Outcome.DamageToPlayer = lost
		result.log("%s deals %d damage directly to %s (Life: %d)", atk.Card.Name, atk.CurrentAttack, defender.Name, defender.Life)
		result.Summary = fmt.Sprintf("Direct attack for %d damage", atk.CurrentAttack)
		return result
	}

	def := defender.Board.Creatures[column]
	result.Outcome.Blocked = true
	result.Outcome.DefenderCardID = def.Card.ID
	result.Outcome.DamageToDefender = atk.CurrentAttack
	result.Outcome.DamageToAttacker = def.CurrentAttack
	result.log("%s defends with %s (DEF: %d)", defender.Name, def.Card.Name, def.CurrentDefense)

	// Both sides read pre-combat stats before either board changes.
	dealt, received := atk.CurrentAttack, def.CurrentAttack

	if dealt >= def.CurrentDefense {
		defender.Board.Creatures = removeCreature(defender.Board.Creatures, column)
		result.Outcome.DefenderDestroyed = true
		result.log("%s is destroyed!", def.Card.Name)

		if excess := dealt - def.CurrentDefense; excess > 0 {
			result.Outcome.DamageToPlayer = defender.TakeDamage(excess)
			result.log("%s takes %d excess damage (Life: %d)", defender.Name, excess, defender.Life)
		}
	} else {
		defender.Board.Creatures[column].CurrentDefense -= dealt
		result.log("%s survives with %d defense remaining", def.Card.Name, def.CurrentDefense-dealt)
	}

	if received >= atk.CurrentDefense {
		attacker.Board.Creatures = removeCreature(attacker.Board.Creatures, column)
		result.Outcome.AttackerDestroyed = true
		result.log("%s is destroyed in combat!", atk.Card.Name)
	} else if received > 0 {
		attacker.Board.Creatures[column].CurrentDefense -= received
		result.log("%s survives with %d defense remaining", atk.Card.Name, atk.CurrentDefense-received)
	}

	result.Summary = "Combat resolved"
	return result
}

// ApplyFeignEffects reveals the face-down feign in column of playerID's board,
// if there is one, and returns the reveal and effect log lines.
func ApplyFeignEffects(state *GameState, playerID, column int) []string {
	player := state.PlayerByID(playerID)
	if player == nil || column < 0 || column >= len(player.Board.Feigns) {
		return nil
	}
	feign := &player.Board.Feigns[column]
	if feign.IsRevealed {
		return nil
	}
	feign.IsRevealed = true

	lines := []string{fmt.Sprintf("Feign %s is revealed!", feign.Card.Name)}
	return append(lines, FeignEffectLines(feign.Card)...)
}

func (r *CombatResult) log(format string, args ...any) {
	r.LogEntries = append(r.LogEntries, fmt.Sprintf(format, args...))
}

func removeCreature(creatures []Creature, idx int) []Creature {
	return append(creatures[:idx], creatures[idx+1:]...)
}
