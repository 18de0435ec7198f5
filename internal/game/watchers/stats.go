package watchers

import (
	"github.com/pickledire/feign-server-go/internal/game/rules"
)

// PlayerStats summarizes one player's game.
type PlayerStats struct {
	CardsPlayed    int `json:"cards_played"`
	ManaSpent      int `json:"mana_spent"`
	CardsDrawn     int `json:"cards_drawn"`
	FailedDraws    int `json:"failed_draws"`
	DamageDealt    int `json:"damage_dealt"`
	DamageTaken    int `json:"damage_taken"`
	CreaturesLost  int `json:"creatures_lost"`
	FeignsRevealed int `json:"feigns_revealed"`
}

// MatchStats summarizes a game for both players.
type MatchStats struct {
	Player1    PlayerStats `json:"player1"`
	Player2    PlayerStats `json:"player2"`
	LargestHit int         `json:"largest_hit"`
}

// NewStandardRegistry returns a registry holding every standard watcher.
func NewStandardRegistry() *rules.WatcherRegistry {
	registry := rules.NewWatcherRegistry()
	registry.AddWatcher(NewCardsPlayedWatcher())
	registry.AddWatcher(NewCardsDrawnWatcher())
	registry.AddWatcher(NewDamageDealtWatcher())
	registry.AddWatcher(NewCreaturesDestroyedWatcher())
	registry.AddWatcher(NewFeignsRevealedWatcher())
	return registry
}

// Collect reads the standard watchers in registry into a MatchStats.
// Watchers missing from the registry contribute zeros.
func Collect(registry *rules.WatcherRegistry) MatchStats {
	var stats MatchStats
	for _, id := range []int{1, 2} {
		ps := stats.player(id)
		if w, ok := registry.GetWatcher(KeyCardsPlayed).(*CardsPlayedWatcher); ok {
			ps.CardsPlayed = w.GetCount(id)
			ps.ManaSpent = w.GetManaSpent(id)
		}
		if w, ok := registry.GetWatcher(KeyCardsDrawn).(*CardsDrawnWatcher); ok {
			ps.CardsDrawn = w.GetCount(id)
			ps.FailedDraws = w.GetFailedDraws(id)
		}
		if w, ok := registry.GetWatcher(KeyDamageDealt).(*DamageDealtWatcher); ok {
			ps.DamageDealt = w.GetDamageDealtBy(id)
			ps.DamageTaken = w.GetDamageTaken(id)
			stats.LargestHit = w.GetLargestHit()
		}
		if w, ok := registry.GetWatcher(KeyCreaturesDestroyed).(*CreaturesDestroyedWatcher); ok {
			ps.CreaturesLost = w.GetAmountByOwner(id)
		}
		if w, ok := registry.GetWatcher(KeyFeignsRevealed).(*FeignsRevealedWatcher); ok {
			ps.FeignsRevealed = w.GetCount(id)
		}
	}
	return stats
}

func (s *MatchStats) player(id int) *PlayerStats {
	if id == 1 {
		return &s.Player1
	}
	return &s.Player2
}
