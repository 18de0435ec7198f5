package watchers

import (
	"github.com/pickledire/feign-server-go/internal/game/rules"
)

// Keys of the standard watchers.
const (
	KeyCardsPlayed        = "CardsPlayedWatcher"
	KeyCardsDrawn         = "CardsDrawnWatcher"
	KeyDamageDealt        = "DamageDealtWatcher"
	KeyCreaturesDestroyed = "CreaturesDestroyedWatcher"
	KeyFeignsRevealed     = "FeignsRevealedWatcher"
)

// CardsPlayedWatcher tracks cards played by players.
type CardsPlayedWatcher struct {
	*rules.BaseWatcher
	cardsPlayed map[int][]int // playerID -> card ids in play order
	manaSpent   map[int]int
}

// NewCardsPlayedWatcher creates a new cards played watcher.
func NewCardsPlayedWatcher() *CardsPlayedWatcher {
	return &CardsPlayedWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyCardsPlayed),
		cardsPlayed: make(map[int][]int),
		manaSpent:   make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *CardsPlayedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardPlayed || event.PlayerID == 0 {
		return
	}
	w.cardsPlayed[event.PlayerID] = append(w.cardsPlayed[event.PlayerID], event.SourceID)
	w.manaSpent[event.PlayerID] += event.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsPlayedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.cardsPlayed = make(map[int][]int)
	w.manaSpent = make(map[int]int)
}

// GetCardsPlayed returns the ids of the cards a player has played, in order.
func (w *CardsPlayedWatcher) GetCardsPlayed(playerID int) []int {
	return w.cardsPlayed[playerID]
}

// GetCount returns the number of cards a player has played.
func (w *CardsPlayedWatcher) GetCount(playerID int) int {
	return len(w.cardsPlayed[playerID])
}

// GetManaSpent returns the total mana a player has paid for cards.
func (w *CardsPlayedWatcher) GetManaSpent(playerID int) int {
	return w.manaSpent[playerID]
}

// CardsDrawnWatcher tracks cards drawn by players.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	cardsDrawn  map[int]int
	failedDraws map[int]int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	return &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyCardsDrawn),
		cardsDrawn:  make(map[int]int),
		failedDraws: make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventCardDrawn:
		w.cardsDrawn[event.PlayerID]++
		w.SetCondition(true)
	case rules.EventDeckEmpty:
		w.failedDraws[event.PlayerID]++
	}
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.cardsDrawn = make(map[int]int)
	w.failedDraws = make(map[int]int)
}

// GetCount returns the number of cards a player has drawn.
func (w *CardsDrawnWatcher) GetCount(playerID int) int {
	return w.cardsDrawn[playerID]
}

// GetFailedDraws returns how often a player tried to draw from an empty deck.
func (w *CardsDrawnWatcher) GetFailedDraws(playerID int) int {
	return w.failedDraws[playerID]
}

// DamageDealtWatcher tracks life lost by each player and the biggest hit.
type DamageDealtWatcher struct {
	*rules.BaseWatcher
	damageTaken map[int]int // playerID -> life lost
	largestHit  int
}

// NewDamageDealtWatcher creates a new damage watcher.
func NewDamageDealtWatcher() *DamageDealtWatcher {
	return &DamageDealtWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyDamageDealt),
		damageTaken: make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *DamageDealtWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventPlayerDamaged || event.Amount <= 0 {
		return
	}
	w.damageTaken[event.PlayerID] += event.Amount
	if event.Amount > w.largestHit {
		w.largestHit = event.Amount
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DamageDealtWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.damageTaken = make(map[int]int)
	w.largestHit = 0
}

// GetDamageTaken returns the life a player has lost.
func (w *DamageDealtWatcher) GetDamageTaken(playerID int) int {
	return w.damageTaken[playerID]
}

// GetDamageDealtBy returns the damage a player's creatures dealt to the opponent.
func (w *DamageDealtWatcher) GetDamageDealtBy(playerID int) int {
	return w.damageTaken[rules.Opponent(playerID)]
}

// GetLargestHit returns the most life lost to a single attack.
func (w *DamageDealtWatcher) GetLargestHit() int {
	return w.largestHit
}

// CreaturesDestroyedWatcher tracks creatures destroyed in combat.
type CreaturesDestroyedWatcher struct {
	*rules.BaseWatcher
	destroyedByOwner map[int]int
}

// NewCreaturesDestroyedWatcher creates a new creatures destroyed watcher.
func NewCreaturesDestroyedWatcher() *CreaturesDestroyedWatcher {
	return &CreaturesDestroyedWatcher{
		BaseWatcher:      rules.NewBaseWatcher(KeyCreaturesDestroyed),
		destroyedByOwner: make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *CreaturesDestroyedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCreatureDestroyed {
		return
	}
	w.destroyedByOwner[event.PlayerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CreaturesDestroyedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.destroyedByOwner = make(map[int]int)
}

// GetAmountByOwner returns how many of a player's creatures were destroyed.
func (w *CreaturesDestroyedWatcher) GetAmountByOwner(playerID int) int {
	return w.destroyedByOwner[playerID]
}

// GetTotalAmount returns the total number of creatures destroyed.
func (w *CreaturesDestroyedWatcher) GetTotalAmount() int {
	total := 0
	for _, n := range w.destroyedByOwner {
		total += n
	}
	return total
}

// FeignsRevealedWatcher tracks feigns revealed, by the player who owned them.
type FeignsRevealedWatcher struct {
	*rules.BaseWatcher
	revealed map[int]int
}

// NewFeignsRevealedWatcher creates a new feigns revealed watcher.
func NewFeignsRevealedWatcher() *FeignsRevealedWatcher {
	return &FeignsRevealedWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyFeignsRevealed),
		revealed:    make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *FeignsRevealedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventFeignRevealed {
		return
	}
	w.revealed[event.PlayerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *FeignsRevealedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.revealed = make(map[int]int)
}

// GetCount returns how many of a player's feigns were revealed.
func (w *FeignsRevealedWatcher) GetCount(playerID int) int {
	return w.revealed[playerID]
}
