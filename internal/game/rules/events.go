package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Game/Turn events
	EventGameStarted    EventType = "GAME_STARTED"
	EventPhaseChanged   EventType = "PHASE_CHANGED"
	EventTurnStarted    EventType = "TURN_STARTED"
	EventActionRejected EventType = "ACTION_REJECTED"
	EventGameOver       EventType = "GAME_OVER"

	// Card events
	EventCardDrawn  EventType = "CARD_DRAWN"
	EventDeckEmpty  EventType = "DECK_EMPTY"
	EventCardPlayed EventType = "CARD_PLAYED"
	EventManaGained EventType = "MANA_GAINED"
	EventManaPaid   EventType = "MANA_PAID"

	// Global effect events
	EventEffectReplaced EventType = "EFFECT_REPLACED"
	EventEffectExpired  EventType = "EFFECT_EXPIRED"

	// Combat events
	EventAttackDeclared    EventType = "ATTACK_DECLARED"
	EventCreatureDamaged   EventType = "CREATURE_DAMAGED"
	EventCreatureDestroyed EventType = "CREATURE_DESTROYED"
	EventPlayerDamaged     EventType = "PLAYER_DAMAGED"
	EventCreaturesUntapped EventType = "CREATURES_UNTAPPED"

	// Feign events
	EventFeignRevealed EventType = "FEIGN_REVEALED"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	PlayerID    int    // player the event concerns (acting or damaged player)
	SourceID    int    // card id of the source, 0 when none
	Amount      int    // damage, mana, duration, etc.
	Turn        int
	Phase       Phase
	Data        string // card name or other short payload
	Timestamp   time.Time
	Description string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle,
// whether it was registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
// Listeners must not publish on the same bus.
func (bus *EventBus) Publish(event Event) {
	if bus == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, playerID int, ts TurnState) Event {
	return Event{
		Type:      eventType,
		PlayerID:  playerID,
		Turn:      ts.TurnNumber,
		Phase:     ts.Phase,
		Timestamp: time.Now(),
	}
}
