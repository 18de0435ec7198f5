package rules

import (
	"sort"
	"sync"
)

// Watcher observes rule events and accumulates whatever it tracks.
type Watcher interface {
	// Watch is called for every event published on the bus the registry is attached to.
	Watch(event Event)

	// Reset clears the watcher's state.
	Reset()

	// Key returns a unique key for this watcher instance.
	Key() string
}

// WatcherRegistry manages watchers for a game.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	handle   int
	bus      *EventBus
}

// NewWatcherRegistry creates a new watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
		handle:   -1,
	}
}

// AddWatcher adds a watcher to the registry, replacing any with the same key.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.watchers[watcher.Key()] = watcher
}

// RemoveWatcher removes a watcher from the registry.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	delete(wr.watchers, key)
}

// GetWatcher retrieves a watcher by key.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// Keys returns the registered watcher keys in sorted order.
func (wr *WatcherRegistry) Keys() []string {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	keys := make([]string, 0, len(wr.watchers))
	for key := range wr.watchers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NotifyWatchers forwards an event to every registered watcher.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		watcher.Watch(event)
	}
}

// ResetWatchers resets all watchers.
func (wr *WatcherRegistry) ResetWatchers() {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		watcher.Reset()
	}
}

// Attach subscribes the registry to bus. A registry follows at most one bus;
// attaching again detaches from the previous one.
func (wr *WatcherRegistry) Attach(bus *EventBus) {
	wr.Detach()
	if bus == nil {
		return
	}
	handle := bus.Subscribe(wr.NotifyWatchers)
	wr.mu.Lock()
	wr.bus = bus
	wr.handle = handle
	wr.mu.Unlock()
}

// Detach unsubscribes the registry from its bus.
func (wr *WatcherRegistry) Detach() {
	wr.mu.Lock()
	bus, handle := wr.bus, wr.handle
	wr.bus = nil
	wr.handle = -1
	wr.mu.Unlock()

	if bus != nil && handle >= 0 {
		bus.Unsubscribe(handle)
	}
}

// BaseWatcher carries the key and condition flag shared by concrete watchers.
type BaseWatcher struct {
	key       string
	condition bool
}

// NewBaseWatcher creates a base watcher with the given key.
func NewBaseWatcher(key string) *BaseWatcher {
	return &BaseWatcher{key: key}
}

// Key returns the watcher key.
func (w *BaseWatcher) Key() string {
	return w.key
}

// SetKey sets the watcher key.
func (w *BaseWatcher) SetKey(key string) {
	w.key = key
}

// ConditionMet reports whether the watcher has seen what it watches for.
func (w *BaseWatcher) ConditionMet() bool {
	return w.condition
}

// SetCondition sets the condition flag.
func (w *BaseWatcher) SetCondition(met bool) {
	w.condition = met
}

// Reset clears the condition flag.
func (w *BaseWatcher) Reset() {
	w.condition = false
}
