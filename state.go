package session

import (
	"sort"
	"sync"
)

// State is the single current-session value published by the Manager.
// User is nil when nobody is signed in. Loading is true for the full
// duration of every in-flight authentication operation and is guaranteed
// false after the operation completes or fails.
type State struct {
	User    *UserRecord
	Loading bool
}

// SignedIn reports whether a user is present in the snapshot.
func (s State) SignedIn() bool {
	return s.User != nil
}

func (s State) clone() State {
	return State{
		User:    s.User.Clone(),
		Loading: s.Loading,
	}
}

// SubscriberFunc receives a snapshot every time the session state changes.
type SubscriberFunc func(State)

// stateCell owns the session value. The value swap happens under the lock
// and subscribers are invoked after the swap in registration order, so a
// read issued after a publish always observes the published value.
type stateCell struct {
	mu          sync.RWMutex
	value       State
	subscribers map[int]SubscriberFunc
	nextID      int
}

func newStateCell() *stateCell {
	return &stateCell{
		value:       State{Loading: true},
		subscribers: map[int]SubscriberFunc{},
	}
}

func (c *stateCell) current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value.clone()
}

func (c *stateCell) publish(next State) {
	c.mu.Lock()
	c.value = next

	ids := make([]int, 0, len(c.subscribers))
	for id := range c.subscribers {
		ids = append(ids, id)
	}
	// registration order, the map key is monotonically assigned
	sort.Ints(ids)

	subs := make([]SubscriberFunc, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, c.subscribers[id])
	}

	snapshot := next.clone()
	c.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(snapshot.clone())
		}
	}
}

func (c *stateCell) subscribe(fn SubscriberFunc) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	current := c.value.clone()
	c.mu.Unlock()

	// deliver the current value on subscription, matching the provider
	// stream contract of an initial notification
	if fn != nil {
		fn(current)
	}

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}
