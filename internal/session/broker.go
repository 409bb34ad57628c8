package session

import "sync"

// Broker is the authentication stream: it holds the current session and
// fans out every change to registered watchers. Watchers are invoked
// synchronously under the broker's lock, so a subscriber sees changes in
// the order they were set and never two changes interleaved.
type Broker struct {
	mu       sync.Mutex
	current  Session
	nextID   int
	watchers map[int]func(Session)
}

func NewBroker() *Broker {
	return &Broker{
		current:  Anonymous(),
		watchers: make(map[int]func(Session)),
	}
}

// Current returns the session as of the last Set.
func (b *Broker) Current() Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Set replaces the current session and notifies every watcher.
func (b *Broker) Set(s Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = s
	for _, fn := range b.watchers {
		fn(s)
	}
}

// Watch registers fn, invokes it immediately with the current session, and
// returns a cancel func that stops further notifications.
func (b *Broker) Watch(fn func(Session)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = fn
	cur := b.current
	fn(cur)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.watchers, id)
		b.mu.Unlock()
	}
}
