package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// DatasetEvent announces that the stored dataset was replaced. Revision
// increases by one with every publish.
type DatasetEvent struct {
	Revision  uint64    `json:"revision"`
	Source    string    `json:"source"` // "upload", "file", "sample", "store"
	Suppliers int       `json:"suppliers"`
	Shipments int       `json:"shipments"`
	At        time.Time `json:"at"`
}

// Broadcaster fans dataset events out to live subscribers.
//
// Each replacement supersedes the previous dataset, so subscribers only ever
// hold the latest event: publishing to a subscriber that has not consumed its
// pending event swaps that event for the new one. New subscribers start with
// the latest event, if any, so they learn the current revision immediately.
type Broadcaster struct {
	subscribers map[uint64]chan DatasetEvent
	nextID      atomic.Uint64
	latest      DatasetEvent
	published   bool
	mu          sync.Mutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan DatasetEvent),
	}
}

func (b *Broadcaster) Subscribe() (uint64, <-chan DatasetEvent) {
	id := b.nextID.Add(1)
	ch := make(chan DatasetEvent, 1)

	b.mu.Lock()
	if b.published {
		ch <- b.latest
	}
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Publish stamps e with the next revision, records it as the latest event and
// delivers it without blocking. It returns the stamped event.
func (b *Broadcaster) Publish(e DatasetEvent) DatasetEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	e.Revision = b.latest.Revision + 1
	b.latest = e
	b.published = true

	for _, ch := range b.subscribers {
		// drop a stale pending event; the new one replaces it
		select {
		case <-ch:
		default:
		}
		ch <- e
	}
	return e
}

// Latest returns the most recently published event. ok is false until the
// first publish.
func (b *Broadcaster) Latest() (e DatasetEvent, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.published
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels so streaming handlers return.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
