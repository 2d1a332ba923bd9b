package stream

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-quake-map/internal/models"
)

const subscriberBuffer = 100

type subscriber struct {
	ch           chan *models.Earthquake
	minMagnitude float64
}

// Broadcaster fans newly ingested quakes out to subscribers. Slow subscribers
// whose buffer is full miss events rather than blocking ingestion.
type Broadcaster struct {
	subscribers map[uint64]subscriber
	nextID      atomic.Uint64
	dropped     atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]subscriber),
	}
}

// Subscribe registers a subscriber receiving quakes of at least minMagnitude.
func (b *Broadcaster) Subscribe(minMagnitude float64) (uint64, <-chan *models.Earthquake) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Earthquake, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = subscriber{ch: ch, minMagnitude: minMagnitude}
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(q *models.Earthquake) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		if q.Magnitude < sub.minMagnitude {
			continue
		}
		select {
		case sub.ch <- q:
		default:
			b.dropped.Add(1)
			slog.Debug("dropping quake for slow subscriber", "subscriber_id", id, "quake_id", q.ID)
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes all subscriber channels, ending their streams.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}
