package events

import (
	"sync"
	"time"
)

// Event types published by the ledger.
const (
	TypeRentalOpened = "rental.opened"
	TypeRentalClosed = "rental.closed"
)

// Event describes a rental lifecycle transition.
type Event struct {
	Type        string    `json:"type"`
	RentalID    int64     `json:"rentalId"`
	VehicleID   int64     `json:"vehicleId"`
	ClientID    int64     `json:"clientId"`
	At          time.Time `json:"at"`
	DaysCharged int       `json:"daysCharged,omitempty"`
	TotalCharge float64   `json:"totalCharge,omitempty"`
}

// Broker is an in-process fan-out of rental events to WebSocket
// subscribers. Delivery is best-effort: a subscriber that falls behind its
// buffer misses events rather than blocking the publisher.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

const subscriberBuffer = 16

// NewBroker creates an event broker
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function must
// be called when the subscriber goes away; it closes the channel.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to all current subscribers without blocking.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
