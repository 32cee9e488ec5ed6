package notify

import (
	"context"
	"log"
	"sync"

	"github.com/kwheeler/lifegit/internal/branch"
)

// Notifier fans branch events out to every configured adapter. Delivery is
// best-effort: a failing platform is logged and never blocks or fails the
// lifecycle operation that produced the event.
type Notifier struct {
	mu       sync.Mutex
	adapters []Adapter
}

// NewNotifier creates a Notifier over the given adapters. Adapters must be
// connected before events arrive.
func NewNotifier(adapters ...Adapter) *Notifier {
	return &Notifier{adapters: adapters}
}

// Connect connects every adapter. An adapter that fails to connect is
// dropped from the fan-out and logged.
func (n *Notifier) Connect(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	connected := n.adapters[:0]
	for _, a := range n.adapters {
		if err := a.Connect(ctx); err != nil {
			log.Printf("notify: connect adapter: %v", err)
			continue
		}
		connected = append(connected, a)
	}
	n.adapters = connected
}

// BranchEvent implements branch.EventSink.
func (n *Notifier) BranchEvent(ctx context.Context, ev branch.Event) {
	n.Broadcast(ctx, OutboundMessage{Events: []FormattedEvent{FormatBranchEvent(ev)}})
}

// Broadcast sends a message to every connected adapter, best-effort.
func (n *Notifier) Broadcast(ctx context.Context, msg OutboundMessage) {
	n.mu.Lock()
	adapters := make([]Adapter, len(n.adapters))
	copy(adapters, n.adapters)
	n.mu.Unlock()

	for _, a := range adapters {
		if err := a.Send(ctx, msg); err != nil {
			log.Printf("notify: send: %v", err)
		}
	}
}

// Close shuts down every adapter.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, a := range n.adapters {
		if err := a.Close(); err != nil {
			log.Printf("notify: close adapter: %v", err)
		}
	}
	n.adapters = nil
}
