package broadcast

import (
	"sync"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/google/uuid"
)

// subscriberBuffer bounds how far a slow viewer may lag before
// provisional fragments start being dropped.
const subscriberBuffer = 64

// Subscription is one viewer's hold on a session's push channel. C
// carries events until Done is closed; Done closes when the
// subscription is cancelled or replaced by a newer one.
type Subscription struct {
	C    <-chan types.SessionEvent
	Done <-chan struct{}

	ch   chan types.SessionEvent
	gone chan struct{}
}

// Broadcaster multiplexes pipeline events onto a single push channel
// per session. At most one subscriber is live per session; opening a
// new one replaces the previous one (last subscriber wins).
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	logger *Logger.Logger
}

func New(logger *Logger.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[uuid.UUID]*Subscription),
		logger: logger,
	}
}

// Subscribe registers the caller as the session's sole subscriber. Any
// previous subscriber's Done channel is closed. The returned cancel
// func releases the slot; it is a no-op if the slot was already taken
// over.
func (b *Broadcaster) Subscribe(id uuid.UUID) (*Subscription, func()) {
	sub := &Subscription{
		ch:   make(chan types.SessionEvent, subscriberBuffer),
		gone: make(chan struct{}),
	}
	sub.C = sub.ch
	sub.Done = sub.gone

	b.mu.Lock()
	if old, ok := b.subs[id]; ok {
		close(old.gone)
		b.logger.Infof("session %s: replacing subscriber", id)
	}
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.subs[id]; ok && cur == sub {
			delete(b.subs, id)
			close(sub.gone)
		}
	}
	return sub, cancel
}

// Publish delivers one event to the session's subscriber, in call
// order. Provisional fragments are at-most-once: with no subscriber,
// or a subscriber too far behind, they are dropped. Confirmed batches
// block until the live subscriber takes them or goes away; they are
// already durable in the batch log before this call.
func (b *Broadcaster) Publish(id uuid.UUID, ev types.SessionEvent) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	b.mu.Unlock()
	if !ok {
		return
	}

	if ev.Name == types.EventENPartial {
		select {
		case sub.ch <- ev:
		case <-sub.gone:
		default:
			b.logger.Debugf("session %s: subscriber lagging, dropping partial", id)
		}
		return
	}

	select {
	case sub.ch <- ev:
	case <-sub.gone:
	}
}

// Drop removes a session's subscriber slot, if any. Called when the
// session is reaped.
func (b *Broadcaster) Drop(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.gone)
	}
}
