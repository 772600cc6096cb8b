package broadcast_test

import (
	"testing"
	"time"

	"github.com/captionrelay/captionrelay/internal/domains/broadcast"
	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/captionrelay/captionrelay/pkg/Logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := broadcast.New(Logger.Noop())
	id := uuid.New()
	sub, cancel := b.Subscribe(id)
	defer cancel()

	b.Publish(id, types.PartialEvent(1, 0, 3, "one"))
	b.Publish(id, types.PartialEvent(2, 3, 6, "two"))
	b.Publish(id, types.BatchEvent(types.ConfirmedBatch{T0: 0, T1: 6, TextEN: "one two"}))

	ev := <-sub.C
	assert.Equal(t, 1, ev.Seq)
	ev = <-sub.C
	assert.Equal(t, 2, ev.Seq)
	ev = <-sub.C
	assert.Equal(t, types.EventKOBatch, ev.Name)
}

func TestPublishWithoutSubscriberDropsPartials(t *testing.T) {
	b := broadcast.New(Logger.Noop())
	id := uuid.New()

	// Must not block or panic.
	b.Publish(id, types.PartialEvent(1, 0, 3, "into the void"))
	b.Publish(id, types.BatchEvent(types.ConfirmedBatch{TextEN: "also dropped"}))

	sub, cancel := b.Subscribe(id)
	defer cancel()
	select {
	case ev := <-sub.C:
		t.Fatalf("new subscriber got stale event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLastSubscriberWins(t *testing.T) {
	b := broadcast.New(Logger.Noop())
	id := uuid.New()

	old, oldCancel := b.Subscribe(id)
	defer oldCancel()
	replacement, cancel := b.Subscribe(id)
	defer cancel()

	select {
	case <-old.Done:
	case <-time.After(time.Second):
		t.Fatal("replaced subscriber's Done never closed")
	}

	b.Publish(id, types.PartialEvent(1, 0, 3, "for the new viewer"))
	select {
	case ev := <-replacement.C:
		assert.Equal(t, "for the new viewer", ev.TextEN)
	case <-time.After(time.Second):
		t.Fatal("replacement subscriber got nothing")
	}
	select {
	case <-old.C:
		t.Fatal("replaced subscriber still receiving")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelIsNoopAfterReplacement(t *testing.T) {
	b := broadcast.New(Logger.Noop())
	id := uuid.New()

	_, oldCancel := b.Subscribe(id)
	replacement, cancel := b.Subscribe(id)
	defer cancel()

	// The replaced viewer tearing down must not free the new slot.
	oldCancel()

	b.Publish(id, types.PartialEvent(1, 0, 3, "still live"))
	select {
	case ev := <-replacement.C:
		assert.Equal(t, "still live", ev.TextEN)
	case <-time.After(time.Second):
		t.Fatal("slot was lost to a stale cancel")
	}
}

func TestSlowSubscriberLosesPartialsNotBatches(t *testing.T) {
	b := broadcast.New(Logger.Noop())
	id := uuid.New()
	sub, cancel := b.Subscribe(id)
	defer cancel()

	// Fill the buffer well past capacity without consuming.
	for i := 1; i <= 200; i++ {
		b.Publish(id, types.PartialEvent(i, 0, 0, "partial"))
	}

	// The confirmed batch still arrives once the viewer drains.
	done := make(chan struct{})
	go func() {
		b.Publish(id, types.BatchEvent(types.ConfirmedBatch{TextEN: "durable"}))
		close(done)
	}()

	var sawBatch bool
	deadline := time.After(2 * time.Second)
	for !sawBatch {
		select {
		case ev := <-sub.C:
			if ev.Name == types.EventKOBatch {
				sawBatch = true
			}
		case <-deadline:
			t.Fatal("confirmed batch never delivered")
		}
	}
	<-done
}

func TestDropClosesSubscriber(t *testing.T) {
	b := broadcast.New(Logger.Noop())
	id := uuid.New()
	sub, _ := b.Subscribe(id)

	b.Drop(id)
	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("Done never closed on Drop")
	}
	require.NotPanics(t, func() { b.Drop(id) })
}
