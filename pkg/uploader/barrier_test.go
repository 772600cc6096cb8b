package uploader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrierWaitResolvesImmediatelyWhenEmpty(t *testing.T) {
	var b Barrier
	require.NoError(t, b.Wait(context.Background()))
}

func TestBarrierWaitsForWholePendingSet(t *testing.T) {
	var b Barrier
	b.Add()
	b.Add()
	b.Add()

	settled := make(chan error, 1)
	go func() { settled <- b.Wait(context.Background()) }()

	b.Done()
	b.Done()
	select {
	case <-settled:
		t.Fatal("settled with one upload still pending")
	case <-time.After(50 * time.Millisecond):
	}

	b.Done()
	select {
	case err := <-settled:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("never settled")
	}
	assert.Zero(t, b.Pending())
}

func TestBarrierWaitHonorsContext(t *testing.T) {
	var b Barrier
	b.Add()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBarrierSingleOutstandingWait(t *testing.T) {
	var b Barrier
	b.Add()

	go func() { _ = b.Wait(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	err := b.Wait(context.Background())
	assert.ErrorIs(t, err, ErrSettleInProgress)
	b.Done()
}
