package handlers_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/captionrelay/captionrelay/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsUnknownSession(t *testing.T) {
	rig := newRig(t)
	w := rig.do(t, "GET", "/sessions/"+uuid.NewString()+"/events", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsStreamDeliversNamedEvents(t *testing.T) {
	rig := newRig(t)
	id := rig.startSession(t)
	sid := uuid.MustParse(id)

	srv := httptest.NewServer(rig.router.Handler())
	defer srv.Close()

	// Partials are dropped until the handler's subscription is live,
	// and the response does not flush before the first event, so keep
	// publishing from the start.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rig.broadcast.Publish(sid, types.PartialEvent(1, 0, 3, "live line"))
			case <-stop:
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	var sawEvent, sawData bool
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") && strings.Contains(line, types.EventENPartial) {
			sawEvent = true
		}
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "live line") {
			sawData = true
		}
		if sawEvent && sawData {
			break
		}
	}
	assert.True(t, sawEvent, "named event line")
	assert.True(t, sawData, "payload line")
}

func TestEventsReplayRecoversRecentBatches(t *testing.T) {
	rig := newRig(t)
	id := rig.startSession(t)
	sid := uuid.MustParse(id)

	ctx := context.Background()
	_, err := rig.sessions.AppendBatch(ctx, sid, types.Window{T0: 0, T1: 10}, "first window", "ko first")
	require.NoError(t, err)
	_, err = rig.sessions.AppendBatch(ctx, sid, types.Window{T0: 10, T1: 21}, "second window", "ko second")
	require.NoError(t, err)
	_, err = rig.sessions.AppendBatch(ctx, sid, types.Window{T0: 21, T1: 33}, "third window", "ko third")
	require.NoError(t, err)

	srv := httptest.NewServer(rig.router.Handler())
	defer srv.Close()

	// The replayed batches are flushed before any live event arrives,
	// so the response is readable without a publisher running.
	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "GET", srv.URL+"/sessions/"+id+"/events?replay=2", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			data = append(data, line)
		}
		if len(data) == 2 {
			break
		}
	}
	require.Len(t, data, 2)
	assert.Contains(t, data[0], "ko second")
	assert.Contains(t, data[1], "ko third")
	assert.NotContains(t, data[0], "ko first")
}

func TestEventsReplayRejectsBadCount(t *testing.T) {
	rig := newRig(t)
	id := rig.startSession(t)
	w := rig.do(t, "GET", "/sessions/"+id+"/events?replay=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventsStreamEndsWhenSlotReleased(t *testing.T) {
	rig := newRig(t)
	id := rig.startSession(t)
	sid := uuid.MustParse(id)

	srv := httptest.NewServer(rig.router.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/"+id+"/events", nil)
	require.NoError(t, err)

	// Releasing the slot closes the handler's Done channel and with it
	// the stream, exactly like a newer subscriber taking over. The
	// stream never flushes before an event, so the response itself only
	// completes once the slot is released.
	go func() {
		time.Sleep(100 * time.Millisecond)
		rig.broadcast.Drop(sid)
	}()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
	}
	assert.NoError(t, scanner.Err())
}
