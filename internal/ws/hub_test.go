package ws

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeConn implements conn in memory. Writes land in written; failWrites
// makes every write error out; readCh blocks readers until closed.
type fakeConn struct {
	mu         sync.Mutex
	written    [][]byte
	failWrites bool
	closed     bool
	readCh     chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{readCh: make(chan struct{})}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrites {
		return errors.New("write on broken pipe")
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	f.written = append(f.written, buf)
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.readCh
	return 0, nil, io.EOF
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.readCh)
	}
	return nil
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// attach registers a client over the fake conn and starts its write pump.
func attach(h *Hub, fc *fakeConn) *Client {
	c := newClient(h, fc, testLogger())
	h.Register(c)
	go c.writePump(1)
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

type testEvent struct {
	Type       string  `json:"type"`
	Multiplier float64 `json:"multiplier"`
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	h := NewHub(nil, testLogger())
	defer h.Close()

	conns := []*fakeConn{newFakeConn(), newFakeConn(), newFakeConn()}
	for _, fc := range conns {
		attach(h, fc)
	}

	h.Broadcast(testEvent{Type: "fly", Multiplier: 1.23})

	for _, fc := range conns {
		fc := fc
		waitFor(t, func() bool { return len(fc.messages()) == 1 })

		var got testEvent
		require.NoError(t, json.Unmarshal(fc.messages()[0], &got))
		require.Equal(t, testEvent{Type: "fly", Multiplier: 1.23}, got)
	}
}

func TestHubBroadcastOrderPerClient(t *testing.T) {
	h := NewHub(nil, testLogger())
	defer h.Close()

	fc := newFakeConn()
	attach(h, fc)

	for i := 1; i <= 10; i++ {
		h.Broadcast(testEvent{Type: "fly", Multiplier: float64(i)})
	}

	waitFor(t, func() bool { return len(fc.messages()) == 10 })

	for i, raw := range fc.messages() {
		var got testEvent
		require.NoError(t, json.Unmarshal(raw, &got))
		require.Equal(t, float64(i+1), got.Multiplier)
	}
}

func TestHubFailedClientIsPrunedOthersSurvive(t *testing.T) {
	h := NewHub(nil, testLogger())
	defer h.Close()

	broken := newFakeConn()
	broken.failWrites = true
	healthy := newFakeConn()

	attach(h, broken)
	attach(h, healthy)

	h.Broadcast(testEvent{Type: "tick"})

	// The write error tears the broken client down via its write pump.
	waitFor(t, func() bool { return h.Len() == 1 })

	h.Broadcast(testEvent{Type: "crash"})
	waitFor(t, func() bool { return len(healthy.messages()) == 2 })
}

func TestHubSlowClientIsDropped(t *testing.T) {
	h := NewHub(nil, testLogger())
	defer h.Close()

	fc := newFakeConn()
	// No write pump: the buffer fills up and the client must be dropped
	// without Broadcast ever blocking.
	c := newClient(h, fc, testLogger())
	h.Register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i <= sendBufferSize; i++ {
			h.Broadcast(testEvent{Type: "fly", Multiplier: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}

	require.Equal(t, 0, h.Len())
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	h := NewHub(nil, testLogger())
	defer h.Close()

	fc := newFakeConn()
	c := attach(h, fc)

	h.Unregister(c)
	h.Unregister(c) // second call must be a no-op, not a panic

	require.Equal(t, 0, h.Len())
}

func TestHubCloseDropsEverything(t *testing.T) {
	h := NewHub(nil, testLogger())

	for i := 0; i < 5; i++ {
		attach(h, newFakeConn())
	}
	require.Equal(t, 5, h.Len())

	h.Close()
	require.Equal(t, 0, h.Len())

	// Registering after close must not leak a client.
	late := newClient(h, newFakeConn(), testLogger())
	h.Register(late)
	require.Equal(t, 0, h.Len())
}

func TestHubConcurrentRegisterBroadcast(t *testing.T) {
	h := NewHub(nil, testLogger())
	defer h.Close()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(testEvent{Type: "fly", Multiplier: float64(i)})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			fc := newFakeConn()
			c := attach(h, fc)
			h.Unregister(c)
		}
	}()

	wg.Wait()
}
