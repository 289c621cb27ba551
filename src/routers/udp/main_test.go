package udp

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	triggers []models.Trigger
	received chan models.Trigger
	block    func(trigger models.Trigger)
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{received: make(chan models.Trigger, 10)}
}

func (h *recordingHandler) HandleTrigger(ctx context.Context, trigger models.Trigger) models.Event {
	if h.block != nil {
		h.block(trigger)
	}
	h.mu.Lock()
	h.triggers = append(h.triggers, trigger)
	h.mu.Unlock()
	h.received <- trigger
	return models.Event{Message: trigger.Message}
}

func startListener(t *testing.T, handler Handler) (*Listener, net.Conn) {
	t.Helper()
	listener, err := Listen("127.0.0.1", 0, handler)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go listener.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		listener.Close()
	})

	conn, err := net.Dial("udp4", listener.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return listener, conn
}

func waitForTrigger(t *testing.T, handler *recordingHandler) models.Trigger {
	t.Helper()
	select {
	case trigger := <-handler.received:
		return trigger
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger received")
	}
	return models.Trigger{}
}

func TestListenerTrimsMessage(t *testing.T) {
	handler := newRecordingHandler()
	_, conn := startListener(t, handler)

	_, err := conn.Write([]byte("  motion!\n"))
	require.NoError(t, err)

	trigger := waitForTrigger(t, handler)
	assert.Equal(t, "motion!", trigger.Message)
	assert.Equal(t, models.SourceUDP, trigger.Source)
	assert.Equal(t, conn.LocalAddr().String(), trigger.Sender)
}

func TestListenerSurvivesInvalidEncoding(t *testing.T) {
	handler := newRecordingHandler()
	_, conn := startListener(t, handler)

	_, err := conn.Write([]byte{0xff, 0xfe, 0xfd})
	require.NoError(t, err)
	_, err = conn.Write([]byte("front door"))
	require.NoError(t, err)

	trigger := waitForTrigger(t, handler)
	assert.Equal(t, "front door", trigger.Message)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Len(t, handler.triggers, 1)
}

func TestListenerDoesNotWaitForDispatch(t *testing.T) {
	release := make(chan struct{})
	handler := newRecordingHandler()
	handler.block = func(trigger models.Trigger) {
		if trigger.Message == "slow" {
			<-release
		}
	}
	listener, conn := startListener(t, handler)

	_, err := conn.Write([]byte("slow"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = conn.Write([]byte("fast"))
	require.NoError(t, err)

	assert.Equal(t, "fast", waitForTrigger(t, handler).Message)

	close(release)
	assert.Equal(t, "slow", waitForTrigger(t, handler).Message)

	require.NoError(t, listener.Close())
	listener.Wait()
}

func TestListenerRecoversFromPanic(t *testing.T) {
	handler := newRecordingHandler()
	handler.block = func(trigger models.Trigger) {
		if trigger.Message == "boom" {
			panic("boom")
		}
	}
	_, conn := startListener(t, handler)

	_, err := conn.Write([]byte("boom"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = conn.Write([]byte("after"))
	require.NoError(t, err)

	assert.Equal(t, "after", waitForTrigger(t, handler).Message)
}

func TestListenFailsWhenPortIsTaken(t *testing.T) {
	taken, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	port := taken.LocalAddr().(*net.UDPAddr).Port
	_, err = Listen("127.0.0.1", port, newRecordingHandler())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}

func TestCloseIsIdempotent(t *testing.T) {
	listener, err := Listen("127.0.0.1", 0, newRecordingHandler())
	require.NoError(t, err)
	assert.NoError(t, listener.Close())
	assert.NoError(t, listener.Close())
}

// brokenConn fails every read, like a socket in a persistent error state.
type brokenConn struct {
	net.PacketConn
	reads  atomic.Int32
	closed atomic.Bool
}

func (c *brokenConn) ReadFrom(p []byte) (int, net.Addr, error) {
	c.reads.Add(1)
	if c.closed.Load() {
		return 0, nil, net.ErrClosed
	}
	return 0, nil, errors.New("read udp4: network is unreachable")
}

func (c *brokenConn) Close() error {
	c.closed.Store(true)
	return nil
}

func TestServeBacksOffOnReadErrors(t *testing.T) {
	conn := &brokenConn{}
	listener := newListener(conn, newRecordingHandler())

	served := make(chan struct{})
	go func() {
		listener.Serve(context.Background())
		close(served)
	}()

	time.Sleep(150 * time.Millisecond)
	// 10ms, 20ms, 40ms, 80ms: only a handful of reads fit in the window.
	assert.LessOrEqual(t, conn.reads.Load(), int32(6))

	require.NoError(t, listener.Close())
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("serve did not return after close")
	}
}

func TestServeReturnsOnCloseWithoutCancel(t *testing.T) {
	listener, err := Listen("127.0.0.1", 0, newRecordingHandler())
	require.NoError(t, err)

	served := make(chan struct{})
	go func() {
		listener.Serve(context.Background())
		close(served)
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, listener.Close())
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("serve did not return after close")
	}
	select {
	case <-listener.done:
	default:
		t.Fatal("done channel is not closed")
	}
}
