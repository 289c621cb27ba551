package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/tevino/abool"
)

// MaxDatagramSize is the largest payload read from the socket.
const MaxDatagramSize = 64 * 1024

const (
	MinReadBackoff = 10 * time.Millisecond
	MaxReadBackoff = time.Second
)

// A Handler processes a decoded trigger until the alert is dispatched.
type Handler interface {
	HandleTrigger(ctx context.Context, trigger models.Trigger) models.Event
}

// Listener receives motion triggers as UDP datagrams. Every datagram is
// handled in its own goroutine, the receive loop never waits for a dispatch.
type Listener struct {
	conn     net.PacketConn
	handler  Handler
	closed   *abool.AtomicBool
	done     chan struct{}
	inFlight sync.WaitGroup
}

// Listen binds the trigger socket on address:port.
func Listen(address string, port int, handler Handler) (*Listener, error) {
	conn, err := net.ListenPacket("udp4", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("routers.udp.Listen(): %w", err)
	}
	return newListener(conn, handler), nil
}

func newListener(conn net.PacketConn, handler Handler) *Listener {
	return &Listener{
		conn:    conn,
		handler: handler,
		closed:  abool.New(),
		done:    make(chan struct{}),
	}
}

func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve reads datagrams until the listener is closed or ctx is done.
func (l *Listener) Serve(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-l.done:
		}
	}()

	buffer := make([]byte, MaxDatagramSize)
	backoff := time.Duration(0)
	for {
		n, sender, err := l.conn.ReadFrom(buffer)
		if err != nil {
			if l.closed.IsSet() || errors.Is(err, net.ErrClosed) {
				log.Log.Debug("routers.udp.Serve(): listener closed.")
				return
			}
			// Back off on repeated read errors, up to MaxReadBackoff.
			backoff *= 2
			if backoff == 0 {
				backoff = MinReadBackoff
			}
			if backoff > MaxReadBackoff {
				backoff = MaxReadBackoff
			}
			log.Log.Error("routers.udp.Serve(): " + err.Error() + ", retrying in " + backoff.String())
			select {
			case <-l.done:
				return
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		trigger, err := models.NewTrigger(models.SourceUDP, sender.String(), buffer[:n])
		if err != nil {
			log.Log.Warning("routers.udp.Serve(): discarded datagram from " + sender.String() + ": " + err.Error())
			continue
		}
		log.Log.Info("routers.udp.Serve(): trigger from " + sender.String() + ": " + trigger.Message)

		l.inFlight.Add(1)
		go l.handle(ctx, trigger)
	}
}

func (l *Listener) handle(ctx context.Context, trigger models.Trigger) {
	defer l.inFlight.Done()
	defer func() {
		if e := recover(); e != nil {
			log.Log.Error("routers.udp.handle(): recovered from panic: " + fmt.Sprint(e))
		}
	}()
	l.handler.HandleTrigger(ctx, trigger)
}

// Close stops the receive loop, dispatches which are running are not cancelled.
func (l *Listener) Close() error {
	if l.closed.SetToIf(false, true) {
		close(l.done)
		return l.conn.Close()
	}
	return nil
}

// Wait blocks until all dispatches started by the listener are finished.
func (l *Listener) Wait() {
	l.inFlight.Wait()
}
