package components

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PsycoVenom0/security-relay/src/log"
	"github.com/PsycoVenom0/security-relay/src/models"
	"github.com/PsycoVenom0/security-relay/src/outputs"
)

// The Relay connects the trigger sources to the dispatcher. It keeps the
// counters and recent events, and hands every event to the event outputs.
type Relay struct {
	Dispatcher *Dispatcher

	events  *EventBuffer
	mu      sync.RWMutex
	outputs []outputs.Output

	// stopped and inFlight are guarded by dispatchMu, no dispatch is
	// added once the relay is stopped.
	dispatchMu sync.Mutex
	stopped    bool
	inFlight   sync.WaitGroup

	received       atomic.Int64
	delivered      atomic.Int64
	fallback       atomic.Int64
	fallbackFailed atomic.Int64
	failed         atomic.Int64
}

func NewRelay(configuration *models.Configuration, dispatcher *Dispatcher) *Relay {
	return &Relay{
		Dispatcher: dispatcher,
		events:     NewEventBuffer(configuration.Config.Events.Buffer),
	}
}

func (r *Relay) AddOutput(output outputs.Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs = append(r.outputs, output)
}

// HandleTrigger runs a single dispatch to the end. Cancelling ctx does not
// abort a dispatch that has already started.
func (r *Relay) HandleTrigger(ctx context.Context, trigger models.Trigger) models.Event {
	r.received.Add(1)

	outcome, err := r.Dispatcher.SendAlert(context.WithoutCancel(ctx), trigger.Message)
	switch outcome {
	case models.OutcomeDelivered:
		r.delivered.Add(1)
	case models.OutcomeFallback:
		r.fallback.Add(1)
	case models.OutcomeFallbackFailed:
		r.fallbackFailed.Add(1)
	default:
		r.failed.Add(1)
	}

	event := models.NewEvent(trigger, outcome, err)
	r.events.Add(event)

	r.mu.RLock()
	eventOutputs := append([]outputs.Output(nil), r.outputs...)
	r.mu.RUnlock()
	outputs.Execute(eventOutputs, event)

	return event
}

// Dispatch handles the trigger in its own goroutine, it returns immediately.
// Triggers received after Stop are dropped.
func (r *Relay) Dispatch(trigger models.Trigger) {
	r.dispatchMu.Lock()
	if r.stopped {
		r.dispatchMu.Unlock()
		log.Log.Warning("components.Relay.Dispatch(): relay is shutting down, dropped trigger from " + trigger.Sender + ": " + trigger.Message)
		return
	}
	r.inFlight.Add(1)
	r.dispatchMu.Unlock()

	go func() {
		defer r.inFlight.Done()
		defer func() {
			if e := recover(); e != nil {
				log.Log.Error("components.Relay.Dispatch(): recovered from panic: " + fmt.Sprint(e))
			}
		}()
		r.HandleTrigger(context.Background(), trigger)
	}()
}

// Stop makes Dispatch refuse new triggers, running dispatches go on.
func (r *Relay) Stop() {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	r.stopped = true
}

func (r *Relay) IsStopped() bool {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	return r.stopped
}

// Wait blocks until the dispatches started with Dispatch are finished, or
// the timeout passed. It reports whether all of them finished. Call Stop
// first, a Dispatch during Wait is not allowed.
func (r *Relay) Wait(timeout time.Duration) bool {
	return waitTimeout(r.inFlight.Wait, timeout)
}

func (r *Relay) Events() []models.Event {
	return r.events.Latest()
}

func (r *Relay) Stats() models.Stats {
	return models.Stats{
		Received:       r.received.Load(),
		Delivered:      r.delivered.Load(),
		Fallback:       r.fallback.Load(),
		FallbackFailed: r.fallbackFailed.Load(),
		Failed:         r.failed.Load(),
	}
}

func waitTimeout(wait func(), timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
