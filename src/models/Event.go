package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Outcome is the result of one dispatch.
type Outcome string

const (
	// The snapshot and the embed were posted to the webhook.
	OutcomeDelivered Outcome = "delivered"
	// The camera was unreachable, a text only alert was posted.
	OutcomeFallback Outcome = "fallback"
	// The camera was unreachable and the text only alert failed as well.
	OutcomeFallbackFailed Outcome = "fallback_failed"
	// Any other failure, nothing was delivered.
	OutcomeFailed Outcome = "failed"
)

// An Event records what happened to a single trigger. Events are kept
// in memory only and are used by the status API and the event outputs.
type Event struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Sender     string    `json:"sender"`
	Message    string    `json:"message"`
	Outcome    Outcome   `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewEvent(trigger Trigger, outcome Outcome, err error) Event {
	id := ""
	if u, uerr := uuid.NewV4(); uerr == nil {
		id = u.String()
	}
	event := Event{
		ID:         id,
		Source:     trigger.Source,
		Sender:     trigger.Sender,
		Message:    trigger.Message,
		Outcome:    outcome,
		ReceivedAt: trigger.ReceivedAt,
		FinishedAt: time.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	return event
}
