package models

import (
	"context"
	"time"

	"github.com/tevino/abool"
)

// The communication struct that is shared between the different
// goroutines of the relay: the trigger sources, the API and the shutdown.
type Communication struct {
	Context        *context.Context
	CancelContext  *context.CancelFunc
	IsShuttingDown *abool.AtomicBool
	StartedAt      time.Time
	Version        string
}

func NewCommunication() *Communication {
	ctx, cancel := context.WithCancel(context.Background())
	return &Communication{
		Context:        &ctx,
		CancelContext:  &cancel,
		IsShuttingDown: abool.New(),
		StartedAt:      time.Now(),
	}
}
