package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a trigger payload is not valid UTF-8.
var ErrInvalidEncoding = errors.New("trigger payload is not valid UTF-8")

const (
	SourceUDP  = "udp"
	SourceMQTT = "mqtt"
	SourceHTTP = "http"
)

// A Trigger is a single motion notification received from a sensor,
// it only lives for the duration of one dispatch.
type Trigger struct {
	Source     string    `json:"source"`
	Sender     string    `json:"sender"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewTrigger decodes a raw payload into a trigger, the message is the
// payload with leading and trailing whitespace removed.
func NewTrigger(source string, sender string, payload []byte) (Trigger, error) {
	if !utf8.Valid(payload) {
		return Trigger{}, ErrInvalidEncoding
	}
	return Trigger{
		Source:     source,
		Sender:     sender,
		Message:    strings.TrimSpace(string(payload)),
		ReceivedAt: time.Now(),
	}, nil
}
