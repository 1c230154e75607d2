package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the type of a desire lifecycle notification.
type Kind string

const (
	KindDesireOn     Kind = "DESIRE_ON"
	KindDesireOff    Kind = "DESIRE_OFF"
	KindExploitOn    Kind = "EXPLOIT_ON"
	KindExploitOff   Kind = "EXPLOIT_OFF"
	KindIntentionOn  Kind = "INTENTION_ON"
	KindIntentionOff Kind = "INTENTION_OFF"
)

// ErrUnknownKind is returned for an event kind the ingestor does not know.
var ErrUnknownKind = errors.New("unknown event kind")

var kindAliases = map[string]Kind{
	"DESIRE_ON":     KindDesireOn,
	"DES_ON":        KindDesireOn,
	"DESIRE_OFF":    KindDesireOff,
	"DES_OFF":       KindDesireOff,
	"EXPLOIT_ON":    KindExploitOn,
	"EXP_ON":        KindExploitOn,
	"EXPLOIT_OFF":   KindExploitOff,
	"EXP_OFF":       KindExploitOff,
	"INTENTION_ON":  KindIntentionOn,
	"INT_ON":        KindIntentionOn,
	"INTENTION_OFF": KindIntentionOff,
	"INT_OFF":       KindIntentionOff,
}

// ParseKind accepts the canonical names and their short aliases
// (DES_ON, EXP_OFF, INT_ON, ...), case-insensitively.
func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Event is one lifecycle notification about a desire.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	DesireType string    `json:"desire_type"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(kind Kind, desireType string) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		DesireType: desireType,
		ReceivedAt: time.Now(),
	}
}
