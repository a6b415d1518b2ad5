package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type EventKind string

const (
	EventBatchStarted   EventKind = "batch.started"
	EventBatchCompleted EventKind = "batch.completed"
)

func (k EventKind) Validate() error {
	switch k {
	case EventBatchStarted, EventBatchCompleted:
		return nil
	default:
		return fmt.Errorf("unknown event kind: %s", k)
	}
}

var (
	ErrIntegrationDisabled = errors.New("integration is disabled")
	ErrChecksumMismatch    = errors.New("integration checksum mismatch")
	ErrDeliveryTimeout     = errors.New("integration delivery timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Manifest struct {
	Name    string      `toml:"name"`
	Version string      `toml:"version"`
	Binary  string      `toml:"binary"`
	SHA256  string      `toml:"sha256"`
	Enabled bool        `toml:"enabled"`
	Events  []EventKind `toml:"events"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("integration name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("integration version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("integration binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("integration sha256 must be lowercase 64-char hex")
	}
	if len(m.Events) == 0 {
		return fmt.Errorf("integration events are required")
	}
	seen := map[EventKind]struct{}{}
	for _, kind := range m.Events {
		if err := kind.Validate(); err != nil {
			return err
		}
		if _, ok := seen[kind]; ok {
			return fmt.Errorf("duplicate event: %s", kind)
		}
		seen[kind] = struct{}{}
	}
	return nil
}

func (m Manifest) Subscribes(kind EventKind) bool {
	for _, k := range m.Events {
		if k == kind {
			return true
		}
	}
	return false
}

type Metadata struct {
	Name    string
	Version string
	Events  []EventKind
}

// BatchSnapshot is the batch as seen by an integration. End fields are
// zero until the batch completes.
type BatchSnapshot struct {
	ID             string
	CoordinatorID  string
	KilnID         string
	BiomassTypeID  string
	Status         string
	StartTime      time.Time
	InputQuantity  float64
	EndTime        time.Time
	OutputQuantity float64
	PhotoRef       string
}

type Event struct {
	Kind  EventKind
	At    time.Time
	Batch BatchSnapshot
}

func (e Event) Validate() error {
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.Batch.ID == "" {
		return fmt.Errorf("event batch id is required")
	}
	if e.Kind == EventBatchCompleted && e.Batch.EndTime.IsZero() {
		return fmt.Errorf("completed event needs an end time")
	}
	return nil
}

type Receipt struct {
	Accepted  bool
	Reference string
	Message   string
}
