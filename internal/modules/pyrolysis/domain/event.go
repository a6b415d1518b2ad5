package domain

import "time"

type EventKind string

const (
	EventBatchStarted   EventKind = "batch.started"
	EventBatchCompleted EventKind = "batch.completed"
)

type Event struct {
	Kind EventKind
	At   time.Time
	// Batch is an ActiveBatch for started events and a CompletedBatch for
	// completed ones.
	Batch Batch
}

// KilnRef and BiomassRef are the reference data a batch points at.
type KilnRef struct {
	ID            string
	CoordinatorID string
	Name          string
}

type BiomassRef struct {
	ID   string
	Name string
}

type JournalEntry struct {
	Batch           CompletedBatch
	KilnName        string
	BiomassName     string
	CoordinatorName string
}
