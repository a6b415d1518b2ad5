package out

import (
	"context"

	"biochar/internal/modules/pyrolysis/domain"
)

type BatchStore interface {
	// ListBatches returns every batch when coordinatorID is empty.
	ListBatches(ctx context.Context, coordinatorID string) ([]domain.Record, error)
	// InsertBatch rejects a second in-progress batch for the same
	// coordinator with ErrInvalidState.
	InsertBatch(ctx context.Context, record domain.Record) error
	// CompleteBatch only succeeds while the stored batch is still
	// in-progress; otherwise it returns ErrInvalidState.
	CompleteBatch(ctx context.Context, batch domain.CompletedBatch) error
}

type BlobStore interface {
	Upload(ctx context.Context, ownerID, filename string, data []byte) (string, error)
}

type ReferenceLookup interface {
	Kiln(ctx context.Context, id string) (domain.KilnRef, error)
	BiomassType(ctx context.Context, id string) (domain.BiomassRef, error)
}

type Journal interface {
	Write(ctx context.Context, entry domain.JournalEntry) (string, error)
}

type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}
