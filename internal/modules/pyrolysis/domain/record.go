package domain

import (
	"fmt"
	"time"

	apperrors "biochar/internal/platform/errors"
)

// Record is the persisted row shape of a batch. End fields are nil until
// completion.
type Record struct {
	ID             string
	CoordinatorID  string
	KilnID         string
	BiomassTypeID  string
	StartTime      time.Time
	InputQuantity  float64
	Status         Status
	EndTime        *time.Time
	OutputQuantity *float64
	PhotoRef       *string
}

// Decode turns a row into a batch variant. Rows whose end fields disagree
// with their status are rejected.
func Decode(r Record) (Batch, error) {
	start := StartFields{
		ID:            r.ID,
		CoordinatorID: r.CoordinatorID,
		KilnID:        r.KilnID,
		BiomassTypeID: r.BiomassTypeID,
		StartTime:     r.StartTime,
		InputQuantity: r.InputQuantity,
	}
	switch r.Status {
	case StatusInProgress:
		if r.EndTime != nil || r.OutputQuantity != nil || r.PhotoRef != nil {
			return nil, fmt.Errorf("%w: batch %s is in-progress but carries end fields", apperrors.ErrInvariantViolated, r.ID)
		}
		return ActiveBatch{StartFields: start}, nil
	case StatusCompleted:
		if r.EndTime == nil || r.OutputQuantity == nil || r.PhotoRef == nil {
			return nil, fmt.Errorf("%w: batch %s is completed but misses end fields", apperrors.ErrInvariantViolated, r.ID)
		}
		return CompletedBatch{
			StartFields:    start,
			EndTime:        *r.EndTime,
			OutputQuantity: *r.OutputQuantity,
			PhotoRef:       *r.PhotoRef,
		}, nil
	default:
		return nil, fmt.Errorf("%w: batch %s has unknown status %q", apperrors.ErrInvariantViolated, r.ID, string(r.Status))
	}
}

func DecodeAll(records []Record) ([]Batch, error) {
	out := make([]Batch, 0, len(records))
	for _, r := range records {
		batch, err := Decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, batch)
	}
	return out, nil
}

func Encode(b Batch) Record {
	f := b.Fields()
	r := Record{
		ID:            f.ID,
		CoordinatorID: f.CoordinatorID,
		KilnID:        f.KilnID,
		BiomassTypeID: f.BiomassTypeID,
		StartTime:     f.StartTime,
		InputQuantity: f.InputQuantity,
		Status:        b.Status(),
	}
	if c, ok := b.(CompletedBatch); ok {
		end, out, photo := c.EndTime, c.OutputQuantity, c.PhotoRef
		r.EndTime = &end
		r.OutputQuantity = &out
		r.PhotoRef = &photo
	}
	return r
}
