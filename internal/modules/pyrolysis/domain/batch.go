package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "biochar/internal/platform/errors"
)

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// StartFields are set once when a batch starts and never change afterwards.
type StartFields struct {
	ID            string
	CoordinatorID string
	KilnID        string
	BiomassTypeID string
	StartTime     time.Time
	InputQuantity float64
}

// Batch is either an ActiveBatch or a CompletedBatch.
type Batch interface {
	Fields() StartFields
	Status() Status
	sealed()
}

type ActiveBatch struct {
	StartFields
}

func (b ActiveBatch) Fields() StartFields { return b.StartFields }
func (ActiveBatch) Status() Status        { return StatusInProgress }
func (ActiveBatch) sealed()               {}

type CompletedBatch struct {
	StartFields
	EndTime        time.Time
	OutputQuantity float64
	PhotoRef       string
}

func (b CompletedBatch) Fields() StartFields { return b.StartFields }
func (CompletedBatch) Status() Status        { return StatusCompleted }
func (CompletedBatch) sealed()               {}

// Yield reports output as a percentage of input. It is informational only;
// output is not bounded by input.
func (b CompletedBatch) Yield() float64 {
	if b.InputQuantity <= 0 {
		return 0
	}
	return b.OutputQuantity * 100 / b.InputQuantity
}

type StartParams struct {
	CoordinatorID string
	KilnID        string
	BiomassTypeID string
	InputQuantity float64
}

func (p StartParams) Validate() error {
	if strings.TrimSpace(p.CoordinatorID) == "" {
		return fmt.Errorf("%w: coordinator id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(p.KilnID) == "" {
		return fmt.Errorf("%w: kiln id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(p.BiomassTypeID) == "" {
		return fmt.Errorf("%w: biomass type id is required", apperrors.ErrValidation)
	}
	if !validQuantity(p.InputQuantity) {
		return fmt.Errorf("%w: input quantity must be a finite number greater than zero", apperrors.ErrValidation)
	}
	return nil
}

// validQuantity rejects zero, negatives, NaN and both infinities.
func validQuantity(kg float64) bool {
	return kg > 0 && !math.IsInf(kg, 0)
}

// EndParams carry the caller's completion request before the photo is
// uploaded.
type EndParams struct {
	CoordinatorID  string
	BatchID        string
	OutputQuantity float64
	PhotoName      string
	Photo          []byte
}

func (p EndParams) Validate() error {
	if strings.TrimSpace(p.CoordinatorID) == "" {
		return fmt.Errorf("%w: coordinator id is required", apperrors.ErrValidation)
	}
	if !validQuantity(p.OutputQuantity) {
		return fmt.Errorf("%w: output quantity must be a finite number greater than zero", apperrors.ErrValidation)
	}
	if len(p.Photo) == 0 {
		return fmt.Errorf("%w: photo is required", apperrors.ErrValidation)
	}
	return nil
}

type Completion struct {
	EndTime        time.Time
	OutputQuantity float64
	PhotoRef       string
}

func NewActive(id string, params StartParams, now time.Time) (ActiveBatch, error) {
	if err := params.Validate(); err != nil {
		return ActiveBatch{}, err
	}
	if strings.TrimSpace(id) == "" {
		return ActiveBatch{}, fmt.Errorf("%w: batch id is required", apperrors.ErrValidation)
	}
	return ActiveBatch{StartFields: StartFields{
		ID:            id,
		CoordinatorID: strings.TrimSpace(params.CoordinatorID),
		KilnID:        strings.TrimSpace(params.KilnID),
		BiomassTypeID: strings.TrimSpace(params.BiomassTypeID),
		StartTime:     now,
		InputQuantity: params.InputQuantity,
	}}, nil
}

// Complete sets every end field at once. The start fields are carried over
// untouched.
func (b ActiveBatch) Complete(c Completion) (CompletedBatch, error) {
	if !validQuantity(c.OutputQuantity) {
		return CompletedBatch{}, fmt.Errorf("%w: output quantity must be a finite number greater than zero", apperrors.ErrValidation)
	}
	if strings.TrimSpace(c.PhotoRef) == "" {
		return CompletedBatch{}, fmt.Errorf("%w: photo reference is required", apperrors.ErrValidation)
	}
	if c.EndTime.IsZero() {
		return CompletedBatch{}, fmt.Errorf("%w: end time is required", apperrors.ErrValidation)
	}
	return CompletedBatch{
		StartFields:    b.StartFields,
		EndTime:        c.EndTime,
		OutputQuantity: c.OutputQuantity,
		PhotoRef:       c.PhotoRef,
	}, nil
}

type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// ActiveOf scans batches for the in-progress one. More than one is reported
// as ErrInvariantViolated instead of picking either.
func ActiveOf(batches []Batch) (ActiveBatch, bool, error) {
	var found []ActiveBatch
	for _, batch := range batches {
		if active, ok := batch.(ActiveBatch); ok {
			found = append(found, active)
		}
	}
	switch len(found) {
	case 0:
		return ActiveBatch{}, false, nil
	case 1:
		return found[0], true, nil
	default:
		ids := make([]string, 0, len(found))
		for _, active := range found {
			ids = append(ids, active.ID)
		}
		return ActiveBatch{}, false, fmt.Errorf("%w: %d in-progress batches for coordinator %s (%s)",
			apperrors.ErrInvariantViolated, len(found), found[0].CoordinatorID, strings.Join(ids, ", "))
	}
}

func StateOf(batches []Batch) (State, error) {
	_, ok, err := ActiveOf(batches)
	if err != nil {
		return Idle, err
	}
	if ok {
		return Active, nil
	}
	return Idle, nil
}

// History returns a copy of batches ordered by start time, newest first.
// Equal start times fall back to id descending.
func History(batches []Batch) []Batch {
	out := make([]Batch, len(batches))
	copy(out, batches)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Fields(), out[j].Fields()
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.After(b.StartTime)
		}
		return a.ID > b.ID
	})
	return out
}
