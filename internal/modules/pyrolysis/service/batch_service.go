package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	"biochar/internal/modules/pyrolysis/domain"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
	"biochar/internal/platform/clock"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/platform/id"
	"biochar/internal/platform/logging"
)

// BatchService runs the lifecycle transitions. It keeps no state between
// calls; every operation starts from a fresh read of the record store.
type BatchService struct {
	clock  clock.Clock
	idGen  id.Generator
	store  pyrolysisout.BatchStore
	blobs  pyrolysisout.BlobStore
	refs   pyrolysisout.ReferenceLookup
	logger hclog.Logger
}

func NewBatchService(
	clock clock.Clock,
	idGen id.Generator,
	store pyrolysisout.BatchStore,
	blobs pyrolysisout.BlobStore,
	refs pyrolysisout.ReferenceLookup,
	logger hclog.Logger,
) *BatchService {
	return &BatchService{
		clock:  clock,
		idGen:  idGen,
		store:  store,
		blobs:  blobs,
		refs:   refs,
		logger: logging.OrNull(logger).Named("pyrolysis"),
	}
}

func (s *BatchService) Start(ctx context.Context, params domain.StartParams) (domain.ActiveBatch, error) {
	if err := params.Validate(); err != nil {
		return domain.ActiveBatch{}, err
	}
	if err := s.checkReferences(ctx, params); err != nil {
		return domain.ActiveBatch{}, err
	}
	batches, err := s.load(ctx, params.CoordinatorID)
	if err != nil {
		return domain.ActiveBatch{}, err
	}
	current, ok, err := domain.ActiveOf(batches)
	if err != nil {
		return domain.ActiveBatch{}, err
	}
	if ok {
		return domain.ActiveBatch{}, fmt.Errorf("%w: batch %s is already in progress", apperrors.ErrInvalidState, current.ID)
	}
	batch, err := domain.NewActive(s.idGen.New(), params, s.clock.Now())
	if err != nil {
		return domain.ActiveBatch{}, err
	}
	if err := s.store.InsertBatch(ctx, domain.Encode(batch)); err != nil {
		return domain.ActiveBatch{}, err
	}
	return batch, nil
}

func (s *BatchService) End(ctx context.Context, params domain.EndParams) (domain.CompletedBatch, error) {
	if err := params.Validate(); err != nil {
		return domain.CompletedBatch{}, err
	}
	current, err := s.Active(ctx, params.CoordinatorID)
	if errors.Is(err, apperrors.ErrNoActiveBatch) {
		return domain.CompletedBatch{}, fmt.Errorf("%w: no batch in progress", apperrors.ErrInvalidState)
	}
	if err != nil {
		return domain.CompletedBatch{}, err
	}
	if batchID := strings.TrimSpace(params.BatchID); batchID != "" && batchID != current.ID {
		return domain.CompletedBatch{}, fmt.Errorf("%w: batch %s is not the active batch (%s)", apperrors.ErrInvalidState, batchID, current.ID)
	}

	ref, err := s.blobs.Upload(ctx, params.CoordinatorID, params.PhotoName, params.Photo)
	if err != nil {
		return domain.CompletedBatch{}, err
	}
	completed, err := current.Complete(domain.Completion{
		EndTime:        s.clock.Now(),
		OutputQuantity: params.OutputQuantity,
		PhotoRef:       ref,
	})
	if err != nil {
		return domain.CompletedBatch{}, err
	}
	if err := s.store.CompleteBatch(ctx, completed); err != nil {
		s.logger.Warn("photo uploaded but batch not completed", "batch_id", current.ID, "photo_ref", ref, "error", err)
		return domain.CompletedBatch{}, err
	}
	return completed, nil
}

func (s *BatchService) Active(ctx context.Context, coordinatorID string) (domain.ActiveBatch, error) {
	batches, err := s.load(ctx, coordinatorID)
	if err != nil {
		return domain.ActiveBatch{}, err
	}
	current, ok, err := domain.ActiveOf(batches)
	if err != nil {
		return domain.ActiveBatch{}, err
	}
	if !ok {
		return domain.ActiveBatch{}, apperrors.ErrNoActiveBatch
	}
	return current, nil
}

// History lists the coordinator's batches newest first. An empty
// coordinatorID merges every coordinator.
func (s *BatchService) History(ctx context.Context, coordinatorID string) ([]domain.Batch, error) {
	records, err := s.store.ListBatches(ctx, strings.TrimSpace(coordinatorID))
	if err != nil {
		return nil, err
	}
	batches, err := domain.DecodeAll(records)
	if err != nil {
		return nil, err
	}
	return domain.History(batches), nil
}

// JournalEntry resolves display names for a completed batch. Lookup
// failures fall back to the raw ids.
func (s *BatchService) JournalEntry(ctx context.Context, batch domain.CompletedBatch, coordinatorName string) domain.JournalEntry {
	entry := domain.JournalEntry{
		Batch:           batch,
		KilnName:        batch.KilnID,
		BiomassName:     batch.BiomassTypeID,
		CoordinatorName: coordinatorName,
	}
	if kiln, err := s.refs.Kiln(ctx, batch.KilnID); err == nil && kiln.Name != "" {
		entry.KilnName = kiln.Name
	}
	if biomass, err := s.refs.BiomassType(ctx, batch.BiomassTypeID); err == nil && biomass.Name != "" {
		entry.BiomassName = biomass.Name
	}
	return entry
}

func (s *BatchService) load(ctx context.Context, coordinatorID string) ([]domain.Batch, error) {
	coordinatorID = strings.TrimSpace(coordinatorID)
	if coordinatorID == "" {
		return nil, fmt.Errorf("%w: coordinator id is required", apperrors.ErrValidation)
	}
	records, err := s.store.ListBatches(ctx, coordinatorID)
	if err != nil {
		return nil, err
	}
	return domain.DecodeAll(records)
}

func (s *BatchService) checkReferences(ctx context.Context, params domain.StartParams) error {
	kiln, err := s.refs.Kiln(ctx, params.KilnID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: kiln %s does not exist", apperrors.ErrValidation, params.KilnID)
	}
	if err != nil {
		return err
	}
	if kiln.CoordinatorID != params.CoordinatorID {
		return fmt.Errorf("%w: kiln %s belongs to another coordinator", apperrors.ErrValidation, params.KilnID)
	}
	_, err = s.refs.BiomassType(ctx, params.BiomassTypeID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: biomass type %s does not exist", apperrors.ErrValidation, params.BiomassTypeID)
	}
	return err
}
