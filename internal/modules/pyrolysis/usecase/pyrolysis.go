package usecase

import (
	"context"
	"fmt"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	identitydto "biochar/internal/modules/identity/dto"
	"biochar/internal/modules/pyrolysis/domain"
	"biochar/internal/modules/pyrolysis/dto"
	pyrolysisin "biochar/internal/modules/pyrolysis/port/in"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
	"biochar/internal/modules/pyrolysis/service"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/platform/logging"
)

type Interactor struct {
	svc     *service.BatchService
	journal pyrolysisout.Journal
	sinks   []pyrolysisout.EventSink
	logger  hclog.Logger
}

// NewInteractor wires the lifecycle. journal may be nil; sinks receive every
// transition after it is durable.
func NewInteractor(svc *service.BatchService, journal pyrolysisout.Journal, logger hclog.Logger, sinks ...pyrolysisout.EventSink) pyrolysisin.Usecase {
	return &Interactor{svc: svc, journal: journal, sinks: sinks, logger: logging.OrNull(logger).Named("pyrolysis")}
}

func (i *Interactor) Start(ctx context.Context, actor identitydto.Actor, input dto.StartInput) (dto.StartOutput, error) {
	if err := requireOperator(actor); err != nil {
		return dto.StartOutput{}, err
	}
	batch, err := i.svc.Start(ctx, domain.StartParams{
		CoordinatorID: actor.CoordinatorID,
		KilnID:        input.KilnID,
		BiomassTypeID: input.BiomassTypeID,
		InputQuantity: input.InputQuantity,
	})
	if err != nil {
		return dto.StartOutput{}, err
	}
	i.logger.Info("batch started", "batch_id", batch.ID, "coordinator_id", batch.CoordinatorID, "kiln_id", batch.KilnID, "input_kg", batch.InputQuantity)
	warnings := i.publish(ctx, domain.Event{Kind: domain.EventBatchStarted, At: batch.StartTime, Batch: batch})
	return dto.StartOutput{Batch: toOutput(batch), Warnings: warnings}, nil
}

func (i *Interactor) End(ctx context.Context, actor identitydto.Actor, input dto.EndInput) (dto.EndOutput, error) {
	if err := requireOperator(actor); err != nil {
		return dto.EndOutput{}, err
	}
	batch, err := i.svc.End(ctx, domain.EndParams{
		CoordinatorID:  actor.CoordinatorID,
		BatchID:        input.BatchID,
		OutputQuantity: input.OutputQuantity,
		PhotoName:      input.PhotoName,
		Photo:          input.Photo,
	})
	if err != nil {
		return dto.EndOutput{}, err
	}
	i.logger.Info("batch completed", "batch_id", batch.ID, "coordinator_id", batch.CoordinatorID, "output_kg", batch.OutputQuantity, "photo_ref", batch.PhotoRef)

	out := dto.EndOutput{Batch: toOutput(batch)}
	if i.journal != nil {
		path, err := i.journal.Write(ctx, i.svc.JournalEntry(ctx, batch, actor.Name))
		if err != nil {
			i.logger.Warn("journal note not written", "batch_id", batch.ID, "error", err)
			out.Warnings = append(out.Warnings, fmt.Sprintf("journal: %v", err))
		} else {
			out.JournalPath = path
		}
	}
	out.Warnings = append(out.Warnings, i.publish(ctx, domain.Event{Kind: domain.EventBatchCompleted, At: batch.EndTime, Batch: batch})...)
	return out, nil
}

func (i *Interactor) GetActive(ctx context.Context, actor identitydto.Actor) (dto.BatchOutput, error) {
	if err := requireOperator(actor); err != nil {
		return dto.BatchOutput{}, err
	}
	batch, err := i.svc.Active(ctx, actor.CoordinatorID)
	if err != nil {
		return dto.BatchOutput{}, err
	}
	return toOutput(batch), nil
}

func (i *Interactor) History(ctx context.Context, actor identitydto.Actor, input dto.HistoryInput) ([]dto.BatchOutput, error) {
	coordinatorID := strings.TrimSpace(input.CoordinatorID)
	switch {
	case actor.IsAdmin():
	case actor.OperatesBatches():
		if coordinatorID != "" && coordinatorID != actor.CoordinatorID {
			return nil, fmt.Errorf("%w: coordinators can only read their own history", apperrors.ErrForbidden)
		}
		coordinatorID = actor.CoordinatorID
	default:
		return nil, fmt.Errorf("%w: no role permits reading batch history", apperrors.ErrForbidden)
	}
	batches, err := i.svc.History(ctx, coordinatorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchOutput, 0, len(batches))
	for _, batch := range batches {
		out = append(out, toOutput(batch))
	}
	return out, nil
}

func (i *Interactor) publish(ctx context.Context, event domain.Event) []string {
	var warnings []string
	for _, sink := range i.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			i.logger.Warn("event not delivered", "kind", string(event.Kind), "batch_id", event.Batch.Fields().ID, "error", err)
			warnings = append(warnings, fmt.Sprintf("%s: %v", event.Kind, err))
		}
	}
	return warnings
}

func requireOperator(actor identitydto.Actor) error {
	if !actor.OperatesBatches() {
		return fmt.Errorf("%w: only coordinators operate batches", apperrors.ErrForbidden)
	}
	return nil
}

func toOutput(batch domain.Batch) dto.BatchOutput {
	f := batch.Fields()
	out := dto.BatchOutput{
		ID:            f.ID,
		CoordinatorID: f.CoordinatorID,
		KilnID:        f.KilnID,
		BiomassTypeID: f.BiomassTypeID,
		Status:        string(batch.Status()),
		StartTime:     f.StartTime,
		InputQuantity: f.InputQuantity,
	}
	if c, ok := batch.(domain.CompletedBatch); ok {
		out.EndTime = c.EndTime
		out.OutputQuantity = c.OutputQuantity
		out.PhotoRef = c.PhotoRef
		out.YieldPercent = c.Yield()
	}
	return out
}
