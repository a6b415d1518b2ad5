package out

import (
	"context"
	"errors"
	"fmt"

	integrationdto "biochar/internal/modules/integration/dto"
	integrationin "biochar/internal/modules/integration/port/in"
	"biochar/internal/modules/pyrolysis/domain"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
)

// IntegrationEventSink forwards lifecycle events to the integration
// plugins. A failing plugin is reported without hiding the others.
type IntegrationEventSink struct {
	integrations integrationin.Usecase
}

func NewIntegrationEventSink(integrations integrationin.Usecase) pyrolysisout.EventSink {
	return &IntegrationEventSink{integrations: integrations}
}

func (s *IntegrationEventSink) Publish(ctx context.Context, event domain.Event) error {
	f := event.Batch.Fields()
	snapshot := integrationdto.BatchSnapshot{
		ID:            f.ID,
		CoordinatorID: f.CoordinatorID,
		KilnID:        f.KilnID,
		BiomassTypeID: f.BiomassTypeID,
		Status:        string(event.Batch.Status()),
		StartTime:     f.StartTime,
		InputQuantity: f.InputQuantity,
	}
	if c, ok := event.Batch.(domain.CompletedBatch); ok {
		snapshot.EndTime = c.EndTime
		snapshot.OutputQuantity = c.OutputQuantity
		snapshot.PhotoRef = c.PhotoRef
	}
	results, err := s.integrations.Deliver(ctx, integrationdto.EventInput{Kind: string(event.Kind), At: event.At, Batch: snapshot})
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range results {
		if r.Error != "" {
			errs = append(errs, fmt.Errorf("integration %s: %s", r.Integration, r.Error))
		}
	}
	return errors.Join(errs...)
}
