package in

import (
	"context"

	"biochar/internal/modules/integration/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.IntegrationInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	// Deliver sends the event to every enabled integration subscribed to
	// its kind. Per-integration failures are reported in the results.
	Deliver(ctx context.Context, input dto.EventInput) ([]dto.DeliveryResult, error)
}
