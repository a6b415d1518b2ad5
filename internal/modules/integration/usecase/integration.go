package usecase

import (
	"context"

	"biochar/internal/modules/integration/dto"
	integrationin "biochar/internal/modules/integration/port/in"
	"biochar/internal/modules/integration/service"
)

type Interactor struct {
	svc *service.IntegrationService
}

func NewInteractor(svc *service.IntegrationService) integrationin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.IntegrationInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Deliver(ctx context.Context, input dto.EventInput) ([]dto.DeliveryResult, error) {
	return i.svc.Deliver(ctx, input)
}
