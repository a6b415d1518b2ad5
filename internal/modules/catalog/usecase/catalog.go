package usecase

import (
	"context"
	"fmt"

	"biochar/internal/modules/catalog/domain"
	"biochar/internal/modules/catalog/dto"
	catalogin "biochar/internal/modules/catalog/port/in"
	"biochar/internal/modules/catalog/service"
	identitydto "biochar/internal/modules/identity/dto"
	apperrors "biochar/internal/platform/errors"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddKiln(ctx context.Context, actor identitydto.Actor, input dto.AddKilnInput) (dto.KilnOutput, error) {
	if !actor.IsAdmin() {
		return dto.KilnOutput{}, fmt.Errorf("%w: only admins can register kilns", apperrors.ErrForbidden)
	}
	kiln, err := i.svc.AddKiln(ctx, input.CoordinatorID, input.Name, input.CapacityKg)
	if err != nil {
		return dto.KilnOutput{}, err
	}
	return toKilnOutput(kiln), nil
}

func (i *Interactor) ListKilns(ctx context.Context, coordinatorID string) ([]dto.KilnOutput, error) {
	kilns, err := i.svc.ListKilns(ctx, coordinatorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KilnOutput, 0, len(kilns))
	for _, kiln := range kilns {
		out = append(out, toKilnOutput(kiln))
	}
	return out, nil
}

func (i *Interactor) GetKiln(ctx context.Context, id string) (dto.KilnOutput, error) {
	kiln, err := i.svc.GetKiln(ctx, id)
	if err != nil {
		return dto.KilnOutput{}, err
	}
	return toKilnOutput(kiln), nil
}

func (i *Interactor) AddBiomassType(ctx context.Context, actor identitydto.Actor, input dto.AddBiomassTypeInput) (dto.BiomassTypeOutput, error) {
	if !actor.IsAdmin() {
		return dto.BiomassTypeOutput{}, fmt.Errorf("%w: only admins can register biomass types", apperrors.ErrForbidden)
	}
	biomass, err := i.svc.AddBiomassType(ctx, input.Name, input.Description)
	if err != nil {
		return dto.BiomassTypeOutput{}, err
	}
	return toBiomassOutput(biomass), nil
}

func (i *Interactor) ListBiomassTypes(ctx context.Context) ([]dto.BiomassTypeOutput, error) {
	types, err := i.svc.ListBiomassTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BiomassTypeOutput, 0, len(types))
	for _, biomass := range types {
		out = append(out, toBiomassOutput(biomass))
	}
	return out, nil
}

func (i *Interactor) GetBiomassType(ctx context.Context, id string) (dto.BiomassTypeOutput, error) {
	biomass, err := i.svc.GetBiomassType(ctx, id)
	if err != nil {
		return dto.BiomassTypeOutput{}, err
	}
	return toBiomassOutput(biomass), nil
}

func toKilnOutput(kiln domain.Kiln) dto.KilnOutput {
	return dto.KilnOutput{
		ID:            kiln.ID,
		CoordinatorID: kiln.CoordinatorID,
		Name:          kiln.Name,
		CapacityKg:    kiln.CapacityKg,
		CreatedAt:     kiln.CreatedAt,
	}
}

func toBiomassOutput(biomass domain.BiomassType) dto.BiomassTypeOutput {
	return dto.BiomassTypeOutput{
		ID:          biomass.ID,
		Name:        biomass.Name,
		Description: biomass.Description,
		CreatedAt:   biomass.CreatedAt,
	}
}
