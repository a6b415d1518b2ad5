package in

import (
	"context"

	"biochar/internal/modules/catalog/dto"
	catalogin "biochar/internal/modules/catalog/port/in"
	identitydto "biochar/internal/modules/identity/dto"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddKiln(ctx context.Context, actor identitydto.Actor, coordinatorID, name string, capacityKg float64) (dto.KilnOutput, error) {
	return h.usecase.AddKiln(ctx, actor, dto.AddKilnInput{CoordinatorID: coordinatorID, Name: name, CapacityKg: capacityKg})
}

func (h CLIHandler) ListKilns(ctx context.Context, coordinatorID string) ([]dto.KilnOutput, error) {
	return h.usecase.ListKilns(ctx, coordinatorID)
}

func (h CLIHandler) AddBiomassType(ctx context.Context, actor identitydto.Actor, name, description string) (dto.BiomassTypeOutput, error) {
	return h.usecase.AddBiomassType(ctx, actor, dto.AddBiomassTypeInput{Name: name, Description: description})
}

func (h CLIHandler) ListBiomassTypes(ctx context.Context) ([]dto.BiomassTypeOutput, error) {
	return h.usecase.ListBiomassTypes(ctx)
}
