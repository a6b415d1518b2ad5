package in

import (
	"context"

	"biochar/internal/modules/catalog/dto"
	identitydto "biochar/internal/modules/identity/dto"
)

type Usecase interface {
	AddKiln(ctx context.Context, actor identitydto.Actor, input dto.AddKilnInput) (dto.KilnOutput, error)
	ListKilns(ctx context.Context, coordinatorID string) ([]dto.KilnOutput, error)
	GetKiln(ctx context.Context, id string) (dto.KilnOutput, error)
	AddBiomassType(ctx context.Context, actor identitydto.Actor, input dto.AddBiomassTypeInput) (dto.BiomassTypeOutput, error)
	ListBiomassTypes(ctx context.Context) ([]dto.BiomassTypeOutput, error)
	GetBiomassType(ctx context.Context, id string) (dto.BiomassTypeOutput, error)
}
