package out

import (
	"context"

	"biochar/internal/modules/catalog/domain"
)

type KilnStore interface {
	InsertKiln(ctx context.Context, kiln domain.Kiln) error
	FindKiln(ctx context.Context, id string) (domain.Kiln, error)
	// ListKilns returns every kiln when coordinatorID is empty.
	ListKilns(ctx context.Context, coordinatorID string) ([]domain.Kiln, error)
}

type BiomassTypeStore interface {
	InsertBiomassType(ctx context.Context, biomass domain.BiomassType) error
	FindBiomassType(ctx context.Context, id string) (domain.BiomassType, error)
	ListBiomassTypes(ctx context.Context) ([]domain.BiomassType, error)
}
