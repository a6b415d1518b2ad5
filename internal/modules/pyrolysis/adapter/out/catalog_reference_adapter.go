package out

import (
	"context"

	catalogin "biochar/internal/modules/catalog/port/in"
	"biochar/internal/modules/pyrolysis/domain"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
)

type CatalogReferenceAdapter struct {
	catalog catalogin.Usecase
}

func NewCatalogReferenceAdapter(catalog catalogin.Usecase) pyrolysisout.ReferenceLookup {
	return &CatalogReferenceAdapter{catalog: catalog}
}

func (a *CatalogReferenceAdapter) Kiln(ctx context.Context, id string) (domain.KilnRef, error) {
	kiln, err := a.catalog.GetKiln(ctx, id)
	if err != nil {
		return domain.KilnRef{}, err
	}
	return domain.KilnRef{ID: kiln.ID, CoordinatorID: kiln.CoordinatorID, Name: kiln.Name}, nil
}

func (a *CatalogReferenceAdapter) BiomassType(ctx context.Context, id string) (domain.BiomassRef, error) {
	biomass, err := a.catalog.GetBiomassType(ctx, id)
	if err != nil {
		return domain.BiomassRef{}, err
	}
	return domain.BiomassRef{ID: biomass.ID, Name: biomass.Name}, nil
}
