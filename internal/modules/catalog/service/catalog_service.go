package service

import (
	"context"
	"strings"

	"biochar/internal/modules/catalog/domain"
	catalogout "biochar/internal/modules/catalog/port/out"
	"biochar/internal/platform/clock"
	"biochar/internal/platform/id"
)

type CatalogService struct {
	clock   clock.Clock
	idGen   id.Generator
	kilns   catalogout.KilnStore
	biomass catalogout.BiomassTypeStore
}

func NewCatalogService(clock clock.Clock, idGen id.Generator, kilns catalogout.KilnStore, biomass catalogout.BiomassTypeStore) *CatalogService {
	return &CatalogService{clock: clock, idGen: idGen, kilns: kilns, biomass: biomass}
}

func (s *CatalogService) AddKiln(ctx context.Context, coordinatorID, name string, capacityKg float64) (domain.Kiln, error) {
	kiln := domain.Kiln{
		ID:            s.idGen.New(),
		CoordinatorID: strings.TrimSpace(coordinatorID),
		Name:          strings.TrimSpace(name),
		CapacityKg:    capacityKg,
		CreatedAt:     s.clock.Now(),
	}
	if err := kiln.Validate(); err != nil {
		return domain.Kiln{}, err
	}
	if err := s.kilns.InsertKiln(ctx, kiln); err != nil {
		return domain.Kiln{}, err
	}
	return kiln, nil
}

func (s *CatalogService) GetKiln(ctx context.Context, id string) (domain.Kiln, error) {
	return s.kilns.FindKiln(ctx, strings.TrimSpace(id))
}

func (s *CatalogService) ListKilns(ctx context.Context, coordinatorID string) ([]domain.Kiln, error) {
	return s.kilns.ListKilns(ctx, strings.TrimSpace(coordinatorID))
}

func (s *CatalogService) AddBiomassType(ctx context.Context, name, description string) (domain.BiomassType, error) {
	biomass := domain.BiomassType{
		ID:          s.idGen.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   s.clock.Now(),
	}
	if err := biomass.Validate(); err != nil {
		return domain.BiomassType{}, err
	}
	if err := s.biomass.InsertBiomassType(ctx, biomass); err != nil {
		return domain.BiomassType{}, err
	}
	return biomass, nil
}

func (s *CatalogService) GetBiomassType(ctx context.Context, id string) (domain.BiomassType, error) {
	return s.biomass.FindBiomassType(ctx, strings.TrimSpace(id))
}

func (s *CatalogService) ListBiomassTypes(ctx context.Context) ([]domain.BiomassType, error) {
	return s.biomass.ListBiomassTypes(ctx)
}
