package domain_test

import (
	"errors"
	"testing"

	"biochar/internal/modules/catalog/domain"
	apperrors "biochar/internal/platform/errors"
)

func TestKilnValidate(t *testing.T) {
	t.Parallel()
	base := domain.Kiln{ID: "k-1", CoordinatorID: "c-1", Name: "Kon-Tiki North", CapacityKg: 750}
	if err := base.Validate(); err != nil {
		t.Fatalf("kiln should be valid: %v", err)
	}
	for name, mutate := range map[string]func(*domain.Kiln){
		"missing id":          func(k *domain.Kiln) { k.ID = "" },
		"missing coordinator": func(k *domain.Kiln) { k.CoordinatorID = " " },
		"missing name":        func(k *domain.Kiln) { k.Name = "" },
		"negative capacity":   func(k *domain.Kiln) { k.CapacityKg = -1 },
	} {
		k := base
		mutate(&k)
		if err := k.Validate(); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestBiomassTypeValidate(t *testing.T) {
	t.Parallel()
	if err := (domain.BiomassType{ID: "b-1", Name: "Wood"}).Validate(); err != nil {
		t.Fatalf("biomass type should be valid: %v", err)
	}
	if err := (domain.BiomassType{ID: "b-1"}).Validate(); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("missing name should fail, got %v", err)
	}
}
