package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "biochar/internal/platform/errors"
)

// Kiln belongs to exactly one coordinator.
type Kiln struct {
	ID            string
	CoordinatorID string
	Name          string
	CapacityKg    float64
	CreatedAt     time.Time
}

func (k Kiln) Validate() error {
	if strings.TrimSpace(k.ID) == "" {
		return fmt.Errorf("%w: kiln id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(k.CoordinatorID) == "" {
		return fmt.Errorf("%w: kiln coordinator is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(k.Name) == "" {
		return fmt.Errorf("%w: kiln name is required", apperrors.ErrValidation)
	}
	if k.CapacityKg < 0 {
		return fmt.Errorf("%w: kiln capacity must not be negative", apperrors.ErrValidation)
	}
	return nil
}

type BiomassType struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

func (b BiomassType) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("%w: biomass type id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: biomass type name is required", apperrors.ErrValidation)
	}
	return nil
}
