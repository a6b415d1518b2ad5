package dto

import "time"

type AddKilnInput struct {
	CoordinatorID string
	Name          string
	CapacityKg    float64
}

type AddBiomassTypeInput struct {
	Name        string
	Description string
}

type KilnOutput struct {
	ID            string
	CoordinatorID string
	Name          string
	CapacityKg    float64
	CreatedAt     time.Time
}

type BiomassTypeOutput struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
