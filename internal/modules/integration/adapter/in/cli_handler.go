package in

import (
	"context"

	"biochar/internal/modules/integration/dto"
	integrationin "biochar/internal/modules/integration/port/in"
)

type CLIHandler struct {
	usecase integrationin.Usecase
}

func NewCLIHandler(usecase integrationin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.IntegrationInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
