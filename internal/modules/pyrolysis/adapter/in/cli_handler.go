package in

import (
	"context"

	identitydto "biochar/internal/modules/identity/dto"
	"biochar/internal/modules/pyrolysis/dto"
	pyrolysisin "biochar/internal/modules/pyrolysis/port/in"
)

type CLIHandler struct {
	usecase pyrolysisin.Usecase
}

func NewCLIHandler(usecase pyrolysisin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, actor identitydto.Actor, kilnID, biomassTypeID string, inputKg float64) (dto.StartOutput, error) {
	return h.usecase.Start(ctx, actor, dto.StartInput{KilnID: kilnID, BiomassTypeID: biomassTypeID, InputQuantity: inputKg})
}

func (h CLIHandler) End(ctx context.Context, actor identitydto.Actor, batchID string, outputKg float64, photoName string, photo []byte) (dto.EndOutput, error) {
	return h.usecase.End(ctx, actor, dto.EndInput{BatchID: batchID, OutputQuantity: outputKg, PhotoName: photoName, Photo: photo})
}

func (h CLIHandler) GetActive(ctx context.Context, actor identitydto.Actor) (dto.BatchOutput, error) {
	return h.usecase.GetActive(ctx, actor)
}

func (h CLIHandler) History(ctx context.Context, actor identitydto.Actor, coordinatorID string) ([]dto.BatchOutput, error) {
	return h.usecase.History(ctx, actor, dto.HistoryInput{CoordinatorID: coordinatorID})
}
