package in

import (
	"context"

	identitydto "biochar/internal/modules/identity/dto"
	"biochar/internal/modules/pyrolysis/dto"
)

type Usecase interface {
	Start(ctx context.Context, actor identitydto.Actor, input dto.StartInput) (dto.StartOutput, error)
	End(ctx context.Context, actor identitydto.Actor, input dto.EndInput) (dto.EndOutput, error)
	GetActive(ctx context.Context, actor identitydto.Actor) (dto.BatchOutput, error)
	History(ctx context.Context, actor identitydto.Actor, input dto.HistoryInput) ([]dto.BatchOutput, error)
}
