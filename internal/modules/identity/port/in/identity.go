package in

import (
	"context"

	"biochar/internal/modules/identity/dto"
)

type Usecase interface {
	AddUser(ctx context.Context, actor dto.Actor, input dto.AddUserInput) (dto.UserOutput, error)
	ListUsers(ctx context.Context) ([]dto.UserOutput, error)
	Resolve(ctx context.Context, userID string) (dto.Actor, error)
}
