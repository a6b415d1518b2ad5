package in

import (
	"context"

	"biochar/internal/modules/identity/dto"
	identityin "biochar/internal/modules/identity/port/in"
)

type CLIHandler struct {
	usecase identityin.Usecase
}

func NewCLIHandler(usecase identityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddUser(ctx context.Context, actor dto.Actor, name, role, coordinatorID string) (dto.UserOutput, error) {
	return h.usecase.AddUser(ctx, actor, dto.AddUserInput{Name: name, Role: role, CoordinatorID: coordinatorID})
}

func (h CLIHandler) ListUsers(ctx context.Context) ([]dto.UserOutput, error) {
	return h.usecase.ListUsers(ctx)
}

func (h CLIHandler) Resolve(ctx context.Context, userID string) (dto.Actor, error) {
	return h.usecase.Resolve(ctx, userID)
}
