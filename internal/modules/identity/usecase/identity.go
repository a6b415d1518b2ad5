package usecase

import (
	"context"
	"fmt"
	"strings"

	"biochar/internal/modules/identity/domain"
	"biochar/internal/modules/identity/dto"
	identityin "biochar/internal/modules/identity/port/in"
	"biochar/internal/modules/identity/service"
	apperrors "biochar/internal/platform/errors"
)

type Interactor struct {
	svc *service.UserService
}

func NewInteractor(svc *service.UserService) identityin.Usecase {
	return &Interactor{svc: svc}
}

// AddUser is admin-only, except for the very first user, which must be an
// admin and may be created by anyone.
func (i *Interactor) AddUser(ctx context.Context, actor dto.Actor, input dto.AddUserInput) (dto.UserOutput, error) {
	count, err := i.svc.Count(ctx)
	if err != nil {
		return dto.UserOutput{}, err
	}
	role := domain.Role(strings.TrimSpace(input.Role))
	switch {
	case count == 0 && role != domain.RoleAdmin:
		return dto.UserOutput{}, fmt.Errorf("%w: the first user must be an admin", apperrors.ErrValidation)
	case count > 0 && !actor.IsAdmin():
		return dto.UserOutput{}, fmt.Errorf("%w: only admins can add users", apperrors.ErrForbidden)
	}
	user, err := i.svc.Add(ctx, input.Name, role, input.CoordinatorID)
	if err != nil {
		return dto.UserOutput{}, err
	}
	return toOutput(user), nil
}

func (i *Interactor) ListUsers(ctx context.Context) ([]dto.UserOutput, error) {
	users, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserOutput, 0, len(users))
	for _, user := range users {
		out = append(out, toOutput(user))
	}
	return out, nil
}

func (i *Interactor) Resolve(ctx context.Context, userID string) (dto.Actor, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return dto.Actor{}, fmt.Errorf("%w: no user configured (set --user or BIOCHAR_USER)", apperrors.ErrForbidden)
	}
	user, err := i.svc.Get(ctx, userID)
	if err != nil {
		return dto.Actor{}, err
	}
	actor := user.Actor()
	return dto.Actor{UserID: actor.UserID, Name: actor.Name, Role: string(actor.Role), CoordinatorID: actor.CoordinatorID}, nil
}

func toOutput(user domain.User) dto.UserOutput {
	return dto.UserOutput{
		ID:            user.ID,
		Name:          user.Name,
		Role:          string(user.Role),
		CoordinatorID: user.CoordinatorID,
		CreatedAt:     user.CreatedAt,
	}
}
