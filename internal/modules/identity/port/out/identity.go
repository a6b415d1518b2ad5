package out

import (
	"context"

	"biochar/internal/modules/identity/domain"
)

type UserStore interface {
	Insert(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}
