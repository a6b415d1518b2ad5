package service

import (
	"context"
	"strings"

	"biochar/internal/modules/identity/domain"
	identityout "biochar/internal/modules/identity/port/out"
	"biochar/internal/platform/clock"
	"biochar/internal/platform/id"
)

type UserService struct {
	clock clock.Clock
	idGen id.Generator
	store identityout.UserStore
}

func NewUserService(clock clock.Clock, idGen id.Generator, store identityout.UserStore) *UserService {
	return &UserService{clock: clock, idGen: idGen, store: store}
}

// Add creates a user. Coordinators without an explicit binding get a fresh
// coordinator id.
func (s *UserService) Add(ctx context.Context, name string, role domain.Role, coordinatorID string) (domain.User, error) {
	coordinatorID = strings.TrimSpace(coordinatorID)
	if role == domain.RoleCoordinator && coordinatorID == "" {
		coordinatorID = s.idGen.New()
	}
	user := domain.User{
		ID:            s.idGen.New(),
		Name:          strings.TrimSpace(name),
		Role:          role,
		CoordinatorID: coordinatorID,
		CreatedAt:     s.clock.Now(),
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	return s.store.FindByID(ctx, userID)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
