package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "biochar/internal/platform/errors"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
)

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleCoordinator:
		return nil
	default:
		return fmt.Errorf("%w: unsupported role %q", apperrors.ErrValidation, string(r))
	}
}

type User struct {
	ID            string
	Name          string
	Role          Role
	CoordinatorID string
	CreatedAt     time.Time
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: user name is required", apperrors.ErrValidation)
	}
	if err := u.Role.Validate(); err != nil {
		return err
	}
	switch u.Role {
	case RoleCoordinator:
		if strings.TrimSpace(u.CoordinatorID) == "" {
			return fmt.Errorf("%w: coordinator users need a coordinator id", apperrors.ErrValidation)
		}
	case RoleAdmin:
		if u.CoordinatorID != "" {
			return fmt.Errorf("%w: admin users cannot be bound to a coordinator", apperrors.ErrValidation)
		}
	}
	return nil
}

// Actor is the identity a caller acts as. It is passed explicitly to every
// operation that depends on who is asking.
type Actor struct {
	UserID        string
	Name          string
	Role          Role
	CoordinatorID string
}

func (u User) Actor() Actor {
	return Actor{UserID: u.ID, Name: u.Name, Role: u.Role, CoordinatorID: u.CoordinatorID}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// OperatesBatches reports whether the actor may run kiln batches.
func (a Actor) OperatesBatches() bool {
	return a.Role == RoleCoordinator && strings.TrimSpace(a.CoordinatorID) != ""
}
