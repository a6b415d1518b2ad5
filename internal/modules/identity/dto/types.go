package dto

import "time"

// Actor mirrors domain.Actor for callers outside the identity module.
type Actor struct {
	UserID        string
	Name          string
	Role          string
	CoordinatorID string
}

func (a Actor) IsAdmin() bool { return a.Role == "admin" }

func (a Actor) OperatesBatches() bool {
	return a.Role == "coordinator" && a.CoordinatorID != ""
}

type AddUserInput struct {
	Name          string
	Role          string
	CoordinatorID string
}

type UserOutput struct {
	ID            string
	Name          string
	Role          string
	CoordinatorID string
	CreatedAt     time.Time
}
