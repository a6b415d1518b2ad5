package domain_test

import (
	"errors"
	"testing"

	"biochar/internal/modules/identity/domain"
	apperrors "biochar/internal/platform/errors"
)

func TestUserValidate(t *testing.T) {
	t.Parallel()
	coordinator := domain.User{ID: "u-1", Name: "Asha", Role: domain.RoleCoordinator, CoordinatorID: "c-1"}
	if err := coordinator.Validate(); err != nil {
		t.Fatalf("coordinator should be valid: %v", err)
	}
	unbound := coordinator
	unbound.CoordinatorID = ""
	if err := unbound.Validate(); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("coordinator without binding should fail validation, got %v", err)
	}
	admin := domain.User{ID: "u-2", Name: "Root", Role: domain.RoleAdmin, CoordinatorID: "c-1"}
	if err := admin.Validate(); err == nil {
		t.Fatalf("admin bound to coordinator should fail")
	}
	bad := domain.User{ID: "u-3", Name: "X", Role: "farmer"}
	if err := bad.Validate(); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("unknown role should fail validation, got %v", err)
	}
}

func TestActorCapabilities(t *testing.T) {
	t.Parallel()
	coord := domain.User{ID: "u-1", Name: "Asha", Role: domain.RoleCoordinator, CoordinatorID: "c-1"}.Actor()
	if !coord.OperatesBatches() || coord.IsAdmin() {
		t.Fatalf("coordinator actor should operate batches only: %+v", coord)
	}
	admin := domain.User{ID: "u-2", Name: "Root", Role: domain.RoleAdmin}.Actor()
	if admin.OperatesBatches() || !admin.IsAdmin() {
		t.Fatalf("admin actor should not operate batches: %+v", admin)
	}
	if (domain.Actor{}).OperatesBatches() {
		t.Fatalf("anonymous actor cannot operate batches")
	}
}
