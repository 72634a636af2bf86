package service

import (
	"context"

	"kycflow/internal/errs"
	"kycflow/internal/model"
)

// PermissionService answers capability checks against the user directory on
// every call; no actor state is cached between requests.
type PermissionService struct {
	users UserDirectory
}

func NewPermissionService(users UserDirectory) *PermissionService {
	return &PermissionService{users: users}
}

// Require loads the actor and fails unless it holds permission
func (s *PermissionService) Require(ctx context.Context, actorID string, permission model.Permission) (model.Actor, error) {
	return requireActor(ctx, s.users, actorID, permission, "User")
}

// Actor loads the actor without a capability check
func (s *PermissionService) Actor(ctx context.Context, actorID string) (model.Actor, error) {
	if actorID == "" {
		return model.Actor{}, errs.New(errs.CodeInvalidInput, "User ID is required")
	}
	a, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return model.Actor{}, translate(err, "User not found")
	}
	return a, nil
}

// requireActor loads id and checks permission; label names the role in messages
func requireActor(ctx context.Context, users UserDirectory, id string, permission model.Permission, label string) (model.Actor, error) {
	a, err := users.GetUser(ctx, id)
	if err != nil {
		return model.Actor{}, translate(err, label+" not found")
	}
	if !a.Can(permission) {
		return model.Actor{}, errs.New(errs.CodePermissionDenied, label+" does not have permission "+string(permission))
	}
	return a, nil
}
