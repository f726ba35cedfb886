package authorize

import (
	"context"
	"errors"

	"github.com/Alijeyrad/nutriplan_backend/pkg/reqctx"
)

var ErrNoSubjectInContext = errors.New("no subject found in context")

// RoleFromContext returns the authenticated caller's role.
func RoleFromContext(ctx context.Context) (Role, error) {
	if !reqctx.IsAuthenticated(ctx) {
		return "", ErrNoSubjectInContext
	}
	role := reqctx.RoleFromContext(ctx)
	if role == "" {
		return "", ErrNoSubjectInContext
	}
	return Role(role), nil
}

// EnforceContext checks the caller in ctx against object and action.
func EnforceContext(ctx context.Context, auth IAuthorization, object Resource, action Action) error {
	role, err := RoleFromContext(ctx)
	if err != nil {
		return err
	}
	return auth.MustEnforce(ctx, role, object, action)
}
