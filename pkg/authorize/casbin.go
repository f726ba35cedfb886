package authorize

import (
	"context"
	"errors"
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidArgs = errors.New("invalid authorization arguments")
)

// modelText is role based: a request is allowed when some allow policy for
// the role matches and no deny policy does.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// IAuthorization is the only thing services/middleware should depend on.
type IAuthorization interface {
	// Enforce answers: "may role perform action on resource?"
	Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error)

	// MustEnforce returns ErrForbidden if not allowed.
	MustEnforce(ctx context.Context, role Role, object Resource, action Action) error

	AddPermission(ctx context.Context, p PermissionPolicy) (bool, error)
	RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error)

	Raw() *casbin.SyncedEnforcer
}

// Authorization is a thin typed wrapper around casbin.SyncedEnforcer.
type Authorization struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer loaded with policies.
func NewEnforcer(policies []PermissionPolicy) (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	for _, p := range policies {
		if err := validatePolicy(p); err != nil {
			return nil, err
		}
		if _, err := e.AddPolicy(string(p.Role), string(p.Resource), string(p.Action), string(p.Effect)); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", p, err)
		}
	}
	return e, nil
}

// NewAuthorization wraps an already-configured enforcer.
func NewAuthorization(e *casbin.SyncedEnforcer) (IAuthorization, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: enforcer is nil", ErrInvalidArgs)
	}
	return &Authorization{enforcer: e}, nil
}

// NewDefault returns an authorization loaded with DefaultPolicies.
func NewDefault() (IAuthorization, error) {
	e, err := NewEnforcer(DefaultPolicies)
	if err != nil {
		return nil, err
	}
	return NewAuthorization(e)
}

func (a *Authorization) Raw() *casbin.SyncedEnforcer { return a.enforcer }

func (a *Authorization) Enforce(ctx context.Context, role Role, object Resource, action Action) (bool, error) {
	if role == "" {
		return false, fmt.Errorf("%w: role is empty", ErrInvalidArgs)
	}
	if _, ok := KnownRoles[role]; !ok {
		// Unknown roles are denied rather than treated as a programming error.
		return false, nil
	}
	if _, ok := KnownResources[object]; !ok {
		return false, fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, object)
	}
	if _, ok := KnownActions[action]; !ok {
		return false, fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, action)
	}

	return a.enforcer.Enforce(string(role), string(object), string(action))
}

func (a *Authorization) MustEnforce(ctx context.Context, role Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, role, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *Authorization) AddPermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.AddPolicy(string(p.Role), string(p.Resource), string(p.Action), string(p.Effect))
}

func (a *Authorization) RemovePermission(ctx context.Context, p PermissionPolicy) (bool, error) {
	if err := validatePolicy(p); err != nil {
		return false, err
	}
	return a.enforcer.RemovePolicy(string(p.Role), string(p.Resource), string(p.Action), string(p.Effect))
}

func validatePolicy(p PermissionPolicy) error {
	if _, ok := KnownRoles[p.Role]; !ok {
		return fmt.Errorf("%w: unknown role: %q", ErrInvalidArgs, p.Role)
	}
	if _, ok := KnownResources[p.Resource]; !ok && p.Resource != WildcardResource {
		return fmt.Errorf("%w: unknown resource: %q", ErrInvalidArgs, p.Resource)
	}
	if _, ok := KnownActions[p.Action]; !ok && p.Action != WildcardAction {
		return fmt.Errorf("%w: unknown action: %q", ErrInvalidArgs, p.Action)
	}
	if p.Effect != EffectAllow && p.Effect != EffectDeny {
		return fmt.Errorf("%w: invalid effect: %q", ErrInvalidArgs, p.Effect)
	}
	return nil
}
