package rbac

import (
	"context"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
)

// Service gates every mutating ledger operation. It is consulted
// synchronously before any state change; it holds no state beyond the role
// membership store.
type Service struct {
	store Store
	audit *audit.Publisher
}

func NewService(store Store, publisher *audit.Publisher) *Service {
	return &Service{store: store, audit: publisher}
}

// Grant adds identity to role. Administrator-gated; re-grants are no-ops.
func (s *Service) Grant(ctx context.Context, actor, identity domain.Identity, role domain.Role) error {
	if err := s.Require(ctx, actor, domain.RoleAdministrator); err != nil {
		return err
	}
	if identity.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	if err := s.store.Grant(ctx, identity, role); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to grant role")
	}
	s.emit(ctx, audit.ActionRoleGranted, actor, identity, role)
	return nil
}

// Revoke removes identity from role. Administrator-gated.
func (s *Service) Revoke(ctx context.Context, actor, identity domain.Identity, role domain.Role) error {
	if err := s.Require(ctx, actor, domain.RoleAdministrator); err != nil {
		return err
	}
	if err := s.store.Revoke(ctx, identity, role); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to revoke role")
	}
	s.emit(ctx, audit.ActionRoleRevoked, actor, identity, role)
	return nil
}

// Has reports role membership. Open to any caller; self-checks are the
// common case.
func (s *Service) Has(ctx context.Context, identity domain.Identity, role domain.Role) (bool, error) {
	return s.store.Has(ctx, identity, role)
}

// Require fails with Unauthorized when identity lacks role.
func (s *Service) Require(ctx context.Context, identity domain.Identity, role domain.Role) error {
	ok, err := s.store.Has(ctx, identity, role)
	if err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to check role")
	}
	if !ok {
		return dErrors.Newf(dErrors.CodeUnauthorized, "identity %s lacks role %s", identity, role)
	}
	return nil
}

// RequireAny succeeds when identity holds at least one of the roles.
func (s *Service) RequireAny(ctx context.Context, identity domain.Identity, roles ...domain.Role) error {
	for _, role := range roles {
		ok, err := s.store.Has(ctx, identity, role)
		if err != nil {
			return dErrors.New(dErrors.CodeInternal, "failed to check role")
		}
		if ok {
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeUnauthorized, "identity %s lacks required roles", identity)
}

// Seed grants a role without an actor check. Startup bootstrap only; never
// reachable from a transport.
func (s *Service) Seed(ctx context.Context, identity domain.Identity, role domain.Role) error {
	return s.store.Grant(ctx, identity, role)
}

func (s *Service) emit(ctx context.Context, action audit.Action, actor, identity domain.Identity, role domain.Role) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, audit.Event{
		Action: action,
		Actor:  actor.String(),
		Detail: identity.String() + ":" + role.String(),
	})
}
