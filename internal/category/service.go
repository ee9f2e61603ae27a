package category

import (
	"context"
	"errors"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/pkg/digest"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
	dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// RoleChecker is the capability the registry needs from access control.
type RoleChecker interface {
	Require(ctx context.Context, identity domain.Identity, role domain.Role) error
}

// Service maintains the administrator-controlled allowlist of certificate
// categories. Approval is monotonic: once a category is approved there is no
// way back.
type Service struct {
	store Store
	roles RoleChecker
	audit *audit.Publisher
}

func NewService(store Store, roles RoleChecker, publisher *audit.Publisher) *Service {
	return &Service{store: store, roles: roles, audit: publisher}
}

// Approve allowlists a category by name. Administrator-only. The approval
// event is keyed by the category digest, not the raw name.
func (s *Service) Approve(ctx context.Context, actor domain.Identity, name string) (domain.CategoryKey, error) {
	if err := s.roles.Require(ctx, actor, domain.RoleAdministrator); err != nil {
		return domain.CategoryKey{}, err
	}
	if name == "" {
		return domain.CategoryKey{}, dErrors.New(dErrors.CodeInvalidInput, "category name cannot be empty")
	}

	key := digest.HashCategory(name)
	if err := s.store.Approve(ctx, key); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return domain.CategoryKey{}, dErrors.Newf(dErrors.CodeCategoryAlreadyApproved, "category %q already approved", name)
		}
		return domain.CategoryKey{}, dErrors.New(dErrors.CodeInternal, "failed to approve category")
	}

	if s.audit != nil {
		_ = s.audit.Emit(ctx, audit.Event{
			Action:   audit.ActionCategoryApproved,
			Actor:    actor.String(),
			Category: key.String(),
			Detail:   name,
		})
	}
	return key, nil
}

// IsApproved reports whether the category digest is allowlisted.
func (s *Service) IsApproved(ctx context.Context, key domain.CategoryKey) (bool, error) {
	return s.store.IsApproved(ctx, key)
}
