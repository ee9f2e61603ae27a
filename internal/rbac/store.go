package rbac

import (
	"context"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// Store persists role membership. Grant and Revoke are idempotent at the
// store level; the service layer decides what re-grants mean.
type Store interface {
	Grant(ctx context.Context, identity domain.Identity, role domain.Role) error
	Revoke(ctx context.Context, identity domain.Identity, role domain.Role) error
	Has(ctx context.Context, identity domain.Identity, role domain.Role) (bool, error)
}
