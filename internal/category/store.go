package category

import (
	"context"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// Store persists the category allowlist. Approval is write-once: Approve
// returns sentinel.ErrConflict when the key is already approved. No removal
// exists anywhere in this interface; approval is irreversible.
type Store interface {
	Approve(ctx context.Context, key domain.CategoryKey) error
	IsApproved(ctx context.Context, key domain.CategoryKey) (bool, error)
}
