package relay

import (
	"context"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// NonceStore tracks the next expected nonce per identity. Nonces start at 0
// and advance by exactly 1 per successfully relayed call.
type NonceStore interface {
	// Current returns the next expected nonce for identity; 0 for an
	// identity that has never relayed.
	Current(ctx context.Context, identity domain.Identity) (uint64, error)

	// Advance bumps the nonce by 1 iff the stored value equals expected.
	// A mismatch returns sentinel.ErrConflict and leaves the nonce alone.
	Advance(ctx context.Context, identity domain.Identity, expected uint64) error
}
