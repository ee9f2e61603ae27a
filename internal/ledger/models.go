package ledger

import (
	"time"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// Record is a single issued certificate. It is created only by issuance,
// mutated only by redemption, extension, and external-ref updates, and never
// destroyed; terminal states persist for audit.
type Record struct {
	Slot        domain.SlotID
	ContentHash domain.ContentHash
	Category    domain.CategoryKey

	// OwnerIdentity is the issuance identity. Set once, never reassigned;
	// transfer attempts always fail.
	OwnerIdentity domain.Identity

	// Payload is the opaque certificate body the content hash commits to.
	Payload string

	// ExternalRef is an optional off-chain pointer, initially empty.
	ExternalRef string

	Status    domain.Status
	CreatedAt time.Time

	// ValidUntil is the expiry deadline. Zero means the certificate never
	// expires.
	ValidUntil time.Time
}

// Expires reports whether the record carries a deadline.
func (r Record) Expires() bool {
	return !r.ValidUntil.IsZero()
}
