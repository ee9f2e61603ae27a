package ledger

import (
	"time"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// EffectiveStatus computes the logical status of a record at a point in time.
// The stored status field may lag the logical state: a record past its
// deadline stays StatusActive in the store until the next verify or redeem
// touch materializes the flip. Reads use this function so the lag is never
// observable.
func EffectiveStatus(r Record, now time.Time) domain.Status {
	if r.Status == domain.StatusActive && r.Expires() && now.After(r.ValidUntil) {
		return domain.StatusExpired
	}
	return r.Status
}
