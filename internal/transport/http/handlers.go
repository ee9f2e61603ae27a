package httptransport

import (
	"context"
	"log/slog"
	"time"

	"github.com/MandalaChain/E-Certificate/internal/audit"
	"github.com/MandalaChain/E-Certificate/internal/ledger"
	"github.com/MandalaChain/E-Certificate/internal/relay"
	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// Service interfaces are declared on the consumer side so handlers stay
// testable against small fakes.

type LedgerService interface {
	Issue(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, category domain.CategoryKey, payload string, validUntil time.Time) (domain.SlotID, error)
	Verify(ctx context.Context, contentHash domain.ContentHash, category domain.CategoryKey) error
	Redeem(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, category domain.CategoryKey) error
	SetExternalRef(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, category domain.CategoryKey, ref string) error
	ExtendDeadline(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, category domain.CategoryKey, newDeadline time.Time) error
	GetRecord(ctx context.Context, contentHash domain.ContentHash, category domain.CategoryKey) (ledger.Record, error)
	GetIssuedAt(ctx context.Context, contentHash domain.ContentHash, category domain.CategoryKey) (time.Time, error)
	Transfer(ctx context.Context, caller domain.Identity, contentHash domain.ContentHash, category domain.CategoryKey, to domain.Identity) error
}

type CategoryService interface {
	Approve(ctx context.Context, actor domain.Identity, name string) (domain.CategoryKey, error)
}

type RoleService interface {
	Grant(ctx context.Context, actor, identity domain.Identity, role domain.Role) error
	Revoke(ctx context.Context, actor, identity domain.Identity, role domain.Role) error
	Has(ctx context.Context, identity domain.Identity, role domain.Role) (bool, error)
}

type RelayService interface {
	Execute(ctx context.Context, signed relay.SignedCall) ([]byte, error)
	Nonce(ctx context.Context, identity domain.Identity) (uint64, error)
}

type AuditReader interface {
	List(ctx context.Context, contentHash string) ([]audit.Event, error)
}

// Handler is the thin HTTP layer. It delegates to the domain services and
// keeps transport concerns (decoding, status mapping) out of them.
type Handler struct {
	ledger     LedgerService
	categories CategoryService
	roles      RoleService
	relay      RelayService
	trail      AuditReader
	logger     *slog.Logger
}

func NewHandler(
	ledgerSvc LedgerService,
	categories CategoryService,
	roles RoleService,
	relaySvc RelayService,
	trail AuditReader,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		ledger:     ledgerSvc,
		categories: categories,
		roles:      roles,
		relay:      relaySvc,
		trail:      trail,
		logger:     logger,
	}
}
